package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"todoapi/internal/client"
	"todoapi/internal/core/domain"
)

var errOffline = errors.New("connection refused")

type fakeAPI struct {
	list    func() ([]domain.Task, error)
	create  func(domain.NewTaskInput) (domain.Task, error)
	update  func(string, domain.TaskPatch) (domain.Task, error)
	remove  func(string) error
	reorder func([]domain.ReorderItem) ([]domain.Task, error)

	listCalls   int
	deleteCalls int
}

func (f *fakeAPI) ListTasks(context.Context) ([]domain.Task, error) {
	f.listCalls++
	return f.list()
}

func (f *fakeAPI) CreateTask(_ context.Context, input domain.NewTaskInput) (domain.Task, error) {
	return f.create(input)
}

func (f *fakeAPI) UpdateTask(_ context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	return f.update(id, patch)
}

func (f *fakeAPI) DeleteTask(_ context.Context, id string) error {
	f.deleteCalls++
	return f.remove(id)
}

func (f *fakeAPI) ReorderTasks(_ context.Context, plan []domain.ReorderItem) ([]domain.Task, error) {
	return f.reorder(plan)
}

type recorder struct {
	messages []string
}

func (r *recorder) Notify(message string) {
	r.messages = append(r.messages, message)
}

func seed() []domain.Task {
	return []domain.Task{
		{ID: "a", Title: "A", Priority: domain.PriorityHigh, Order: 0, UpdatedAt: 10},
		{ID: "b", Title: "B", Priority: domain.PriorityLow, Order: 1, Completed: true, UpdatedAt: 10},
		{ID: "c", Title: "C", Priority: domain.PriorityMedium, Order: 2, UpdatedAt: 10},
	}
}

func loaded(t *testing.T, api *fakeAPI, notes *recorder, confirm client.Confirmer) *client.Controller {
	t.Helper()
	if api.list == nil {
		api.list = func() ([]domain.Task, error) { return seed(), nil }
	}
	ctrl := client.NewController(api, notes, confirm, zap.NewNop())
	require.NoError(t, ctrl.Load(context.Background()))
	return ctrl
}

func ids(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}

func TestController_LoadFailureLeavesListEmpty(t *testing.T) {
	api := &fakeAPI{list: func() ([]domain.Task, error) { return nil, errOffline }}
	notes := &recorder{}
	ctrl := client.NewController(api, notes, nil, zap.NewNop())

	err := ctrl.Load(context.Background())

	require.ErrorIs(t, err, errOffline)
	assert.Empty(t, ctrl.Tasks())
	assert.NotNil(t, ctrl.Tasks())
	assert.Equal(t, 1, api.listCalls)
	assert.Empty(t, notes.messages)
}

func TestController_CreateInsertsServerTaskByOrder(t *testing.T) {
	api := &fakeAPI{
		list: func() ([]domain.Task, error) {
			return []domain.Task{{ID: "a", Order: 0}, {ID: "c", Order: 5}}, nil
		},
		create: func(input domain.NewTaskInput) (domain.Task, error) {
			assert.Equal(t, "Buy milk", input.Title)
			return domain.Task{ID: "b", Title: input.Title, Order: 3}, nil
		},
	}
	ctrl := loaded(t, api, &recorder{}, nil)

	created, err := ctrl.Create(context.Background(), domain.NewTaskInput{Title: "  Buy milk  "})

	require.NoError(t, err)
	assert.Equal(t, "b", created.ID)
	assert.Equal(t, []string{"a", "b", "c"}, ids(ctrl.Tasks()))
}

func TestController_CreateRejectsBlankTitleLocally(t *testing.T) {
	api := &fakeAPI{create: func(domain.NewTaskInput) (domain.Task, error) {
		t.Fatal("create must not be sent")
		return domain.Task{}, nil
	}}
	ctrl := loaded(t, api, &recorder{}, nil)

	_, err := ctrl.Create(context.Background(), domain.NewTaskInput{Title: "   "})

	require.ErrorIs(t, err, client.ErrTitleRequired)
	assert.Len(t, ctrl.Tasks(), 3)
}

func TestController_CreateFailureNotifies(t *testing.T) {
	notes := &recorder{}
	api := &fakeAPI{create: func(domain.NewTaskInput) (domain.Task, error) { return domain.Task{}, errOffline }}
	ctrl := loaded(t, api, notes, nil)

	_, err := ctrl.Create(context.Background(), domain.NewTaskInput{Title: "x"})

	require.Error(t, err)
	assert.Equal(t, []string{client.MsgCreateFailed}, notes.messages)
	assert.Len(t, ctrl.Tasks(), 3)
}

func TestController_ToggleIsOptimistic(t *testing.T) {
	var ctrl *client.Controller
	api := &fakeAPI{update: func(id string, patch domain.TaskPatch) (domain.Task, error) {
		require.NotNil(t, patch.Completed)
		assert.True(t, *patch.Completed)
		assert.Nil(t, patch.Title)

		// The flip is visible before the server answers.
		assert.True(t, ctrl.Tasks()[0].Completed)
		return domain.Task{ID: id, Title: "A", Priority: domain.PriorityHigh, Completed: true, UpdatedAt: 11}, nil
	}}
	ctrl = loaded(t, api, &recorder{}, nil)

	updated, err := ctrl.ToggleDone(context.Background(), "a")

	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, int64(11), ctrl.Tasks()[0].UpdatedAt)
}

func TestController_ToggleFailureRestoresPreviousTask(t *testing.T) {
	notes := &recorder{}
	api := &fakeAPI{update: func(string, domain.TaskPatch) (domain.Task, error) { return domain.Task{}, errOffline }}
	ctrl := loaded(t, api, notes, nil)
	before := ctrl.Tasks()[1]

	_, err := ctrl.ToggleDone(context.Background(), "b")

	require.ErrorIs(t, err, errOffline)
	assert.Equal(t, before, ctrl.Tasks()[1])
	assert.Equal(t, []string{client.MsgUpdateFailed}, notes.messages)
}

func TestController_ToggleUnknownTask(t *testing.T) {
	ctrl := loaded(t, &fakeAPI{}, &recorder{}, nil)

	_, err := ctrl.ToggleDone(context.Background(), "nope")

	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestController_DeleteDeclinedSendsNothing(t *testing.T) {
	api := &fakeAPI{remove: func(string) error { return nil }}
	var asked domain.Task
	ctrl := loaded(t, api, &recorder{}, client.ConfirmerFunc(func(task domain.Task) bool {
		asked = task
		return false
	}))

	deleted, err := ctrl.Delete(context.Background(), "a")

	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, "A", asked.Title)
	assert.Equal(t, 0, api.deleteCalls)
	assert.Len(t, ctrl.Tasks(), 3)
}

func TestController_DeleteRemovesAfterSuccess(t *testing.T) {
	api := &fakeAPI{remove: func(string) error { return nil }}
	ctrl := loaded(t, api, &recorder{}, nil)

	deleted, err := ctrl.Delete(context.Background(), "b")

	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"a", "c"}, ids(ctrl.Tasks()))
}

func TestController_DeleteFailureKeepsTask(t *testing.T) {
	notes := &recorder{}
	api := &fakeAPI{remove: func(string) error { return &client.StatusError{Code: 500} }}
	ctrl := loaded(t, api, notes, nil)

	deleted, err := ctrl.Delete(context.Background(), "b")

	require.Error(t, err)
	assert.False(t, deleted)
	assert.Len(t, ctrl.Tasks(), 3)
	assert.Equal(t, []string{client.MsgDeleteFailed}, notes.messages)
}

func TestController_MoveRightSendsDensePlan(t *testing.T) {
	var ctrl *client.Controller
	var sent []domain.ReorderItem
	api := &fakeAPI{
		list: func() ([]domain.Task, error) {
			return []domain.Task{{ID: "a", Order: 3}, {ID: "b", Order: 7}, {ID: "c", Order: 9}}, nil
		},
		reorder: func(plan []domain.ReorderItem) ([]domain.Task, error) {
			sent = plan
			assert.Equal(t, []string{"b", "a", "c"}, ids(ctrl.Tasks()))
			return []domain.Task{{ID: "b", Order: 0, UpdatedAt: 20}, {ID: "a", Order: 1, UpdatedAt: 20}, {ID: "c", Order: 2, UpdatedAt: 20}}, nil
		},
	}
	ctrl = loaded(t, api, &recorder{}, nil)

	require.NoError(t, ctrl.MoveRight(context.Background(), "a"))

	assert.Equal(t, []domain.ReorderItem{{ID: "b", Order: 0}, {ID: "a", Order: 1}, {ID: "c", Order: 2}}, sent)
	tasks := ctrl.Tasks()
	assert.Equal(t, []string{"b", "a", "c"}, ids(tasks))
	assert.Equal(t, int64(20), tasks[0].UpdatedAt)
}

func TestController_MoveAtEdgeIsNoop(t *testing.T) {
	api := &fakeAPI{reorder: func([]domain.ReorderItem) ([]domain.Task, error) {
		t.Fatal("reorder must not be sent")
		return nil, nil
	}}
	ctrl := loaded(t, api, &recorder{}, nil)

	require.NoError(t, ctrl.MoveLeft(context.Background(), "a"))
	require.NoError(t, ctrl.MoveRight(context.Background(), "c"))
	require.NoError(t, ctrl.MoveLeft(context.Background(), "missing"))
	assert.Equal(t, []string{"a", "b", "c"}, ids(ctrl.Tasks()))
}

func TestController_MoveFailureRefetches(t *testing.T) {
	notes := &recorder{}
	server := []domain.Task{{ID: "a", Order: 0}, {ID: "b", Order: 1}, {ID: "x", Order: 2}}
	api := &fakeAPI{reorder: func([]domain.ReorderItem) ([]domain.Task, error) { return nil, errOffline }}
	ctrl := loaded(t, api, notes, nil)
	api.list = func() ([]domain.Task, error) { return server, nil }

	err := ctrl.MoveLeft(context.Background(), "c")

	require.ErrorIs(t, err, errOffline)
	assert.Equal(t, []string{client.MsgReorderFailed}, notes.messages)
	assert.Equal(t, 2, api.listCalls)
	assert.Equal(t, []string{"a", "b", "x"}, ids(ctrl.Tasks()))
}

func TestController_MoveFailureKeepsOptimisticListWhenRefetchFails(t *testing.T) {
	api := &fakeAPI{reorder: func([]domain.ReorderItem) ([]domain.Task, error) { return nil, errOffline }}
	ctrl := loaded(t, api, &recorder{}, nil)
	api.list = func() ([]domain.Task, error) { return nil, errOffline }

	require.Error(t, ctrl.MoveLeft(context.Background(), "c"))

	assert.Equal(t, []string{"a", "c", "b"}, ids(ctrl.Tasks()))
}

func TestController_EditTrimsAndAppliesServerVersion(t *testing.T) {
	api := &fakeAPI{update: func(id string, patch domain.TaskPatch) (domain.Task, error) {
		require.NotNil(t, patch.Title)
		require.NotNil(t, patch.Description)
		require.NotNil(t, patch.Priority)
		assert.Equal(t, "Buy oat milk", *patch.Title)
		assert.Equal(t, "2 litres", *patch.Description)
		assert.Equal(t, domain.PriorityLow, *patch.Priority)
		assert.Nil(t, patch.Completed)
		return domain.Task{ID: id, Title: *patch.Title, Description: *patch.Description, Priority: *patch.Priority, Order: 0}, nil
	}}
	ctrl := loaded(t, api, &recorder{}, nil)

	draft, ok := ctrl.EditDraft("a")
	require.True(t, ok)
	assert.Equal(t, "A", draft.Title)
	assert.Equal(t, domain.PriorityHigh, draft.Priority)

	draft.Title = "  Buy oat milk "
	draft.Description = " 2 litres "
	draft.Priority = domain.PriorityLow
	_, err := ctrl.Edit(context.Background(), "a", draft)

	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", ctrl.Tasks()[0].Title)
	assert.Equal(t, domain.PriorityLow, ctrl.Tasks()[0].Priority)
}

func TestController_EditFailureNotifies(t *testing.T) {
	notes := &recorder{}
	api := &fakeAPI{update: func(string, domain.TaskPatch) (domain.Task, error) { return domain.Task{}, errOffline }}
	ctrl := loaded(t, api, notes, nil)

	_, err := ctrl.Edit(context.Background(), "a", client.EditDraft{Title: "new"})

	require.Error(t, err)
	assert.Equal(t, "A", ctrl.Tasks()[0].Title)
	assert.Equal(t, []string{client.MsgUpdateFailed}, notes.messages)
}

func TestController_VisibleAndCounts(t *testing.T) {
	ctrl := loaded(t, &fakeAPI{}, &recorder{}, nil)

	active, err := client.ParseFilter("active", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(ctrl.Visible(active)))

	activeHigh, err := client.ParseFilter("active", "high")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(ctrl.Visible(activeHigh)))

	completedHigh, err := client.ParseFilter("completed", "high")
	require.NoError(t, err)
	assert.Empty(t, ctrl.Visible(completedHigh))

	all, err := client.ParseFilter("", "")
	require.NoError(t, err)
	assert.Len(t, ctrl.Visible(all), 3)

	assert.Equal(t, client.Counts{All: 3, Active: 2, Completed: 1, High: 1, Medium: 1, Low: 1}, ctrl.Counts())
	assert.Len(t, ctrl.Tasks(), 3)
}

func TestParseFilter_RejectsUnknownValues(t *testing.T) {
	_, err := client.ParseFilter("done", "")
	require.Error(t, err)

	_, err = client.ParseFilter("all", "urgent")
	require.Error(t, err)
}
