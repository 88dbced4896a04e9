package domain_test

import (
	"testing"

	"todoapi/internal/core/domain"

	"github.com/stretchr/testify/require"
)

func TestNextOrder(t *testing.T) {
	require.Equal(t, int64(0), domain.NextOrder(nil))
	require.Equal(t, int64(8), domain.NextOrder([]domain.Task{{Order: 3}, {Order: 7}, {Order: -2}}))
	require.Equal(t, int64(-1), domain.NextOrder([]domain.Task{{Order: -2}, {Order: -5}}))
}

func TestNewTask_DefaultsUnknownPriority(t *testing.T) {
	task := domain.NewTask("a", domain.NewTaskInput{Title: "Buy milk", Priority: "urgent"}, 0, 100)

	require.Equal(t, domain.PriorityMedium, task.Priority)
	require.Equal(t, int64(0), task.Order)
	require.False(t, task.Completed)
	require.Equal(t, int64(100), task.CreatedAt)
	require.Equal(t, int64(100), task.UpdatedAt)
}

func TestTaskApply_IgnoresInvalidPriority(t *testing.T) {
	task := domain.Task{ID: "a", Priority: domain.PriorityHigh, UpdatedAt: 10}
	urgent := domain.Priority("urgent")

	got := task.Apply(domain.TaskPatch{Priority: &urgent}, 20)

	require.Equal(t, domain.PriorityHigh, got.Priority)
	require.Equal(t, int64(20), got.UpdatedAt)
}

func TestTaskApply_MergesOnlyProvidedFields(t *testing.T) {
	task := domain.Task{ID: "a", Title: "old", Description: "keep", Priority: domain.PriorityLow, Order: 4, CreatedAt: 1, UpdatedAt: 1}
	title := "new"
	done := true

	got := task.Apply(domain.TaskPatch{Title: &title, Completed: &done}, 5)

	require.Equal(t, "new", got.Title)
	require.Equal(t, "keep", got.Description)
	require.True(t, got.Completed)
	require.Equal(t, domain.PriorityLow, got.Priority)
	require.Equal(t, int64(4), got.Order)
	require.Equal(t, int64(1), got.CreatedAt)
	require.Equal(t, "old", task.Title)
}

func TestNextUpdatedAt_StrictlyIncreases(t *testing.T) {
	require.Equal(t, int64(11), domain.NextUpdatedAt(10, 10))
	require.Equal(t, int64(11), domain.NextUpdatedAt(10, 3))
	require.Equal(t, int64(42), domain.NextUpdatedAt(10, 42))
}

func TestApplyReorder_KeepsUnreferencedOrders(t *testing.T) {
	tasks := []domain.Task{
		{ID: "a", Order: 0, UpdatedAt: 1},
		{ID: "b", Order: 1, UpdatedAt: 1},
		{ID: "c", Order: 2, UpdatedAt: 1},
	}

	got := domain.ApplyReorder(tasks, []domain.ReorderItem{
		{ID: "a", Order: 5},
		{ID: "missing", Order: -1},
	}, 50)

	require.Equal(t, []string{"b", "c", "a"}, ids(got))
	require.Equal(t, int64(1), got[0].Order)
	require.Equal(t, int64(1), got[0].UpdatedAt)
	require.Equal(t, int64(5), got[2].Order)
	require.Equal(t, int64(50), got[2].UpdatedAt)
	require.Equal(t, int64(0), tasks[0].Order)
}

func TestApplyReorder_LastDuplicateWins(t *testing.T) {
	tasks := []domain.Task{{ID: "a", Order: 0}, {ID: "b", Order: 1}}

	got := domain.ApplyReorder(tasks, []domain.ReorderItem{{ID: "a", Order: 9}, {ID: "a", Order: 3}}, 1)

	require.Equal(t, []string{"b", "a"}, ids(got))
	require.Equal(t, int64(3), got[1].Order)
}

func TestSortByOrder_IsStable(t *testing.T) {
	tasks := []domain.Task{{ID: "x", Order: 1}, {ID: "y", Order: 0}, {ID: "z", Order: 1}}
	domain.SortByOrder(tasks)
	require.Equal(t, []string{"y", "x", "z"}, ids(tasks))
}

func TestNormalize_RepairsDefaults(t *testing.T) {
	task := domain.Task{Priority: "", CreatedAt: 10, UpdatedAt: 0}
	task.Normalize()
	require.Equal(t, domain.PriorityMedium, task.Priority)
	require.Equal(t, int64(10), task.UpdatedAt)
}

func ids(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}
