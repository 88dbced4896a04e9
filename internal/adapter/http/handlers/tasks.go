package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"todoapi/internal/adapter/http/mapper"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/adapter/http/validation"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
	"todoapi/pkg/apierrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService ports.TaskService
}

func NewTaskHandler(taskService ports.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.ListTasks(c.Request.Context())
	if err != nil {
		zap.L().Error("failed to list tasks", zap.Error(err))
		respondError(c, http.StatusInternalServerError, apierrors.MsgFailListTask)
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItems(tasks))
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	raw, ok := decodeObject(c)
	if !ok {
		return
	}

	input, err := validation.BuildCreateTaskInput(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, apierrors.MsgTitleRequired)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), input)
	if err != nil {
		zap.L().Error("failed to create task", zap.Error(err))
		respondError(c, http.StatusInternalServerError, apierrors.MsgFailCreateTask)
		return
	}

	c.JSON(http.StatusCreated, mapper.ToTaskItem(task))
}

func (h *TaskHandler) ToggleTask(c *gin.Context) {
	taskID := c.Param("id")

	task, err := h.taskService.ToggleTask(c.Request.Context(), taskID)
	if err != nil {
		h.respondMutationError(c, err, taskID, "failed to toggle task", apierrors.MsgFailUpdateTask)
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItem(task))
}

// UpdateTask serves both PATCH and PUT; either way only the recognised fields
// in the body are applied.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID := c.Param("id")

	raw, ok := decodeObject(c)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, validation.BuildTaskPatch(raw))
	if err != nil {
		h.respondMutationError(c, err, taskID, "failed to update task", apierrors.MsgFailUpdateTask)
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItem(task))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID := c.Param("id")

	if err := h.taskService.DeleteTask(c.Request.Context(), taskID); err != nil {
		h.respondMutationError(c, err, taskID, "failed to delete task", apierrors.MsgFailDeleteTask)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, http.StatusBadRequest, apierrors.MsgInvalidJSON)
		return
	}

	plan, err := validation.BuildReorderPlan(body)
	if err != nil {
		respondError(c, http.StatusBadRequest, apierrors.MsgInvalidJSON)
		return
	}

	tasks, err := h.taskService.ReorderTasks(c.Request.Context(), plan)
	if err != nil {
		zap.L().Error("failed to reorder tasks", zap.Int("plan_size", len(plan)), zap.Error(err))
		respondError(c, http.StatusInternalServerError, apierrors.MsgFailReorderTasks)
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItems(tasks))
}

func (h *TaskHandler) respondMutationError(c *gin.Context, err error, taskID, logMsg, msgKey string) {
	if errors.Is(err, domain.ErrTaskNotFound) {
		respondError(c, http.StatusNotFound, apierrors.MsgTaskNotFound)
		return
	}

	zap.L().Error(logMsg, zap.String("task_id", taskID), zap.Error(err))
	respondError(c, http.StatusInternalServerError, msgKey)
}

func decodeObject(c *gin.Context) (map[string]json.RawMessage, bool) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, http.StatusBadRequest, apierrors.MsgInvalidJSON)
		return nil, false
	}

	raw, err := validation.DecodeObject(body)
	if err != nil {
		respondError(c, http.StatusBadRequest, apierrors.MsgInvalidJSON)
		return nil, false
	}
	return raw, true
}

func respondError(c *gin.Context, code int, msgKey string) {
	c.JSON(code, apierrors.CreateError(code, msgKey, middleware.GetLang(c)))
}
