package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("Create task failed", "error", err)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// GetTask handles getting a task by ID
func (h *TaskHandler) GetTask(c echo.Context) error {
	task, err := h.taskService.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, task)
}

// ListTasks handles listing tasks with the query filters
func (h *TaskHandler) ListTasks(c echo.Context) error {
	completed, err := queryBool(c, "completed")
	if err != nil {
		return err
	}

	filter := ports.TaskFilter{
		Search:    c.QueryParam("search"),
		GroupID:   c.QueryParam("group"),
		Tag:       c.QueryParam("tag"),
		Priority:  entities.Priority(c.QueryParam("priority")),
		Completed: completed,
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), filter)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// RecentTasks handles listing the most recently created open tasks
func (h *TaskHandler) RecentTasks(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}

	tasks, err := h.taskService.RecentTasks(c.Request().Context(), limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// UpdateTask handles partial task updates
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		h.logger.Warnw("Update task failed", "error", err, "task_id", c.Param("id"))
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) CompleteTask(c echo.Context) error {
	return h.respond(c, h.taskService.CompleteTask)
}

func (h *TaskHandler) UncompleteTask(c echo.Context) error {
	return h.respond(c, h.taskService.UncompleteTask)
}

func (h *TaskHandler) DuplicateTask(c echo.Context) error {
	task, err := h.taskService.DuplicateTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, task)
}

// DeleteTask handles task deletion. It needs confirmation.
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	if err := h.taskService.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TaskHandler) ArchiveTask(c echo.Context) error {
	if err := h.taskService.ArchiveTask(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddSubtask handles appending a subtask
func (h *TaskHandler) AddSubtask(c echo.Context) error {
	var req TextRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	subtask, err := h.taskService.AddSubtask(c.Request().Context(), c.Param("id"), req.Text)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, subtask)
}

func (h *TaskHandler) UpdateSubtask(c echo.Context) error {
	var req TextRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	task, err := h.taskService.UpdateSubtaskText(c.Request().Context(), c.Param("id"), c.Param("subtaskId"), req.Text)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) ToggleSubtask(c echo.Context) error {
	task, err := h.taskService.ToggleSubtask(c.Request().Context(), c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteSubtask(c echo.Context) error {
	task, err := h.taskService.DeleteSubtask(c.Request().Context(), c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, task)
}

// AddNote handles prepending a note to a task
func (h *TaskHandler) AddNote(c echo.Context) error {
	var req TextRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	note, err := h.taskService.AddTaskNote(c.Request().Context(), c.Param("id"), req.Text)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, note)
}

func (h *TaskHandler) UpdateNote(c echo.Context) error {
	var req TextRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	task, err := h.taskService.UpdateTaskNote(c.Request().Context(), c.Param("id"), c.Param("noteId"), req.Text)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) ToggleNoteImportant(c echo.Context) error {
	task, err := h.taskService.ToggleTaskNoteImportant(c.Request().Context(), c.Param("id"), c.Param("noteId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteNote(c echo.Context) error {
	task, err := h.taskService.DeleteTaskNote(c.Request().Context(), c.Param("id"), c.Param("noteId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) respond(c echo.Context, fn func(ctx context.Context, id string) (*entities.Task, error)) error {
	task, err := fn(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, task)
}
