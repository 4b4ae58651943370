package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fokusplaner/core/internal/adapters/view"
	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/ports"
)

// ViewHandler serves the presentation models of the planner screens
type ViewHandler struct {
	tasks    ports.TaskService
	notes    ports.NoteService
	groups   ports.GroupService
	archive  ports.ArchiveService
	focus    ports.FocusService
	stats    ports.StatsService
	settings ports.SettingsService
	now      func() time.Time
	logger   *logger.Logger
}

// ViewServices are the services the screens read from
type ViewServices struct {
	Tasks    ports.TaskService
	Notes    ports.NoteService
	Groups   ports.GroupService
	Archive  ports.ArchiveService
	Focus    ports.FocusService
	Stats    ports.StatsService
	Settings ports.SettingsService
}

// NewViewHandler creates a new view handler. now defaults to time.Now.
func NewViewHandler(svc ViewServices, now func() time.Time, logger *logger.Logger) *ViewHandler {
	if now == nil {
		now = time.Now
	}
	return &ViewHandler{
		tasks:    svc.Tasks,
		notes:    svc.Notes,
		groups:   svc.Groups,
		archive:  svc.Archive,
		focus:    svc.Focus,
		stats:    svc.Stats,
		settings: svc.Settings,
		now:      now,
		logger:   logger,
	}
}

// Dashboard serves today's statistics and the recent open tasks
func (h *ViewHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.stats.GetStats(ctx)
	if err != nil {
		return toHTTPError(err)
	}
	tasks, err := h.tasks.ListTasks(ctx, ports.TaskFilter{})
	if err != nil {
		return toHTTPError(err)
	}
	recent, err := h.tasks.RecentTasks(ctx, 0)
	if err != nil {
		return toHTTPError(err)
	}
	groups, err := h.groups.ListGroups(ctx)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, view.NewDashboard(*stats, tasks, recent, groups, h.now()))
}

// Tasks serves the task screen in the grid, list or kanban layout. The
// layout defaults to the view mode setting.
func (h *ViewHandler) Tasks(c echo.Context) error {
	ctx := c.Request().Context()

	mode := c.QueryParam("mode")
	if mode == "" {
		settings, err := h.settings.GetSettings(ctx)
		if err != nil {
			return toHTTPError(err)
		}
		mode = settings.ViewMode
	}

	completed, err := queryBool(c, "completed")
	if err != nil {
		return err
	}
	tasks, err := h.tasks.ListTasks(ctx, ports.TaskFilter{
		Search:    c.QueryParam("search"),
		GroupID:   c.QueryParam("group"),
		Tag:       c.QueryParam("tag"),
		Priority:  entities.Priority(c.QueryParam("priority")),
		Completed: completed,
	})
	if err != nil {
		return toHTTPError(err)
	}
	groups, err := h.groups.ListGroups(ctx)
	if err != nil {
		return toHTTPError(err)
	}

	now := h.now()
	switch mode {
	case "grid":
		return c.JSON(http.StatusOK, view.TaskCards(tasks, groups, now))
	case "list":
		return c.JSON(http.StatusOK, view.GroupedList(tasks, groups, now))
	case "kanban":
		return c.JSON(http.StatusOK, view.Kanban(tasks, groups, now))
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid mode parameter")
	}
}

func (h *ViewHandler) Notes(c echo.Context) error {
	notes, err := h.notes.ListNotes(c.Request().Context(), ports.NoteFilter{
		Search: c.QueryParam("search"),
		Tag:    c.QueryParam("tag"),
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, view.NoteCards(notes))
}

// Focus serves the timer screen. Without a session it shows the full
// countdown of the focus timer setting.
func (h *ViewHandler) Focus(c echo.Context) error {
	ctx := c.Request().Context()

	settings, err := h.settings.GetSettings(ctx)
	if err != nil {
		return toHTTPError(err)
	}

	session, err := h.focus.Current(ctx)
	if err != nil && !errors.Is(err, entities.ErrNoActiveSession) {
		return toHTTPError(err)
	}

	var task *entities.Task
	if session != nil {
		task, err = h.tasks.GetTask(ctx, session.TaskID)
		if err != nil && !errors.Is(err, entities.ErrTaskNotFound) {
			return toHTTPError(err)
		}
	}

	return c.JSON(http.StatusOK, view.NewFocusView(session, task, settings.FocusTimer))
}

func (h *ViewHandler) Archive(c echo.Context) error {
	archive, err := h.archive.GetArchive(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, view.ArchiveView(*archive))
}
