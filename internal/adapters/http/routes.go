package http

import (
	"github.com/labstack/echo/v4"

	"github.com/fokusplaner/core/internal/application/services"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
)

// Handlers bundles every handler of the API
type Handlers struct {
	Tasks         *TaskHandler
	Notes         *NoteHandler
	Groups        *GroupHandler
	Archive       *ArchiveHandler
	Focus         *FocusHandler
	System        *SystemHandler
	Views         *ViewHandler
	Notifications *NotificationFeed
}

// NewHandlers builds the handlers over the planner services. feed may be
// nil when nothing publishes notifications to it.
func NewHandlers(p *services.Planner, feed *NotificationFeed, log *logger.Logger) Handlers {
	if feed == nil {
		feed = NewNotificationFeed(0, nil)
	}
	return Handlers{
		Tasks:   NewTaskHandler(p.Tasks, log),
		Notes:   NewNoteHandler(p.Notes, log),
		Groups:  NewGroupHandler(p.Groups, log),
		Archive: NewArchiveHandler(p.Archive, log),
		Focus:   NewFocusHandler(p.Focus, log),
		System:  NewSystemHandler(p.Stats, p.Settings, p.Search, p.Backup, log),
		Views: NewViewHandler(ViewServices{
			Tasks:    p.Tasks,
			Notes:    p.Notes,
			Groups:   p.Groups,
			Archive:  p.Archive,
			Focus:    p.Focus,
			Stats:    p.Stats,
			Settings: p.Settings,
		}, p.Store.Now, log),
		Notifications: feed,
	}
}

// Register mounts the API routes on g
func (h Handlers) Register(g *echo.Group) {
	g.Use(Confirmation())

	tasks := g.Group("/tasks")
	tasks.GET("", h.Tasks.ListTasks)
	tasks.POST("", h.Tasks.CreateTask)
	tasks.GET("/recent", h.Tasks.RecentTasks)
	tasks.GET("/:id", h.Tasks.GetTask)
	tasks.PATCH("/:id", h.Tasks.UpdateTask)
	tasks.DELETE("/:id", h.Tasks.DeleteTask)
	tasks.POST("/:id/complete", h.Tasks.CompleteTask)
	tasks.POST("/:id/uncomplete", h.Tasks.UncompleteTask)
	tasks.POST("/:id/duplicate", h.Tasks.DuplicateTask)
	tasks.POST("/:id/archive", h.Tasks.ArchiveTask)
	tasks.POST("/:id/subtasks", h.Tasks.AddSubtask)
	tasks.PATCH("/:id/subtasks/:subtaskId", h.Tasks.UpdateSubtask)
	tasks.POST("/:id/subtasks/:subtaskId/toggle", h.Tasks.ToggleSubtask)
	tasks.DELETE("/:id/subtasks/:subtaskId", h.Tasks.DeleteSubtask)
	tasks.POST("/:id/notes", h.Tasks.AddNote)
	tasks.PATCH("/:id/notes/:noteId", h.Tasks.UpdateNote)
	tasks.POST("/:id/notes/:noteId/important", h.Tasks.ToggleNoteImportant)
	tasks.DELETE("/:id/notes/:noteId", h.Tasks.DeleteNote)

	notes := g.Group("/notes")
	notes.GET("", h.Notes.ListNotes)
	notes.POST("", h.Notes.CreateNote)
	notes.GET("/:id", h.Notes.GetNote)
	notes.PATCH("/:id", h.Notes.UpdateNote)
	notes.DELETE("/:id", h.Notes.DeleteNote)
	notes.POST("/:id/pin", h.Notes.TogglePin)
	notes.POST("/:id/archive", h.Notes.ArchiveNote)
	notes.POST("/:id/convert", h.Notes.ConvertToTask)

	groups := g.Group("/groups")
	groups.GET("", h.Groups.ListGroups)
	groups.POST("", h.Groups.CreateGroup)
	groups.GET("/counts", h.Groups.TaskCounts)
	groups.PUT("/order", h.Groups.ReorderGroups)
	groups.DELETE("/order", h.Groups.ResetOrder)
	groups.GET("/:id", h.Groups.GetGroup)
	groups.PATCH("/:id", h.Groups.UpdateGroup)
	groups.DELETE("/:id", h.Groups.DeleteGroup)

	archive := g.Group("/archive")
	archive.GET("", h.Archive.GetArchive)
	archive.DELETE("", h.Archive.ClearArchive)
	archive.POST("/:kind/:id/restore", h.Archive.RestoreItem)
	archive.DELETE("/:kind/:id", h.Archive.DeleteItem)

	focus := g.Group("/focus")
	focus.GET("", h.Focus.Current)
	focus.POST("", h.Focus.Start)
	focus.DELETE("", h.Focus.Stop)
	focus.POST("/pause", h.Focus.Pause)
	focus.POST("/resume", h.Focus.Resume)
	focus.POST("/toggle", h.Focus.Toggle)
	focus.POST("/notes", h.Focus.AddNote)
	focus.POST("/break", h.Focus.StartBreak)

	g.GET("/stats", h.System.GetStats)
	g.GET("/stats/today", h.System.TodayStats)
	g.GET("/settings", h.System.GetSettings)
	g.PATCH("/settings", h.System.UpdateSettings)
	g.GET("/search", h.System.Search)
	g.POST("/backups", h.System.CreateBackup)
	g.GET("/export", h.System.Export)

	views := g.Group("/views")
	views.GET("/dashboard", h.Views.Dashboard)
	views.GET("/tasks", h.Views.Tasks)
	views.GET("/notes", h.Views.Notes)
	views.GET("/focus", h.Views.Focus)
	views.GET("/archive", h.Views.Archive)

	g.GET("/notifications", h.Notifications.List)
}
