package ports

import (
	"context"
	"io"
	"time"

	"github.com/fokusplaner/core/internal/domain/entities"
)

// TaskService interface for task management operations
type TaskService interface {
	CreateTask(ctx context.Context, req CreateTaskRequest) (*entities.Task, error)
	GetTask(ctx context.Context, id string) (*entities.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]entities.Task, error)
	RecentTasks(ctx context.Context, limit int) ([]entities.Task, error)
	UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*entities.Task, error)
	CompleteTask(ctx context.Context, id string) (*entities.Task, error)
	UncompleteTask(ctx context.Context, id string) (*entities.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ArchiveTask(ctx context.Context, id string) error
	RestoreTask(ctx context.Context, id string) (*entities.Task, error)
	DuplicateTask(ctx context.Context, id string) (*entities.Task, error)

	AddSubtask(ctx context.Context, taskID, text string) (*entities.Subtask, error)
	UpdateSubtaskText(ctx context.Context, taskID, subtaskID, text string) (*entities.Task, error)
	ToggleSubtask(ctx context.Context, taskID, subtaskID string) (*entities.Task, error)
	DeleteSubtask(ctx context.Context, taskID, subtaskID string) (*entities.Task, error)

	AddTaskNote(ctx context.Context, taskID, text string) (*entities.TaskNote, error)
	UpdateTaskNote(ctx context.Context, taskID, noteID, text string) (*entities.Task, error)
	ToggleTaskNoteImportant(ctx context.Context, taskID, noteID string) (*entities.Task, error)
	DeleteTaskNote(ctx context.Context, taskID, noteID string) (*entities.Task, error)
}

// NoteService interface for note management operations
type NoteService interface {
	CreateNote(ctx context.Context, req CreateNoteRequest) (*entities.Note, error)
	GetNote(ctx context.Context, id string) (*entities.Note, error)
	ListNotes(ctx context.Context, filter NoteFilter) ([]entities.Note, error)
	UpdateNote(ctx context.Context, id string, req UpdateNoteRequest) (*entities.Note, error)
	DeleteNote(ctx context.Context, id string) error
	TogglePin(ctx context.Context, id string) (*entities.Note, error)
	ArchiveNote(ctx context.Context, id string) error
	RestoreNote(ctx context.Context, id string) (*entities.Note, error)
	ConvertToTask(ctx context.Context, id, groupID string) (*entities.Task, error)
}

// GroupService interface for group management operations
type GroupService interface {
	CreateGroup(ctx context.Context, req CreateGroupRequest) (*entities.Group, error)
	GetGroup(ctx context.Context, id string) (*entities.Group, error)
	ListGroups(ctx context.Context) ([]entities.Group, error)
	UpdateGroup(ctx context.Context, id string, req UpdateGroupRequest) (*entities.Group, error)
	DeleteGroup(ctx context.Context, id string) error
	ReorderGroups(ctx context.Context, ids []string) ([]entities.Group, error)
	ResetGroupOrder(ctx context.Context) ([]entities.Group, error)
	TaskCounts(ctx context.Context) (map[string]int, error)
}

// ArchiveService interface for archive operations
type ArchiveService interface {
	GetArchive(ctx context.Context) (*entities.Archive, error)
	RestoreItem(ctx context.Context, kind ArchiveKind, id string) error
	DeleteItem(ctx context.Context, kind ArchiveKind, id string) error
	ClearArchive(ctx context.Context) error
}

// FocusService interface for the focus timer
type FocusService interface {
	Start(ctx context.Context, taskID string) (*entities.FocusSession, error)
	Pause(ctx context.Context) (*entities.FocusSession, error)
	Resume(ctx context.Context) (*entities.FocusSession, error)
	Toggle(ctx context.Context) (*entities.FocusSession, error)
	Stop(ctx context.Context) (*FocusResult, error)
	Tick(ctx context.Context) (*FocusResult, error)
	AddNote(ctx context.Context, text string) (*entities.SessionNote, error)
	StartBreak(ctx context.Context, kind BreakKind) (time.Duration, error)
	Current(ctx context.Context) (*entities.FocusSession, error)
	Run(ctx context.Context) error
}

// StatsService interface for statistics
type StatsService interface {
	GetStats(ctx context.Context) (*entities.Stats, error)
	TodayStats(ctx context.Context) (*entities.DailyStats, error)
}

// SettingsService interface for user preferences
type SettingsService interface {
	GetSettings(ctx context.Context) (*entities.Settings, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*entities.Settings, error)
}

// SearchService interface for global search
type SearchService interface {
	Search(ctx context.Context, term string) (*SearchResults, error)
}

// BackupService interface for snapshots
type BackupService interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
	CreateBackup(ctx context.Context) (string, error)
	Export(ctx context.Context, w io.Writer, format BackupFormat) error
}

// Request/Response Types

// Task related types
type CreateTaskRequest struct {
	Title         string             `json:"title" validate:"required,max=500"`
	Description   string             `json:"description" validate:"max=5000"`
	GroupID       string             `json:"groupId"`
	Priority      entities.Priority  `json:"priority" validate:"omitempty,oneof=low medium high"`
	Tags          []string           `json:"tags" validate:"omitempty,dive,min=1,max=50"`
	Subtasks      []entities.Subtask `json:"subtasks"`
	DueDate       *time.Time         `json:"dueDate"`
	EstimatedTime int                `json:"estimatedTime" validate:"min=0"`
}

type UpdateTaskRequest struct {
	Title         *string            `json:"title" validate:"omitempty,min=1,max=500"`
	Description   *string            `json:"description" validate:"omitempty,max=5000"`
	GroupID       *string            `json:"groupId" validate:"omitempty,min=1"`
	Priority      *entities.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Tags          *[]string          `json:"tags" validate:"omitempty,dive,min=1,max=50"`
	DueDate       *time.Time         `json:"dueDate"`
	EstimatedTime *int               `json:"estimatedTime" validate:"omitempty,min=0"`
	ActualTime    *int               `json:"actualTime" validate:"omitempty,min=0"`
}

type TaskFilter struct {
	Search    string            `json:"search"`
	GroupID   string            `json:"groupId"`
	Tag       string            `json:"tag"`
	Priority  entities.Priority `json:"priority"`
	Completed *bool             `json:"completed"`
}

// Note related types
type CreateNoteRequest struct {
	Title   string   `json:"title" validate:"max=200"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags" validate:"omitempty,dive,min=1,max=50"`
}

type UpdateNoteRequest struct {
	Title   *string   `json:"title" validate:"omitempty,max=200"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags" validate:"omitempty,dive,min=1,max=50"`
}

type NoteFilter struct {
	Search string `json:"search"`
	Tag    string `json:"tag"`
	Pinned *bool  `json:"pinned"`
}

// Group related types
type CreateGroupRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type UpdateGroupRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

type ReorderGroupsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// Archive related types
type ArchiveKind string

const (
	ArchiveKindTask ArchiveKind = "task"
	ArchiveKindNote ArchiveKind = "note"
)

func (k ArchiveKind) IsValid() bool {
	return k == ArchiveKindTask || k == ArchiveKindNote
}

// Focus related types
type BreakKind string

const (
	BreakShort BreakKind = "short"
	BreakLong  BreakKind = "long"
)

// FocusResult describes how a session ended or advanced
type FocusResult struct {
	Session        entities.FocusSession `json:"session"`
	State          entities.FocusState   `json:"state"`
	ElapsedMinutes int                   `json:"elapsedMinutes"`
}

// Settings related types
type UpdateSettingsRequest struct {
	FocusTimer        *int    `json:"focusTimer" validate:"omitempty,min=1,max=240"`
	BreakDuration     *int    `json:"breakDuration" validate:"omitempty,min=1,max=120"`
	LongBreakDuration *int    `json:"longBreakDuration" validate:"omitempty,min=1,max=240"`
	Theme             *string `json:"theme" validate:"omitempty,oneof=dark light"`
	ViewMode          *string `json:"viewMode" validate:"omitempty,oneof=grid list kanban"`
	Notifications     *bool   `json:"notifications"`
	AutoArchive       *bool   `json:"autoArchive"`
	AutoSave          *bool   `json:"autoSave"`
	AutoSaveInterval  *int    `json:"autoSaveInterval" validate:"omitempty,min=1000"`
}

// Search related types
type SearchResults struct {
	Term          string                  `json:"term"`
	Tasks         []entities.Task         `json:"tasks"`
	Notes         []entities.Note         `json:"notes"`
	ArchivedTasks []entities.ArchivedTask `json:"archivedTasks"`
	ArchivedNotes []entities.ArchivedNote `json:"archivedNotes"`
}

// Total counts every hit.
func (r SearchResults) Total() int {
	return len(r.Tasks) + len(r.Notes) + len(r.ArchivedTasks) + len(r.ArchivedNotes)
}

// Backup related types
type BackupFormat string

const (
	BackupJSON BackupFormat = "json"
	BackupYAML BackupFormat = "yaml"
)

// Snapshot combines every collection into one document
type Snapshot struct {
	Tasks    []entities.Task   `json:"tasks"`
	Notes    []entities.Note   `json:"notes"`
	Groups   []entities.Group  `json:"groups"`
	Settings entities.Settings `json:"settings"`
	Archive  entities.Archive  `json:"archive"`
	Stats    entities.Stats    `json:"stats"`
}
