package entities

import (
	"errors"
	"math"
	"slices"
	"strings"
	"time"
)

// Common errors
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrNoteNotFound     = errors.New("note not found")
	ErrGroupNotFound    = errors.New("group not found")
	ErrSubtaskNotFound  = errors.New("subtask not found")
	ErrTaskNoteNotFound = errors.New("task note not found")
	ErrArchivedNotFound = errors.New("archived item not found")
	ErrDefaultGroup     = errors.New("the default group cannot be deleted")
	ErrNotConfirmed     = errors.New("operation not confirmed")
	ErrValidation       = errors.New("validation failed")
	ErrPersist          = errors.New("failed to persist data")
)

// DefaultGroupID is the reserved group every task falls back to.
const DefaultGroupID = "default"

const (
	DefaultGroupName  = "General"
	DefaultGroupColor = "#4a9eff"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists priorities from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Task represents a unit of work with subtasks and a note thread
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	GroupID       string     `json:"groupId"`
	Priority      Priority   `json:"priority"`
	Tags          []string   `json:"tags"`
	Subtasks      []Subtask  `json:"subtasks"`
	Notes         []TaskNote `json:"notes"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	Progress      int        `json:"progress"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	DueDate       *time.Time `json:"dueDate"`
	EstimatedTime int        `json:"estimatedTime"`
	ActualTime    int        `json:"actualTime"`
}

// Subtask is a checklist item contributing to the task progress
type Subtask struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// TaskNote is a freeform annotation attached to a task, newest first
type TaskNote struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	Important bool       `json:"important"`
}

// Note represents a standalone note
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Group partitions tasks
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	Order     *int      `json:"order,omitempty"`
}

// ArchivedTask is a task moved out of the active set
type ArchivedTask struct {
	Task
	ArchivedAt time.Time `json:"archivedAt"`
}

// ArchivedNote is a note moved out of the active set
type ArchivedNote struct {
	Note
	ArchivedAt time.Time `json:"archivedAt"`
}

// Archive holds the archived tasks and notes
type Archive struct {
	Tasks []ArchivedTask `json:"tasks"`
	Notes []ArchivedNote `json:"notes"`
}

// DailyStats are the counters of a single day
type DailyStats struct {
	FocusTime      int `json:"focusTime"`
	CompletedTasks int `json:"completedTasks"`
	CreatedNotes   int `json:"createdNotes"`
}

// Stats are the lifetime and per-day counters
type Stats struct {
	TotalFocusTime int                   `json:"totalFocusTime"`
	CompletedTasks int                   `json:"completedTasks"`
	CreatedNotes   int                   `json:"createdNotes"`
	DailyStats     map[string]DailyStats `json:"dailyStats"`
}

type StatKind string

const (
	StatFocusTime     StatKind = "focusTime"
	StatCompletedTask StatKind = "completedTask"
	StatCreatedNote   StatKind = "createdNote"
)

// DayKey formats the stats bucket for t in local time.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// Settings are the user preferences
type Settings struct {
	FocusTimer        int    `json:"focusTimer"`
	BreakDuration     int    `json:"breakDuration"`
	LongBreakDuration int    `json:"longBreakDuration"`
	Theme             string `json:"theme"`
	ViewMode          string `json:"viewMode"`
	Notifications     bool   `json:"notifications"`
	AutoArchive       bool   `json:"autoArchive"`
	AutoSave          bool   `json:"autoSave"`
	AutoSaveInterval  int    `json:"autoSaveInterval"`
}

// DefaultSettings returns the settings of a fresh installation.
func DefaultSettings() Settings {
	return Settings{
		FocusTimer:        20,
		BreakDuration:     5,
		LongBreakDuration: 15,
		Theme:             "dark",
		ViewMode:          "grid",
		Notifications:     true,
		AutoArchive:       false,
		AutoSave:          true,
		AutoSaveInterval:  30000,
	}
}

// DefaultGroup returns the reserved fallback group.
func DefaultGroup(now time.Time) Group {
	return Group{
		ID:        DefaultGroupID,
		Name:      DefaultGroupName,
		Color:     DefaultGroupColor,
		CreatedAt: now,
	}
}

// NewStats returns zeroed statistics.
func NewStats() Stats {
	return Stats{DailyStats: make(map[string]DailyStats)}
}

// Record adds value to the counters of kind, both lifetime and for the day of now.
func (s *Stats) Record(kind StatKind, value int, now time.Time) {
	if s.DailyStats == nil {
		s.DailyStats = make(map[string]DailyStats)
	}
	key := DayKey(now)
	day := s.DailyStats[key]

	switch kind {
	case StatFocusTime:
		s.TotalFocusTime += value
		day.FocusTime += value
	case StatCompletedTask:
		s.CompletedTasks += value
		day.CompletedTasks += value
	case StatCreatedNote:
		s.CreatedNotes += value
		day.CreatedNotes += value
	}

	s.DailyStats[key] = day
}

// Day returns the counters for the day of t.
func (s Stats) Day(t time.Time) DailyStats {
	return s.DailyStats[DayKey(t)]
}

// Business logic methods for Task

// CompletedSubtasks counts the checked subtasks.
func (t *Task) CompletedSubtasks() int {
	n := 0
	for _, st := range t.Subtasks {
		if st.Completed {
			n++
		}
	}
	return n
}

// SubtaskProgress is round(100 * done / total). Without subtasks it is
// 100 for completed tasks and 0 otherwise.
func (t *Task) SubtaskProgress() int {
	total := len(t.Subtasks)
	if total == 0 {
		if t.Completed {
			return 100
		}
		return 0
	}
	return int(math.Round(100 * float64(t.CompletedSubtasks()) / float64(total)))
}

// RecomputeProgress derives progress from the subtasks. When every subtask
// is done and the task was still open, the task is completed and true is
// returned so the caller can record the statistic.
func (t *Task) RecomputeProgress(now time.Time) bool {
	t.Progress = t.SubtaskProgress()
	if len(t.Subtasks) == 0 {
		return false
	}

	if t.Progress == 100 && !t.Completed {
		t.Completed = true
		t.CompletedAt = &now
		return true
	}
	return false
}

// FindSubtask returns the index of the subtask or -1.
func (t *Task) FindSubtask(id string) int {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return i
		}
	}
	return -1
}

// FindNote returns the index of the task note or -1.
func (t *Task) FindNote(id string) int {
	for i := range t.Notes {
		if t.Notes[i].ID == id {
			return i
		}
	}
	return -1
}

// Matches reports whether term is a case-insensitive substring of the
// title, description or any tag. An empty term matches everything.
func (t *Task) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return containsFold(t.Title, term) || containsFold(t.Description, term) || anyTagContains(t.Tags, term)
}

// HasTag reports exact tag membership.
func (t *Task) HasTag(tag string) bool {
	return hasTag(t.Tags, tag)
}

// IsOverdue reports whether an open task is past its due date
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return now.After(*t.DueDate)
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	t.Tags = slices.Clone(t.Tags)
	t.Subtasks = slices.Clone(t.Subtasks)
	t.Notes = slices.Clone(t.Notes)
	return t
}

// Normalize replaces nil slices so the JSON documents keep arrays.
func (t *Task) Normalize() {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
	if t.Notes == nil {
		t.Notes = []TaskNote{}
	}
	if t.GroupID == "" {
		t.GroupID = DefaultGroupID
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

// Business logic methods for Note

// Matches reports whether term is a case-insensitive substring of the
// title, content or any tag.
func (n *Note) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return containsFold(n.Title, term) || containsFold(n.Content, term) || anyTagContains(n.Tags, term)
}

// HasTag reports exact tag membership.
func (n *Note) HasTag(tag string) bool {
	return hasTag(n.Tags, tag)
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	n.Tags = slices.Clone(n.Tags)
	return n
}

const (
	noteTitleLength  = 30
	UntitledNoteName = "New note"
)

// GenerateNoteTitle derives a title from the first line of content.
func GenerateNoteTitle(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return UntitledNoteName
	}

	line := strings.SplitN(trimmed, "\n", 2)[0]
	runes := []rune(line)
	if len(runes) > noteTitleLength {
		runes = runes[:noteTitleLength]
	}
	title := string(runes)
	if len([]rune(title)) < len([]rune(content)) {
		return title + "..."
	}
	return title
}

// Utility methods
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Rank orders priorities, high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}

func anyTagContains(tags []string, lowerTerm string) bool {
	for _, tag := range tags {
		if containsFold(tag, lowerTerm) {
			return true
		}
	}
	return false
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
