// Package view turns domain entities into display-ready view-models.
// Nothing here mutates state.
package view

import (
	"fmt"
	"sort"
	"time"

	"github.com/fokusplaner/core/internal/domain/entities"
)

const (
	descriptionPreview = 100
	contentPreview     = 150
	visibleTags        = 3

	UnknownGroupName  = "Unknown"
	UnknownGroupColor = "#666"

	DateLayout = "2006-01-02 15:04"
)

// PriorityStyle is the label and color of a priority
type PriorityStyle struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var priorityStyles = map[entities.Priority]PriorityStyle{
	entities.PriorityLow:    {Label: "Low", Color: "#4caf50"},
	entities.PriorityMedium: {Label: "Medium", Color: "#ff9800"},
	entities.PriorityHigh:   {Label: "High", Color: "#f44336"},
}

// Priority returns the style of p, falling back to medium
func Priority(p entities.Priority) PriorityStyle {
	if style, ok := priorityStyles[p]; ok {
		return style
	}
	return priorityStyles[entities.PriorityMedium]
}

// TaskCard is the summary of a task shown in grids, lists and boards
type TaskCard struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Priority      entities.Priority `json:"priority"`
	PriorityLabel string            `json:"priorityLabel"`
	PriorityColor string            `json:"priorityColor"`
	Progress      int               `json:"progress"`
	SubtasksDone  int               `json:"subtasksDone"`
	SubtasksTotal int               `json:"subtasksTotal"`
	Tags          []string          `json:"tags"`
	MoreTags      int               `json:"moreTags"`
	GroupName     string            `json:"groupName"`
	GroupColor    string            `json:"groupColor"`
	Completed     bool              `json:"completed"`
	Overdue       bool              `json:"overdue"`
	DueDate       string            `json:"dueDate,omitempty"`
	Created       string            `json:"created"`
	NoteCount     int               `json:"noteCount"`
}

// NewTaskCard builds the card of task. groups resolves the group name.
func NewTaskCard(task entities.Task, groups []entities.Group, now time.Time) TaskCard {
	style := Priority(task.Priority)
	name, color := UnknownGroupName, UnknownGroupColor
	for _, g := range groups {
		if g.ID == task.GroupID {
			name, color = g.Name, g.Color
			break
		}
	}

	tags := task.Tags
	more := 0
	if len(tags) > visibleTags {
		more = len(tags) - visibleTags
		tags = tags[:visibleTags]
	}

	card := TaskCard{
		ID:            task.ID,
		Title:         task.Title,
		Description:   Truncate(task.Description, descriptionPreview),
		Priority:      task.Priority,
		PriorityLabel: style.Label,
		PriorityColor: style.Color,
		Progress:      task.Progress,
		SubtasksDone:  task.CompletedSubtasks(),
		SubtasksTotal: len(task.Subtasks),
		Tags:          append([]string{}, tags...),
		MoreTags:      more,
		GroupName:     name,
		GroupColor:    color,
		Completed:     task.Completed,
		Overdue:       task.IsOverdue(now),
		Created:       FormatDate(task.CreatedAt),
		NoteCount:     len(task.Notes),
	}
	if task.DueDate != nil {
		card.DueDate = FormatDate(*task.DueDate)
	}
	return card
}

// TaskCards builds the cards of tasks in order
func TaskCards(tasks []entities.Task, groups []entities.Group, now time.Time) []TaskCard {
	cards := make([]TaskCard, 0, len(tasks))
	for _, t := range tasks {
		cards = append(cards, NewTaskCard(t, groups, now))
	}
	return cards
}

// KanbanColumn holds the tasks of one priority
type KanbanColumn struct {
	Priority entities.Priority `json:"priority"`
	Label    string            `json:"label"`
	Color    string            `json:"color"`
	Count    int               `json:"count"`
	Tasks    []TaskCard        `json:"tasks"`
}

// Kanban splits tasks into high, medium and low columns
func Kanban(tasks []entities.Task, groups []entities.Group, now time.Time) []KanbanColumn {
	columns := make([]KanbanColumn, 0, len(entities.Priorities))
	index := make(map[entities.Priority]int, len(entities.Priorities))
	for i, p := range entities.Priorities {
		style := Priority(p)
		columns = append(columns, KanbanColumn{
			Priority: p,
			Label:    style.Label + " priority",
			Color:    style.Color,
			Tasks:    []TaskCard{},
		})
		index[p] = i
	}

	for _, t := range tasks {
		i, ok := index[t.Priority]
		if !ok {
			i = index[entities.PriorityMedium]
		}
		columns[i].Tasks = append(columns[i].Tasks, NewTaskCard(t, groups, now))
	}
	for i := range columns {
		columns[i].Count = len(columns[i].Tasks)
	}
	return columns
}

// GroupSection is one group of the list view
type GroupSection struct {
	GroupID string     `json:"groupId"`
	Name    string     `json:"name"`
	Color   string     `json:"color"`
	Tasks   []TaskCard `json:"tasks"`
}

// GroupedList sections tasks by group in the order of groups. Empty
// groups are left out; tasks of unknown groups come last.
func GroupedList(tasks []entities.Task, groups []entities.Group, now time.Time) []GroupSection {
	byGroup := make(map[string][]entities.Task)
	for _, t := range tasks {
		byGroup[t.GroupID] = append(byGroup[t.GroupID], t)
	}

	sections := []GroupSection{}
	for _, g := range groups {
		list, ok := byGroup[g.ID]
		if !ok {
			continue
		}
		sections = append(sections, GroupSection{
			GroupID: g.ID,
			Name:    g.Name,
			Color:   g.Color,
			Tasks:   TaskCards(list, groups, now),
		})
		delete(byGroup, g.ID)
	}

	if len(byGroup) > 0 {
		var orphans []entities.Task
		for _, t := range tasks {
			if _, ok := byGroup[t.GroupID]; ok {
				orphans = append(orphans, t)
			}
		}
		sections = append(sections, GroupSection{
			Name:  UnknownGroupName,
			Color: UnknownGroupColor,
			Tasks: TaskCards(orphans, groups, now),
		})
	}
	return sections
}

// Dashboard is the start page summary
type Dashboard struct {
	Today          entities.DailyStats `json:"today"`
	TotalFocusTime string              `json:"totalFocusTime"`
	CompletedTasks int                 `json:"completedTasks"`
	CreatedNotes   int                 `json:"createdNotes"`
	OpenTasks      int                 `json:"openTasks"`
	Recent         []TaskCard          `json:"recent"`
}

// NewDashboard builds the dashboard. recent should already be limited.
func NewDashboard(stats entities.Stats, tasks, recent []entities.Task, groups []entities.Group, now time.Time) Dashboard {
	open := 0
	for _, t := range tasks {
		if !t.Completed {
			open++
		}
	}
	return Dashboard{
		Today:          stats.Day(now),
		TotalFocusTime: FormatMinutes(stats.TotalFocusTime),
		CompletedTasks: stats.CompletedTasks,
		CreatedNotes:   stats.CreatedNotes,
		OpenTasks:      open,
		Recent:         TaskCards(recent, groups, now),
	}
}

// NoteCard is the summary of a note
type NoteCard struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Preview string   `json:"preview"`
	Tags    []string `json:"tags"`
	Pinned  bool     `json:"pinned"`
	Updated string   `json:"updated"`
}

func NewNoteCard(n entities.Note) NoteCard {
	return NoteCard{
		ID:      n.ID,
		Title:   n.Title,
		Preview: Truncate(n.Content, contentPreview),
		Tags:    append([]string{}, n.Tags...),
		Pinned:  n.Pinned,
		Updated: FormatDate(n.UpdatedAt),
	}
}

func NoteCards(notes []entities.Note) []NoteCard {
	cards := make([]NoteCard, 0, len(notes))
	for _, n := range notes {
		cards = append(cards, NewNoteCard(n))
	}
	return cards
}

// FocusView is the state of the focus screen
type FocusView struct {
	Active    bool                   `json:"active"`
	Paused    bool                   `json:"paused"`
	State     entities.FocusState    `json:"state"`
	TaskID    string                 `json:"taskId,omitempty"`
	TaskTitle string                 `json:"taskTitle,omitempty"`
	Remaining string                 `json:"remaining"`
	Progress  int                    `json:"progress"`
	Notes     []entities.SessionNote `json:"notes"`
}

// NewFocusView describes session. A nil session renders as idle with the
// full countdown of defaultMinutes.
func NewFocusView(session *entities.FocusSession, task *entities.Task, defaultMinutes int) FocusView {
	if session == nil {
		return FocusView{
			State:     entities.FocusIdle,
			Remaining: FormatRemaining(int64(defaultMinutes) * time.Minute.Milliseconds()),
			Notes:     []entities.SessionNote{},
		}
	}

	v := FocusView{
		Active:    session.IsActive,
		Paused:    session.IsPaused,
		State:     session.State(),
		TaskID:    session.TaskID,
		Remaining: FormatRemaining(session.RemainingMs),
		Progress:  TimerProgress(*session),
		Notes:     append([]entities.SessionNote{}, session.Notes...),
	}
	if task != nil {
		v.TaskTitle = task.Title
	}
	return v
}

// TimerProgress is the elapsed share of the session in percent
func TimerProgress(s entities.FocusSession) int {
	if s.DurationMs <= 0 {
		return 0
	}
	elapsed := s.DurationMs - s.RemainingMs
	if elapsed < 0 {
		return 0
	}
	return int(elapsed * 100 / s.DurationMs)
}

// ArchiveKind names the kind of an archived item
type ArchiveKind string

const (
	ArchivedTask ArchiveKind = "task"
	ArchivedNote ArchiveKind = "note"
)

// ArchiveItem is one row of the archive view
type ArchiveItem struct {
	Kind     ArchiveKind `json:"kind"`
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Preview  string      `json:"preview"`
	Created  string      `json:"created"`
	Archived string      `json:"archived"`

	archivedAt time.Time
}

// ArchiveView lists archived tasks and notes, most recently archived first
func ArchiveView(archive entities.Archive) []ArchiveItem {
	items := make([]ArchiveItem, 0, len(archive.Tasks)+len(archive.Notes))
	for _, t := range archive.Tasks {
		items = append(items, ArchiveItem{
			Kind:       ArchivedTask,
			ID:         t.ID,
			Title:      t.Title,
			Preview:    Truncate(t.Description, contentPreview),
			Created:    FormatDate(t.CreatedAt),
			Archived:   FormatDate(t.ArchivedAt),
			archivedAt: t.ArchivedAt,
		})
	}
	for _, n := range archive.Notes {
		items = append(items, ArchiveItem{
			Kind:       ArchivedNote,
			ID:         n.ID,
			Title:      n.Title,
			Preview:    Truncate(n.Content, contentPreview),
			Created:    FormatDate(n.CreatedAt),
			Archived:   FormatDate(n.ArchivedAt),
			archivedAt: n.ArchivedAt,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].archivedAt.After(items[j].archivedAt)
	})
	return items
}

// FormatRemaining formats milliseconds as MM:SS
func FormatRemaining(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FormatMinutes formats minutes as "1h 05m" or "45m"
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// FormatDate formats t in local time
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(DateLayout)
}

// Truncate shortens s to n runes and appends "..." when it did
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
