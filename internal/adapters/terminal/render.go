package terminal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fokusplaner/core/internal/adapters/view"
	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/ports"
)

const progressWidth = 20

// Renderer turns view-models into terminal text
type Renderer struct {
	styles Styles
}

func NewRenderer(styles Styles) *Renderer {
	return &Renderer{styles: styles}
}

// TaskCard renders one task card
func (r *Renderer) TaskCard(c view.TaskCard) string {
	var sb strings.Builder

	marker := lipgloss.NewStyle().Foreground(lipgloss.Color(c.PriorityColor)).Render("●")
	title := r.styles.Title.Render(c.Title)
	if c.Completed {
		title = r.styles.Success.Render("✓ ") + r.styles.Muted.Strikethrough(true).Render(c.Title)
	}
	sb.WriteString(fmt.Sprintf("%s %s  %s\n", marker, title, r.styles.Muted.Render(c.ID)))

	if c.Description != "" {
		sb.WriteString(r.styles.Body.Render(c.Description) + "\n")
	}
	if c.SubtasksTotal > 0 {
		sb.WriteString(fmt.Sprintf("%s %d/%d subtasks\n", ProgressBar(c.Progress, progressWidth), c.SubtasksDone, c.SubtasksTotal))
	}
	if len(c.Tags) > 0 {
		tags := make([]string, 0, len(c.Tags))
		for _, tag := range c.Tags {
			tags = append(tags, r.styles.Tag.Render("#"+tag))
		}
		line := strings.Join(tags, " ")
		if c.MoreTags > 0 {
			line += r.styles.Muted.Render(fmt.Sprintf(" +%d", c.MoreTags))
		}
		sb.WriteString(line + "\n")
	}

	group := lipgloss.NewStyle().Foreground(lipgloss.Color(c.GroupColor)).Render(c.GroupName)
	meta := fmt.Sprintf("%s · %s · %s", group, c.PriorityLabel, c.Created)
	if c.DueDate != "" {
		due := "due " + c.DueDate
		if c.Overdue {
			due = r.styles.Error.Render(due)
		}
		meta += " · " + due
	}
	sb.WriteString(r.styles.Muted.Render(meta))

	return r.styles.Card.Render(sb.String())
}

// TaskCards renders cards one below the other
func (r *Renderer) TaskCards(cards []view.TaskCard) string {
	if len(cards) == 0 {
		return r.styles.Muted.Render("No tasks.")
	}
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, r.TaskCard(c))
	}
	return strings.Join(out, "\n")
}

// Kanban renders the priority columns side by side
func (r *Renderer) Kanban(columns []view.KanbanColumn) string {
	rendered := make([]string, 0, len(columns))
	for _, col := range columns {
		header := lipgloss.NewStyle().Foreground(lipgloss.Color(col.Color)).Bold(true).
			Render(fmt.Sprintf("%s (%d)", col.Label, col.Count))
		body := r.styles.Muted.Render("No tasks with this priority")
		if col.Count > 0 {
			body = r.TaskCards(col.Tasks)
		}
		rendered = append(rendered, lipgloss.NewStyle().Width(42).MarginRight(1).Render(header+"\n"+body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// GroupedList renders the list view sections
func (r *Renderer) GroupedList(sections []view.GroupSection) string {
	if len(sections) == 0 {
		return r.styles.Muted.Render("No tasks.")
	}
	var sb strings.Builder
	for i, s := range sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		header := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Bold(true).
			Render(fmt.Sprintf("%s (%d)", s.Name, len(s.Tasks)))
		sb.WriteString(header + "\n")
		for _, c := range s.Tasks {
			check := "[ ]"
			if c.Completed {
				check = "[x]"
			}
			sb.WriteString(fmt.Sprintf("  %s %s %s\n", check, c.Title, r.styles.Muted.Render(fmt.Sprintf("%d%% · %s", c.Progress, c.ID))))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// TaskDetail renders a task with its subtasks and notes
func (r *Renderer) TaskDetail(t entities.Task, card view.TaskCard) string {
	var sb strings.Builder
	sb.WriteString(r.TaskCard(entityCard(card, t)) + "\n")

	if len(t.Subtasks) > 0 {
		sb.WriteString(r.styles.Header.Render("Subtasks") + "\n")
		for _, s := range t.Subtasks {
			check := "[ ]"
			if s.Completed {
				check = "[x]"
			}
			sb.WriteString(fmt.Sprintf("  %s %s %s\n", check, s.Text, r.styles.Muted.Render(s.ID)))
		}
	}
	if len(t.Notes) > 0 {
		sb.WriteString(r.styles.Header.Render("Notes") + "\n")
		for _, n := range t.Notes {
			mark := " "
			if n.Important {
				mark = r.styles.Warning.Render("!")
			}
			sb.WriteString(fmt.Sprintf(" %s %s %s\n", mark, n.Text, r.styles.Muted.Render(view.FormatDate(n.CreatedAt)+" · "+n.ID)))
		}
	}
	sb.WriteString(r.styles.Muted.Render(fmt.Sprintf("estimated %dm · spent %dm", t.EstimatedTime, t.ActualTime)))
	return sb.String()
}

// entityCard shows the full description in the detail view
func entityCard(card view.TaskCard, t entities.Task) view.TaskCard {
	card.Description = t.Description
	card.Tags = t.Tags
	card.MoreTags = 0
	return card
}

// Notes renders note cards
func (r *Renderer) Notes(cards []view.NoteCard) string {
	if len(cards) == 0 {
		return r.styles.Muted.Render("No notes.")
	}
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		title := r.styles.Title.Render(c.Title)
		if c.Pinned {
			title = r.styles.Warning.Render("📌 ") + title
		}
		body := title + "  " + r.styles.Muted.Render(c.ID) + "\n" + r.styles.Body.Render(c.Preview)
		if len(c.Tags) > 0 {
			body += "\n" + r.styles.Tag.Render("#"+strings.Join(c.Tags, " #"))
		}
		body += "\n" + r.styles.Muted.Render(c.Updated)
		out = append(out, r.styles.Card.Render(body))
	}
	return strings.Join(out, "\n")
}

// Groups renders the groups with their open task counts
func (r *Renderer) Groups(groups []entities.Group, counts map[string]int) string {
	var sb strings.Builder
	for _, g := range groups {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(g.Color)).Render("■")
		sb.WriteString(fmt.Sprintf("%s %s %s\n", dot, r.styles.Title.Render(g.Name),
			r.styles.Muted.Render(fmt.Sprintf("%d open · %s", counts[g.ID], g.ID))))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Dashboard renders the start page
func (r *Renderer) Dashboard(d view.Dashboard) string {
	var sb strings.Builder
	sb.WriteString(r.styles.Header.Render("Today") + "\n")
	sb.WriteString(fmt.Sprintf("  completed tasks %d · focus %s · notes %d\n",
		d.Today.CompletedTasks, view.FormatMinutes(d.Today.FocusTime), d.Today.CreatedNotes))
	sb.WriteString(r.styles.Header.Render("All time") + "\n")
	sb.WriteString(fmt.Sprintf("  completed tasks %d · focus %s · notes %d · open tasks %d\n",
		d.CompletedTasks, d.TotalFocusTime, d.CreatedNotes, d.OpenTasks))
	sb.WriteString(r.styles.Header.Render("Recent tasks") + "\n")
	if len(d.Recent) == 0 {
		sb.WriteString(r.styles.Muted.Render("No current tasks."))
	} else {
		sb.WriteString(r.TaskCards(d.Recent))
	}
	return sb.String()
}

// Archive renders archived items
func (r *Renderer) Archive(items []view.ArchiveItem) string {
	if len(items) == 0 {
		return r.styles.Muted.Render("The archive is empty.")
	}
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("%-4s %s %s\n", item.Kind, r.styles.Title.Render(item.Title),
			r.styles.Muted.Render("archived "+item.Archived+" · "+item.ID)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Search renders search results grouped by kind
func (r *Renderer) Search(res *ports.SearchResults) string {
	if res.Total() == 0 {
		return r.styles.Muted.Render(fmt.Sprintf("Nothing found for %q.", res.Term))
	}
	var sb strings.Builder
	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		sb.WriteString(r.styles.Header.Render(fmt.Sprintf("%s (%d)", title, len(lines))) + "\n")
		for _, l := range lines {
			sb.WriteString("  " + l + "\n")
		}
	}

	var lines []string
	for _, t := range res.Tasks {
		lines = append(lines, t.Title+" "+r.styles.Muted.Render(t.ID))
	}
	section("Tasks", lines)
	lines = nil
	for _, n := range res.Notes {
		lines = append(lines, n.Title+" "+r.styles.Muted.Render(n.ID))
	}
	section("Notes", lines)
	lines = nil
	for _, t := range res.ArchivedTasks {
		lines = append(lines, t.Title+" "+r.styles.Muted.Render(t.ID))
	}
	for _, n := range res.ArchivedNotes {
		lines = append(lines, n.Title+" "+r.styles.Muted.Render(n.ID))
	}
	section("Archive", lines)

	return strings.TrimRight(sb.String(), "\n")
}

// Focus renders the focus screen
func (r *Renderer) Focus(v view.FocusView) string {
	var sb strings.Builder
	if v.TaskTitle != "" {
		sb.WriteString(r.styles.Title.Render(v.TaskTitle) + "\n")
	}
	sb.WriteString(r.styles.Timer.Render(v.Remaining) + "\n")
	sb.WriteString(ProgressBar(v.Progress, progressWidth*2) + "\n")

	switch v.State {
	case entities.FocusPaused:
		sb.WriteString(r.styles.Warning.Render("paused"))
	case entities.FocusRunning:
		sb.WriteString(r.styles.Success.Render("focusing"))
	default:
		sb.WriteString(r.styles.Muted.Render("no active session"))
	}
	for _, n := range v.Notes {
		sb.WriteString("\n" + r.styles.Muted.Render(n.Timestamp.Local().Format("15:04")) + " " + n.Text)
	}
	return sb.String()
}

// Settings renders the preferences
func (r *Renderer) Settings(s entities.Settings) string {
	rows := [][2]string{
		{"focus timer", fmt.Sprintf("%d min", s.FocusTimer)},
		{"short break", fmt.Sprintf("%d min", s.BreakDuration)},
		{"long break", fmt.Sprintf("%d min", s.LongBreakDuration)},
		{"theme", s.Theme},
		{"view mode", s.ViewMode},
		{"notifications", fmt.Sprint(s.Notifications)},
		{"auto archive", fmt.Sprint(s.AutoArchive)},
		{"auto save", fmt.Sprintf("%v (%d ms)", s.AutoSave, s.AutoSaveInterval)},
	}
	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%-14s %s\n", row[0], r.styles.Title.Render(row[1])))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ProgressBar draws percent as a bar of width cells
func ProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %3d%%", percent)
}
