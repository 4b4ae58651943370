package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/infrastructure/metrics"
	"github.com/fokusplaner/core/internal/ports"
)

const (
	confirmDeleteTask = "Are you sure you want to delete this task?"
	duplicateSuffix   = " (copy)"
)

// TaskOptions tune the task lifecycle
type TaskOptions struct {
	// ArchiveCompletedAfter moves completed tasks to the archive after the
	// delay. Zero disables automatic archiving.
	ArchiveCompletedAfter time.Duration
	RecentLimit           int
}

// TaskService handles task-related operations
type TaskService struct {
	store   *Store
	logger  *logger.Logger
	metrics *metrics.Metrics
	opts    TaskOptions

	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

// NewTaskService creates a new task service
func NewTaskService(store *Store, logger *logger.Logger, m *metrics.Metrics, opts TaskOptions) *TaskService {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 6
	}
	return &TaskService{
		store:   store,
		logger:  logger.WithComponent("tasks"),
		metrics: m,
		opts:    opts,
		timers:  make(map[string]*time.Timer),
	}
}

var _ ports.TaskService = (*TaskService)(nil)

// CreateTask creates a new task
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Tags = cleanTags(req.Tags)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var (
		created       entities.Task
		autoCompleted bool
	)
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		task, err := s.newTask(st, req, now)
		if err != nil {
			return nil, err
		}
		changed := []ports.Collection{ports.CollectionTasks}
		if task.RecomputeProgress(now) {
			autoCompleted = true
			s.recordCompletion(st, now)
			changed = append(changed, ports.CollectionStats)
		}
		st.Tasks = append(st.Tasks, task)
		created = task.Clone()
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	if autoCompleted {
		s.scheduleArchive(created.ID)
	}

	s.logger.LogAction("task_created", map[string]interface{}{"task_id": created.ID, "title": created.Title})

	return &created, nil
}

func (s *TaskService) newTask(st *state, req ports.CreateTaskRequest, now time.Time) (entities.Task, error) {
	groupID := req.GroupID
	if groupID == "" {
		groupID = entities.DefaultGroupID
	}
	if st.findGroup(groupID) == -1 {
		return entities.Task{}, groupNotFound(groupID)
	}

	priority := req.Priority
	if priority == "" {
		priority = entities.PriorityMedium
	}

	subtasks := make([]entities.Subtask, 0, len(req.Subtasks))
	for _, sub := range req.Subtasks {
		text := strings.TrimSpace(sub.Text)
		if text == "" {
			continue
		}
		createdAt := sub.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		subtasks = append(subtasks, entities.Subtask{
			ID:          s.store.newID(),
			Text:        text,
			Completed:   sub.Completed,
			CreatedAt:   createdAt,
			CompletedAt: sub.CompletedAt,
		})
	}

	task := entities.Task{
		ID:            s.store.newID(),
		Title:         req.Title,
		Description:   req.Description,
		GroupID:       groupID,
		Priority:      priority,
		Tags:          append([]string{}, req.Tags...),
		Subtasks:      subtasks,
		Notes:         []entities.TaskNote{},
		CreatedAt:     now,
		UpdatedAt:     now,
		DueDate:       req.DueDate,
		EstimatedTime: req.EstimatedTime,
	}
	return task, nil
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id string) (*entities.Task, error) {
	var (
		task  entities.Task
		found bool
	)
	s.store.view(func(st *state) {
		if i := st.findTask(id); i != -1 {
			task, found = st.Tasks[i].Clone(), true
		}
	})
	if !found {
		return nil, taskNotFound(id)
	}
	return &task, nil
}

// ListTasks returns the tasks matching every set filter field
func (s *TaskService) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]entities.Task, error) {
	search := strings.TrimSpace(filter.Search)
	tasks := []entities.Task{}

	s.store.view(func(st *state) {
		for i := range st.Tasks {
			t := &st.Tasks[i]
			if filter.GroupID != "" && t.GroupID != filter.GroupID {
				continue
			}
			if filter.Tag != "" && !t.HasTag(filter.Tag) {
				continue
			}
			if filter.Priority != "" && t.Priority != filter.Priority {
				continue
			}
			if filter.Completed != nil && t.Completed != *filter.Completed {
				continue
			}
			if !t.Matches(search) {
				continue
			}
			tasks = append(tasks, t.Clone())
		}
	})

	return tasks, nil
}

// RecentTasks returns open tasks, most recently updated first
func (s *TaskService) RecentTasks(ctx context.Context, limit int) ([]entities.Task, error) {
	if limit <= 0 {
		limit = s.opts.RecentLimit
	}
	open := false
	tasks, err := s.ListTasks(ctx, ports.TaskFilter{Completed: &open})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].UpdatedAt.After(tasks[j].UpdatedAt)
	})
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

// UpdateTask merges the set fields into the task
func (s *TaskService) UpdateTask(ctx context.Context, id string, req ports.UpdateTaskRequest) (*entities.Task, error) {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	if req.Tags != nil {
		tags := cleanTags(*req.Tags)
		req.Tags = &tags
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	return s.mutateTask(ctx, id, func(st *state, t *entities.Task, now time.Time) error {
		if req.GroupID != nil {
			if st.findGroup(*req.GroupID) == -1 {
				return groupNotFound(*req.GroupID)
			}
			t.GroupID = *req.GroupID
		}
		if req.Title != nil {
			t.Title = *req.Title
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Priority != nil {
			t.Priority = *req.Priority
		}
		if req.Tags != nil {
			t.Tags = *req.Tags
		}
		if req.DueDate != nil {
			due := *req.DueDate
			t.DueDate = &due
		}
		if req.EstimatedTime != nil {
			t.EstimatedTime = *req.EstimatedTime
		}
		if req.ActualTime != nil {
			t.ActualTime = *req.ActualTime
		}
		return nil
	})
}

type taskMutation func(st *state, t *entities.Task, now time.Time) error

// mutateTask applies fn to the task, bumps updatedAt and persists.
// Progress is left alone.
func (s *TaskService) mutateTask(ctx context.Context, id string, fn taskMutation) (*entities.Task, error) {
	return s.applyTask(ctx, id, false, fn)
}

// mutateSubtasks is mutateTask for changes to the subtask list: progress is
// recomputed and reaching 100 completes the task, counted in the statistics.
func (s *TaskService) mutateSubtasks(ctx context.Context, id string, fn taskMutation) (*entities.Task, error) {
	return s.applyTask(ctx, id, true, fn)
}

func (s *TaskService) applyTask(ctx context.Context, id string, recompute bool, fn taskMutation) (*entities.Task, error) {
	var (
		updated       entities.Task
		autoCompleted bool
	)
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		i := st.findTask(id)
		if i == -1 {
			return nil, taskNotFound(id)
		}
		t := st.Tasks[i].Clone()
		if err := fn(st, &t, now); err != nil {
			return nil, err
		}
		t.UpdatedAt = now
		t.Normalize()

		changed := []ports.Collection{ports.CollectionTasks}
		if recompute && t.RecomputeProgress(now) {
			autoCompleted = true
			s.recordCompletion(st, now)
			changed = append(changed, ports.CollectionStats)
		}
		st.Tasks[i] = t
		updated = t.Clone()
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	if autoCompleted {
		s.logger.LogAction("task_completed", map[string]interface{}{"task_id": id, "auto": true})
		s.scheduleArchive(id)
	}
	return &updated, nil
}

// CompleteTask marks the task as done. The completion is counted once.
func (s *TaskService) CompleteTask(ctx context.Context, id string) (*entities.Task, error) {
	var (
		updated        entities.Task
		newlyCompleted bool
	)
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		i := st.findTask(id)
		if i == -1 {
			return nil, taskNotFound(id)
		}
		t := &st.Tasks[i]
		changed := []ports.Collection{ports.CollectionTasks}
		if !t.Completed {
			newlyCompleted = true
			t.Completed = true
			completedAt := now
			t.CompletedAt = &completedAt
			s.recordCompletion(st, now)
			changed = append(changed, ports.CollectionStats)
		}
		t.Progress = 100
		t.UpdatedAt = now
		updated = t.Clone()
		return changed, nil
	})
	if err != nil {
		return nil, err
	}

	if newlyCompleted {
		s.logger.LogAction("task_completed", map[string]interface{}{"task_id": id, "auto": false})
		s.scheduleArchive(id)
	}
	return &updated, nil
}

// UncompleteTask reopens a completed task
func (s *TaskService) UncompleteTask(ctx context.Context, id string) (*entities.Task, error) {
	s.cancelArchive(id)

	var updated entities.Task
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		i := st.findTask(id)
		if i == -1 {
			return nil, taskNotFound(id)
		}
		t := &st.Tasks[i]
		t.Completed = false
		t.CompletedAt = nil
		t.Progress = t.SubtaskProgress()
		t.UpdatedAt = now
		updated = t.Clone()
		return []ports.Collection{ports.CollectionTasks}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask permanently removes a task after confirmation
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.GetTask(ctx, id); err != nil {
		return err
	}
	if !ports.Confirm(ctx, confirmDeleteTask) {
		return entities.ErrNotConfirmed
	}

	s.cancelArchive(id)
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		i := st.findTask(id)
		if i == -1 {
			return nil, taskNotFound(id)
		}
		st.Tasks = append(st.Tasks[:i], st.Tasks[i+1:]...)
		return []ports.Collection{ports.CollectionTasks}, nil
	})
	if err != nil {
		return err
	}

	s.logger.LogAction("task_deleted", map[string]interface{}{"task_id": id})
	return nil
}

// ArchiveTask moves the task into the archive
func (s *TaskService) ArchiveTask(ctx context.Context, id string) error {
	s.cancelArchive(id)
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		i := st.findTask(id)
		if i == -1 {
			return nil, taskNotFound(id)
		}
		archiveTaskAt(st, i, now)
		return []ports.Collection{ports.CollectionTasks, ports.CollectionArchive}, nil
	})
	if err != nil {
		return err
	}
	s.logger.LogAction("task_archived", map[string]interface{}{"task_id": id})
	return nil
}

func archiveTaskAt(st *state, i int, now time.Time) {
	st.Archive.Tasks = append(st.Archive.Tasks, entities.ArchivedTask{Task: st.Tasks[i], ArchivedAt: now})
	st.Tasks = append(st.Tasks[:i], st.Tasks[i+1:]...)
}

// RestoreTask moves an archived task back as an open task
func (s *TaskService) RestoreTask(ctx context.Context, id string) (*entities.Task, error) {
	var restored entities.Task
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		i := -1
		for j := range st.Archive.Tasks {
			if st.Archive.Tasks[j].ID == id {
				i = j
				break
			}
		}
		if i == -1 {
			return nil, fmt.Errorf("%w: task %s", entities.ErrArchivedNotFound, id)
		}

		t := st.Archive.Tasks[i].Task
		t.Completed = false
		t.CompletedAt = nil
		t.Progress = t.SubtaskProgress()
		t.UpdatedAt = now
		if st.findGroup(t.GroupID) == -1 {
			t.GroupID = entities.DefaultGroupID
		}
		t.Normalize()

		st.Tasks = append(st.Tasks, t)
		st.Archive.Tasks = append(st.Archive.Tasks[:i], st.Archive.Tasks[i+1:]...)
		restored = t.Clone()
		return []ports.Collection{ports.CollectionTasks, ports.CollectionArchive}, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.LogAction("task_restored", map[string]interface{}{"task_id": id})
	return &restored, nil
}

// DuplicateTask creates a copy with fresh, unchecked subtasks
func (s *TaskService) DuplicateTask(ctx context.Context, id string) (*entities.Task, error) {
	original, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	subtasks := make([]entities.Subtask, 0, len(original.Subtasks))
	for _, sub := range original.Subtasks {
		subtasks = append(subtasks, entities.Subtask{Text: sub.Text})
	}

	return s.CreateTask(ctx, ports.CreateTaskRequest{
		Title:         original.Title + duplicateSuffix,
		Description:   original.Description,
		GroupID:       original.GroupID,
		Priority:      original.Priority,
		Tags:          original.Tags,
		Subtasks:      subtasks,
		DueDate:       original.DueDate,
		EstimatedTime: original.EstimatedTime,
	})
}

// Subtasks

func (s *TaskService) AddSubtask(ctx context.Context, taskID, text string) (*entities.Subtask, error) {
	text, err := requireText("subtask text", text)
	if err != nil {
		return nil, err
	}

	var added entities.Subtask
	_, err = s.mutateSubtasks(ctx, taskID, func(_ *state, t *entities.Task, now time.Time) error {
		added = entities.Subtask{
			ID:        s.store.newID(),
			Text:      text,
			CreatedAt: now,
		}
		t.Subtasks = append(t.Subtasks, added)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

func (s *TaskService) UpdateSubtaskText(ctx context.Context, taskID, subtaskID, text string) (*entities.Task, error) {
	text, err := requireText("subtask text", text)
	if err != nil {
		return nil, err
	}
	return s.mutateTask(ctx, taskID, func(_ *state, t *entities.Task, _ time.Time) error {
		i := t.FindSubtask(subtaskID)
		if i == -1 {
			return subtaskNotFound(subtaskID)
		}
		t.Subtasks[i].Text = text
		return nil
	})
}

func (s *TaskService) ToggleSubtask(ctx context.Context, taskID, subtaskID string) (*entities.Task, error) {
	return s.mutateSubtasks(ctx, taskID, func(_ *state, t *entities.Task, now time.Time) error {
		i := t.FindSubtask(subtaskID)
		if i == -1 {
			return subtaskNotFound(subtaskID)
		}
		sub := &t.Subtasks[i]
		sub.Completed = !sub.Completed
		if sub.Completed {
			completedAt := now
			sub.CompletedAt = &completedAt
		} else {
			sub.CompletedAt = nil
		}
		return nil
	})
}

func (s *TaskService) DeleteSubtask(ctx context.Context, taskID, subtaskID string) (*entities.Task, error) {
	return s.mutateSubtasks(ctx, taskID, func(_ *state, t *entities.Task, _ time.Time) error {
		i := t.FindSubtask(subtaskID)
		if i == -1 {
			return subtaskNotFound(subtaskID)
		}
		t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
		return nil
	})
}

// Task notes, newest first

func (s *TaskService) AddTaskNote(ctx context.Context, taskID, text string) (*entities.TaskNote, error) {
	text, err := requireText("note text", text)
	if err != nil {
		return nil, err
	}

	var added entities.TaskNote
	_, err = s.mutateTask(ctx, taskID, func(_ *state, t *entities.Task, now time.Time) error {
		added = entities.TaskNote{
			ID:        s.store.newID(),
			Text:      text,
			CreatedAt: now,
		}
		t.Notes = append([]entities.TaskNote{added}, t.Notes...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

func (s *TaskService) UpdateTaskNote(ctx context.Context, taskID, noteID, text string) (*entities.Task, error) {
	text, err := requireText("note text", text)
	if err != nil {
		return nil, err
	}
	return s.mutateTask(ctx, taskID, func(_ *state, t *entities.Task, now time.Time) error {
		i := t.FindNote(noteID)
		if i == -1 {
			return taskNoteNotFound(noteID)
		}
		updatedAt := now
		t.Notes[i].Text = text
		t.Notes[i].UpdatedAt = &updatedAt
		return nil
	})
}

func (s *TaskService) ToggleTaskNoteImportant(ctx context.Context, taskID, noteID string) (*entities.Task, error) {
	return s.mutateTask(ctx, taskID, func(_ *state, t *entities.Task, _ time.Time) error {
		i := t.FindNote(noteID)
		if i == -1 {
			return taskNoteNotFound(noteID)
		}
		t.Notes[i].Important = !t.Notes[i].Important
		return nil
	})
}

func (s *TaskService) DeleteTaskNote(ctx context.Context, taskID, noteID string) (*entities.Task, error) {
	return s.mutateTask(ctx, taskID, func(_ *state, t *entities.Task, _ time.Time) error {
		i := t.FindNote(noteID)
		if i == -1 {
			return taskNoteNotFound(noteID)
		}
		t.Notes = append(t.Notes[:i], t.Notes[i+1:]...)
		return nil
	})
}

// addActualTime adds focus minutes to the task. A missing task is not an
// error: the session may outlive it.
func addActualTime(st *state, taskID string, minutes int, now time.Time) bool {
	i := st.findTask(taskID)
	if i == -1 {
		return false
	}
	st.Tasks[i].ActualTime += minutes
	st.Tasks[i].UpdatedAt = now
	return true
}

func (s *TaskService) recordCompletion(st *state, now time.Time) {
	st.Stats.Record(entities.StatCompletedTask, 1, now)
	s.metrics.TaskCompleted()
}

// Delayed archiving of completed tasks

func (s *TaskService) scheduleArchive(id string) {
	if s.opts.ArchiveCompletedAfter <= 0 {
		return
	}

	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if existing, ok := s.timers[id]; ok {
		existing.Stop()
	}
	s.timers[id] = time.AfterFunc(s.opts.ArchiveCompletedAfter, func() {
		s.timersMu.Lock()
		delete(s.timers, id)
		s.timersMu.Unlock()
		s.archiveIfCompleted(id)
	})
}

func (s *TaskService) cancelArchive(id string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
}

// archiveIfCompleted archives the task unless it was reopened or removed
// in the meantime
func (s *TaskService) archiveIfCompleted(id string) {
	archived := false
	err := s.store.update(context.Background(), func(st *state, now time.Time) ([]ports.Collection, error) {
		i := st.findTask(id)
		if i == -1 || !st.Tasks[i].Completed {
			return nil, nil
		}
		archiveTaskAt(st, i, now)
		archived = true
		return []ports.Collection{ports.CollectionTasks, ports.CollectionArchive}, nil
	})
	if err != nil {
		s.logger.Errorw("Failed to archive completed task", "task_id", id, "error", err)
		return
	}
	if archived {
		s.logger.Infow("Completed task archived", "task_id", id)
	}
}

// PendingArchives counts scheduled automatic archivings
func (s *TaskService) PendingArchives() int {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	return len(s.timers)
}

// Close stops all pending archive timers
func (s *TaskService) Close() {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

func taskNotFound(id string) error {
	return fmt.Errorf("%w: %s", entities.ErrTaskNotFound, id)
}

func subtaskNotFound(id string) error {
	return fmt.Errorf("%w: %s", entities.ErrSubtaskNotFound, id)
}

func taskNoteNotFound(id string) error {
	return fmt.Errorf("%w: %s", entities.ErrTaskNoteNotFound, id)
}

func groupNotFound(id string) error {
	return fmt.Errorf("%w: %s", entities.ErrGroupNotFound, id)
}
