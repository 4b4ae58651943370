package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/ports"
)

const confirmMoveGroupTasks = "This group still contains tasks. Move all of them to the default group and delete the group?"

// GroupService handles task groups
type GroupService struct {
	store  *Store
	logger *logger.Logger
}

// NewGroupService creates a new group service
func NewGroupService(store *Store, logger *logger.Logger) *GroupService {
	return &GroupService{
		store:  store,
		logger: logger.WithComponent("groups"),
	}
}

var _ ports.GroupService = (*GroupService)(nil)

// CreateGroup creates a new group
func (s *GroupService) CreateGroup(ctx context.Context, req ports.CreateGroupRequest) (*entities.Group, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	color := req.Color
	if color == "" {
		color = entities.DefaultGroupColor
	}

	var created entities.Group
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		created = entities.Group{
			ID:        s.store.newID(),
			Name:      req.Name,
			Color:     color,
			CreatedAt: now,
		}
		st.Groups = append(st.Groups, created)
		return []ports.Collection{ports.CollectionGroups}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogAction("group_created", map[string]interface{}{"group_id": created.ID, "name": created.Name})
	return &created, nil
}

// GetGroup retrieves a group by ID
func (s *GroupService) GetGroup(ctx context.Context, id string) (*entities.Group, error) {
	var (
		group entities.Group
		found bool
	)
	s.store.view(func(st *state) {
		if i := st.findGroup(id); i != -1 {
			group, found = st.Groups[i], true
		}
	})
	if !found {
		return nil, groupNotFound(id)
	}
	return &group, nil
}

// ListGroups returns the groups in display order
func (s *GroupService) ListGroups(ctx context.Context) ([]entities.Group, error) {
	var groups []entities.Group
	s.store.view(func(st *state) {
		groups = append([]entities.Group{}, st.Groups...)
	})
	sortGroups(groups)
	return groups, nil
}

// sortGroups orders by the explicit order; unordered groups keep their
// stored position after the ordered ones.
func sortGroups(groups []entities.Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Order, groups[j].Order
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		default:
			return false
		}
	})
}

// UpdateGroup merges the set fields into the group
func (s *GroupService) UpdateGroup(ctx context.Context, id string, req ports.UpdateGroupRequest) (*entities.Group, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var updated entities.Group
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		i := st.findGroup(id)
		if i == -1 {
			return nil, groupNotFound(id)
		}
		g := &st.Groups[i]
		if req.Name != nil {
			g.Name = *req.Name
		}
		if req.Color != nil {
			g.Color = *req.Color
		}
		updated = *g
		return []ports.Collection{ports.CollectionGroups}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteGroup removes a group. The default group is never removed. Tasks
// still in the group are moved to the default group once confirmed.
func (s *GroupService) DeleteGroup(ctx context.Context, id string) error {
	if id == entities.DefaultGroupID {
		return entities.ErrDefaultGroup
	}

	var taskCount int
	found := false
	s.store.view(func(st *state) {
		found = st.findGroup(id) != -1
		for _, t := range st.Tasks {
			if t.GroupID == id {
				taskCount++
			}
		}
	})
	if !found {
		return groupNotFound(id)
	}
	confirmed := taskCount > 0 && ports.Confirm(ctx, confirmMoveGroupTasks)
	if taskCount > 0 && !confirmed {
		return entities.ErrNotConfirmed
	}

	moved := 0
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		var err error
		moved, err = removeGroup(st, id, confirmed, now)
		if err != nil {
			return nil, err
		}
		if moved > 0 {
			return []ports.Collection{ports.CollectionTasks, ports.CollectionGroups}, nil
		}
		return []ports.Collection{ports.CollectionGroups}, nil
	})
	if err != nil {
		return err
	}

	s.logger.LogAction("group_deleted", map[string]interface{}{"group_id": id, "moved_tasks": moved})
	return nil
}

// removeGroup moves the tasks of group id to the default group and removes
// it. Tasks found without confirmation, e.g. added after the count was
// taken, abort with ErrNotConfirmed and leave st untouched.
func removeGroup(st *state, id string, confirmed bool, now time.Time) (int, error) {
	i := st.findGroup(id)
	if i == -1 {
		return 0, groupNotFound(id)
	}
	if !confirmed {
		for _, t := range st.Tasks {
			if t.GroupID == id {
				return 0, entities.ErrNotConfirmed
			}
		}
	}

	moved := 0
	for j := range st.Tasks {
		if st.Tasks[j].GroupID == id {
			st.Tasks[j].GroupID = entities.DefaultGroupID
			st.Tasks[j].UpdatedAt = now
			moved++
		}
	}
	st.Groups = append(st.Groups[:i], st.Groups[i+1:]...)
	return moved, nil
}

// ReorderGroups applies the given order. Groups missing from ids follow
// in their current order.
func (s *GroupService) ReorderGroups(ctx context.Context, ids []string) ([]entities.Group, error) {
	if err := validateRequest(ports.ReorderGroupsRequest{IDs: ids}); err != nil {
		return nil, err
	}

	var groups []entities.Group
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		current := append([]entities.Group{}, st.Groups...)
		sortGroups(current)

		ordered := make([]entities.Group, 0, len(current))
		placed := make(map[string]bool, len(ids))
		for _, id := range ids {
			if placed[id] {
				continue
			}
			i := st.findGroup(id)
			if i == -1 {
				return nil, groupNotFound(id)
			}
			ordered = append(ordered, st.Groups[i])
			placed[id] = true
		}
		for _, g := range current {
			if !placed[g.ID] {
				ordered = append(ordered, g)
			}
		}

		assignOrder(ordered)
		st.Groups = ordered
		groups = append([]entities.Group{}, ordered...)
		return []ports.Collection{ports.CollectionGroups}, nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// ResetGroupOrder puts the default group first and the rest by name
func (s *GroupService) ResetGroupOrder(ctx context.Context) ([]entities.Group, error) {
	var groups []entities.Group
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		ordered := append([]entities.Group{}, st.Groups...)
		sort.SliceStable(ordered, func(i, j int) bool {
			if ordered[i].ID == entities.DefaultGroupID || ordered[j].ID == entities.DefaultGroupID {
				return ordered[i].ID == entities.DefaultGroupID
			}
			return strings.ToLower(ordered[i].Name) < strings.ToLower(ordered[j].Name)
		})

		assignOrder(ordered)
		st.Groups = ordered
		groups = append([]entities.Group{}, ordered...)
		return []ports.Collection{ports.CollectionGroups}, nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func assignOrder(groups []entities.Group) {
	for i := range groups {
		order := i
		groups[i].Order = &order
	}
}

// TaskCounts returns the number of open tasks per group id. Every group
// is present, with zero when empty.
func (s *GroupService) TaskCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	s.store.view(func(st *state) {
		for _, g := range st.Groups {
			counts[g.ID] = 0
		}
		for _, t := range st.Tasks {
			if !t.Completed {
				counts[t.GroupID]++
			}
		}
	})
	return counts, nil
}
