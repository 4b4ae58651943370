package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/ports"
)

// GroupHandler handles group-related requests
type GroupHandler struct {
	groupService ports.GroupService
	logger       *logger.Logger
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService ports.GroupService, logger *logger.Logger) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		logger:       logger,
	}
}

func (h *GroupHandler) CreateGroup(c echo.Context) error {
	var req ports.CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	group, err := h.groupService.CreateGroup(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, group)
}

func (h *GroupHandler) GetGroup(c echo.Context) error {
	group, err := h.groupService.GetGroup(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) ListGroups(c echo.Context) error {
	groups, err := h.groupService.ListGroups(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, groups)
}

func (h *GroupHandler) UpdateGroup(c echo.Context) error {
	var req ports.UpdateGroupRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	group, err := h.groupService.UpdateGroup(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, group)
}

// DeleteGroup handles group deletion. A group that still holds tasks
// needs confirmation; its tasks move to the default group.
func (h *GroupHandler) DeleteGroup(c echo.Context) error {
	if err := h.groupService.DeleteGroup(c.Request().Context(), c.Param("id")); err != nil {
		h.logger.Warnw("Delete group failed", "error", err, "group_id", c.Param("id"))
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *GroupHandler) ReorderGroups(c echo.Context) error {
	var req ports.ReorderGroupsRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	groups, err := h.groupService.ReorderGroups(c.Request().Context(), req.IDs)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, groups)
}

func (h *GroupHandler) ResetOrder(c echo.Context) error {
	groups, err := h.groupService.ResetGroupOrder(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, groups)
}

// TaskCounts returns the open task count of every group
func (h *GroupHandler) TaskCounts(c echo.Context) error {
	counts, err := h.groupService.TaskCounts(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, counts)
}
