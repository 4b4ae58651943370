package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/ports"
)

// FocusHandler handles focus timer requests
type FocusHandler struct {
	focusService ports.FocusService
	logger       *logger.Logger
}

// NewFocusHandler creates a new focus handler
func NewFocusHandler(focusService ports.FocusService, logger *logger.Logger) *FocusHandler {
	return &FocusHandler{
		focusService: focusService,
		logger:       logger,
	}
}

// Start begins a session for a task. Replacing a running session needs
// confirmation.
func (h *FocusHandler) Start(c echo.Context) error {
	var req StartFocusRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.focusService.Start(c.Request().Context(), req.TaskID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *FocusHandler) Current(c echo.Context) error {
	session, err := h.focusService.Current(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, session)
}

func (h *FocusHandler) Pause(c echo.Context) error {
	session, err := h.focusService.Pause(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, session)
}

func (h *FocusHandler) Resume(c echo.Context) error {
	session, err := h.focusService.Resume(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, session)
}

func (h *FocusHandler) Toggle(c echo.Context) error {
	session, err := h.focusService.Toggle(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, session)
}

// Stop ends the session and books the elapsed minutes
func (h *FocusHandler) Stop(c echo.Context) error {
	result, err := h.focusService.Stop(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *FocusHandler) AddNote(c echo.Context) error {
	var req TextRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	note, err := h.focusService.AddNote(c.Request().Context(), req.Text)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, note)
}

func (h *FocusHandler) StartBreak(c echo.Context) error {
	var req StartBreakRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	d, err := h.focusService.StartBreak(c.Request().Context(), req.Kind)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, BreakResponse{Kind: req.Kind, Minutes: int(d.Minutes())})
}
