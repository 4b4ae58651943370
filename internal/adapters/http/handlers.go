package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fokusplaner/core/internal/application/services"
	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/ports"
)

// HeaderConfirm carries the answer to confirmation prompts
const HeaderConfirm = "X-Confirm"

// Confirmation answers every prompt of a request with the value of the
// confirm query parameter or the X-Confirm header. Without either the
// answer is no.
func Confirmation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			answer := c.QueryParam("confirm")
			if answer == "" {
				answer = c.Request().Header.Get(HeaderConfirm)
			}
			yes, _ := strconv.ParseBool(answer)

			req := c.Request()
			ctx := ports.WithConfirmer(req.Context(), ports.StaticConfirmer(yes))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// toHTTPError maps service errors onto status codes
func toHTTPError(err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, entities.ErrTaskNotFound),
		errors.Is(err, entities.ErrNoteNotFound),
		errors.Is(err, entities.ErrGroupNotFound),
		errors.Is(err, entities.ErrSubtaskNotFound),
		errors.Is(err, entities.ErrTaskNoteNotFound),
		errors.Is(err, entities.ErrArchivedNotFound):
		code = http.StatusNotFound
	case errors.Is(err, entities.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, entities.ErrDefaultGroup),
		errors.Is(err, entities.ErrNotConfirmed),
		errors.Is(err, entities.ErrSessionActive),
		errors.Is(err, entities.ErrNoActiveSession),
		errors.Is(err, entities.ErrSessionPaused),
		errors.Is(err, entities.ErrSessionNotPaused),
		errors.Is(err, services.ErrBackupDisabled):
		code = http.StatusConflict
	}

	he := echo.NewHTTPError(code, err.Error())
	if code == http.StatusInternalServerError {
		he.Message = http.StatusText(code)
		he.Internal = err
	}
	return he
}

func bindError(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format").SetInternal(err)
}

// queryBool parses an optional boolean query parameter
func queryBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name+" parameter")
	}
	return &v, nil
}

// queryInt parses an optional positive integer query parameter
func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name+" parameter")
	}
	return v, nil
}

// Request/Response types
type TextRequest struct {
	Text string `json:"text" validate:"required"`
}

type ConvertNoteRequest struct {
	GroupID string `json:"groupId"`
}

type StartFocusRequest struct {
	TaskID string `json:"taskId" validate:"required"`
}

type StartBreakRequest struct {
	Kind ports.BreakKind `json:"kind" validate:"required,oneof=short long"`
}

type BreakResponse struct {
	Kind    ports.BreakKind `json:"kind"`
	Minutes int             `json:"minutes"`
}

type BackupResponse struct {
	Path string `json:"path"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
