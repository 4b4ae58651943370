package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/ports"
)

// NoteHandler handles note-related requests
type NoteHandler struct {
	noteService ports.NoteService
	logger      *logger.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService ports.NoteService, logger *logger.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		logger:      logger,
	}
}

func (h *NoteHandler) CreateNote(c echo.Context) error {
	var req ports.CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	note, err := h.noteService.CreateNote(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("Create note failed", "error", err)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, note)
}

func (h *NoteHandler) GetNote(c echo.Context) error {
	note, err := h.noteService.GetNote(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, note)
}

// ListNotes handles listing notes, pinned first
func (h *NoteHandler) ListNotes(c echo.Context) error {
	pinned, err := queryBool(c, "pinned")
	if err != nil {
		return err
	}

	notes, err := h.noteService.ListNotes(c.Request().Context(), ports.NoteFilter{
		Search: c.QueryParam("search"),
		Tag:    c.QueryParam("tag"),
		Pinned: pinned,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, notes)
}

func (h *NoteHandler) UpdateNote(c echo.Context) error {
	var req ports.UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	note, err := h.noteService.UpdateNote(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, note)
}

// DeleteNote handles note deletion. It needs confirmation.
func (h *NoteHandler) DeleteNote(c echo.Context) error {
	if err := h.noteService.DeleteNote(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NoteHandler) TogglePin(c echo.Context) error {
	note, err := h.noteService.TogglePin(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) ArchiveNote(c echo.Context) error {
	if err := h.noteService.ArchiveNote(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ConvertToTask turns the note into a task and archives the note
func (h *NoteHandler) ConvertToTask(c echo.Context) error {
	var req ConvertNoteRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	task, err := h.noteService.ConvertToTask(c.Request().Context(), c.Param("id"), req.GroupID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, task)
}
