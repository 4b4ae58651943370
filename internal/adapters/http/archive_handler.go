package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/ports"
)

// ArchiveHandler handles archive requests
type ArchiveHandler struct {
	archiveService ports.ArchiveService
	logger         *logger.Logger
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(archiveService ports.ArchiveService, logger *logger.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		archiveService: archiveService,
		logger:         logger,
	}
}

func (h *ArchiveHandler) GetArchive(c echo.Context) error {
	archive, err := h.archiveService.GetArchive(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, archive)
}

// RestoreItem moves an archived task or note back to its active list
func (h *ArchiveHandler) RestoreItem(c echo.Context) error {
	kind := ports.ArchiveKind(c.Param("kind"))
	if err := h.archiveService.RestoreItem(c.Request().Context(), kind, c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteItem removes an archived item for good. It needs confirmation.
func (h *ArchiveHandler) DeleteItem(c echo.Context) error {
	kind := ports.ArchiveKind(c.Param("kind"))
	if err := h.archiveService.DeleteItem(c.Request().Context(), kind, c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearArchive empties the archive. It needs confirmation.
func (h *ArchiveHandler) ClearArchive(c echo.Context) error {
	if err := h.archiveService.ClearArchive(c.Request().Context()); err != nil {
		h.logger.Warnw("Clear archive failed", "error", err)
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
