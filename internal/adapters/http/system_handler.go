package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fokusplaner/core/internal/application/services"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/ports"
)

// SystemHandler handles statistics, settings, search and backups
type SystemHandler struct {
	statsService    ports.StatsService
	settingsService ports.SettingsService
	searchService   ports.SearchService
	backupService   ports.BackupService
	logger          *logger.Logger
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(stats ports.StatsService, settings ports.SettingsService, search ports.SearchService, backup ports.BackupService, logger *logger.Logger) *SystemHandler {
	return &SystemHandler{
		statsService:    stats,
		settingsService: settings,
		searchService:   search,
		backupService:   backup,
		logger:          logger,
	}
}

func (h *SystemHandler) GetStats(c echo.Context) error {
	stats, err := h.statsService.GetStats(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *SystemHandler) TodayStats(c echo.Context) error {
	today, err := h.statsService.TodayStats(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, today)
}

func (h *SystemHandler) GetSettings(c echo.Context) error {
	settings, err := h.settingsService.GetSettings(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *SystemHandler) UpdateSettings(c echo.Context) error {
	var req ports.UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	settings, err := h.settingsService.UpdateSettings(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, settings)
}

// Search handles the global search over the q parameter
func (h *SystemHandler) Search(c echo.Context) error {
	results, err := h.searchService.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, results)
}

// CreateBackup writes a snapshot file into the backup directory
func (h *SystemHandler) CreateBackup(c echo.Context) error {
	path, err := h.backupService.CreateBackup(c.Request().Context())
	if err != nil {
		h.logger.Errorw("Backup failed", "error", err)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, BackupResponse{Path: path})
}

// Export streams the whole snapshot as JSON or YAML
func (h *SystemHandler) Export(c echo.Context) error {
	format := ports.BackupFormat(c.QueryParam("format"))
	if format == "" {
		format = ports.BackupJSON
	}

	contentType := echo.MIMEApplicationJSON
	switch format {
	case ports.BackupJSON:
	case ports.BackupYAML:
		contentType = "application/yaml"
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid format parameter")
	}

	name := strings.TrimSuffix(services.BackupFileName("export", time.Now()), ".json") + "." + string(format)
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, contentType)
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	res.WriteHeader(http.StatusOK)

	if err := h.backupService.Export(c.Request().Context(), res, format); err != nil {
		h.logger.Errorw("Export failed", "error", err, "format", format)
		return err
	}
	return nil
}
