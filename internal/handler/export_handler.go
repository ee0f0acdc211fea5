package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/javajolt/kava/kava-backend/internal/service"
)

// ExportHandler handles statistics export requests
type ExportHandler struct {
	exporter *service.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exporter *service.ExportService) *ExportHandler {
	return &ExportHandler{
		exporter: exporter,
	}
}

// Export godoc
// @Summary Export statistics
// @Description Download the leaderboard as a CSV file
// @Tags tracker
// @Produce text/csv
// @Success 200 {string} string "CSV content"
// @Failure 500 {object} ProblemDetails
// @Router /export [get]
func (h *ExportHandler) Export(c echo.Context) error {
	data, err := h.exporter.CSV()
	if err != nil {
		log.Error().Err(err).Msg("Failed to build CSV export")
		return NewInternalError(c, "Failed to build export")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", h.exporter.Filename()))

	return c.Blob(http.StatusOK, "text/csv", data)
}
