package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-batch-api/internal/dto"
	"github.com/noah-isme/lms-batch-api/internal/service"
	"github.com/noah-isme/lms-batch-api/pkg/response"
)

type snapshotReader interface {
	Get(ctx context.Context, batchID string) (*dto.BatchDashboardResponse, error)
	Load(ctx context.Context, batchID string, refresh bool) (*dto.BatchDashboardResponse, error)
}

type rosterExporter interface {
	Roster(snapshot *dto.BatchDashboardResponse, format string) (*service.ExportResult, error)
}

// ExportHandler serves roster downloads.
type ExportHandler struct {
	dashboards snapshotReader
	exports    rosterExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(dashboards snapshotReader, exports rosterExporter) *ExportHandler {
	return &ExportHandler{dashboards: dashboards, exports: exports}
}

// Roster godoc
// @Summary Export the batch roster
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param id path string true "Batch ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /batches/{id}/export [get]
func (h *ExportHandler) Roster(c *gin.Context) {
	batchID := c.Param("id")
	snapshot, err := h.dashboards.Get(c.Request.Context(), batchID)
	if err != nil {
		snapshot, err = h.dashboards.Load(c.Request.Context(), batchID, false)
		if err != nil {
			response.Error(c, err)
			return
		}
	}
	result, err := h.exports.Roster(snapshot, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
