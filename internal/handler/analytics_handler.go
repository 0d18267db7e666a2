package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-batch-api/internal/dto"
	"github.com/noah-isme/lms-batch-api/internal/models"
	"github.com/noah-isme/lms-batch-api/pkg/response"
)

type analyticsReader interface {
	Aggregates(ctx context.Context, batchID string) (*models.AggregateSnapshot, bool, error)
	Workload(ctx context.Context) *dto.WorkloadResponse
}

// AnalyticsHandler serves derived enrollment analytics.
type AnalyticsHandler struct {
	service analyticsReader
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(service analyticsReader) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Aggregates godoc
// @Summary Aggregate snapshot for a batch
// @Tags Analytics
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/analytics [get]
func (h *AnalyticsHandler) Aggregates(c *gin.Context) {
	start := time.Now()
	snapshot, cacheHit, err := h.service.Aggregates(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{
		"cache_hit":          cacheHit,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}
	response.JSON(c, http.StatusOK, snapshot, nil, meta)
}

// Workload godoc
// @Summary Instructor workload across loaded batches
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/instructor-workload [get]
func (h *AnalyticsHandler) Workload(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Workload(c.Request.Context()), nil)
}
