package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/lms-batch-api/internal/dto"
	"github.com/noah-isme/lms-batch-api/internal/models"
	appErrors "github.com/noah-isme/lms-batch-api/pkg/errors"
	"github.com/noah-isme/lms-batch-api/pkg/response"
)

type batchDashboard interface {
	Load(ctx context.Context, batchID string, refresh bool) (*dto.BatchDashboardResponse, error)
	Get(ctx context.Context, batchID string) (*dto.BatchDashboardResponse, error)
	Transition(ctx context.Context, batchID string, target models.BatchStatus, userID *string) (*models.Batch, error)
	Evict(ctx context.Context, batchID string)
}

// TransitionRequest is the payload for a batch status transition.
type TransitionRequest struct {
	TargetStatus string `json:"target_status" validate:"required"`
}

// BatchHandler wires the batch dashboard to HTTP endpoints.
type BatchHandler struct {
	service  batchDashboard
	validate *validator.Validate
}

// NewBatchHandler constructs the handler.
func NewBatchHandler(service batchDashboard) *BatchHandler {
	return &BatchHandler{service: service, validate: validator.New()}
}

// Dashboard godoc
// @Summary Batch dashboard read model
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/dashboard [get]
func (h *BatchHandler) Dashboard(c *gin.Context) {
	batchID := c.Param("id")
	start := time.Now()
	snapshot, err := h.service.Get(c.Request.Context(), batchID)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrNotFound) {
			snapshot, err = h.service.Load(c.Request.Context(), batchID, false)
		}
		if err != nil {
			response.Error(c, err)
			return
		}
	}
	meta := map[string]interface{}{"processing_time_ms": time.Since(start).Milliseconds()}
	response.JSON(c, http.StatusOK, snapshot, nil, meta)
}

// Refresh godoc
// @Summary Reload the batch snapshot from the upstream
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/refresh [post]
func (h *BatchHandler) Refresh(c *gin.Context) {
	snapshot, err := h.service.Load(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// Transition godoc
// @Summary Transition batch status
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param payload body TransitionRequest true "Transition payload"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/transition [post]
func (h *BatchHandler) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "target_status is required"))
		return
	}
	target := models.BatchStatus(strings.ToUpper(strings.TrimSpace(req.TargetStatus)))
	batch, err := h.service.Transition(c.Request.Context(), c.Param("id"), target, userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Evict godoc
// @Summary Drop the cached batch snapshot
// @Tags Batches
// @Param id path string true "Batch ID"
// @Success 204
// @Router /batches/{id}/dashboard [delete]
func (h *BatchHandler) Evict(c *gin.Context) {
	h.service.Evict(c.Request.Context(), c.Param("id"))
	response.NoContent(c)
}
