package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-batch-api/internal/models"
	"github.com/noah-isme/lms-batch-api/internal/repository"
	"github.com/noah-isme/lms-batch-api/pkg/response"
)

type auditLister interface {
	List(ctx context.Context, filter repository.AuditFilter) ([]models.CommandAudit, error)
}

// AuditHandler exposes the command audit trail.
type AuditHandler struct {
	audits auditLister
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(audits auditLister) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// List godoc
// @Summary List audited commands
// @Tags Audits
// @Produce json
// @Param batchId query string false "Filter by batch"
// @Param action query string false "Filter by action"
// @Param outcome query string false "Filter by outcome"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /audits [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter := repository.AuditFilter{
		BatchID:   c.Query("batchId"),
		Action:    strings.ToLower(c.Query("action")),
		Outcome:   strings.ToUpper(c.Query("outcome")),
		StudentID: c.Query("studentId"),
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filter.Offset = offset
	}
	entries, err := h.audits.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
