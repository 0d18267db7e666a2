package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/lms-batch-api/internal/models"
	appErrors "github.com/noah-isme/lms-batch-api/pkg/errors"
	"github.com/noah-isme/lms-batch-api/pkg/response"
)

type enrollmentCommands interface {
	Enroll(ctx context.Context, batchID, studentID string, userID *string) (*models.EnrollmentRecord, error)
	Unenroll(ctx context.Context, batchID, studentID, reason string, confirm bool, userID *string) error
	UpdateEnrollmentStatus(ctx context.Context, batchID, studentID string, status models.EnrollmentStatus, userID *string) (*models.EnrollmentRecord, error)
}

// EnrollStudentRequest is the payload for enrolling a student.
type EnrollStudentRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}

// UpdateEnrollmentStatusRequest is the payload for an enrollment status change.
type UpdateEnrollmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// EnrollmentHandler exposes enrollment commands for a batch.
type EnrollmentHandler struct {
	service  enrollmentCommands
	validate *validator.Validate
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(service enrollmentCommands) *EnrollmentHandler {
	return &EnrollmentHandler{service: service, validate: validator.New()}
}

// Enroll godoc
// @Summary Enroll a student into a batch
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param payload body EnrollStudentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /batches/{id}/enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req EnrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "student_id is required"))
		return
	}
	record, err := h.service.Enroll(c.Request.Context(), c.Param("id"), req.StudentID, userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Unenroll godoc
// @Summary Remove a student's enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Batch ID"
// @Param studentId path string true "Student ID"
// @Param confirm query bool true "Confirmation flag"
// @Param reason query string false "Removal reason"
// @Success 204
// @Router /batches/{id}/enrollments/{studentId} [delete]
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	confirm := strings.EqualFold(c.Query("confirm"), "true")
	err := h.service.Unenroll(c.Request.Context(), c.Param("id"), c.Param("studentId"),
		strings.TrimSpace(c.Query("reason")), confirm, userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateStatus godoc
// @Summary Update an enrollment record's status
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param studentId path string true "Student ID"
// @Param payload body UpdateEnrollmentStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/enrollments/{studentId}/status [put]
func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	var req UpdateEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "status is required"))
		return
	}
	status := models.EnrollmentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	record, err := h.service.UpdateEnrollmentStatus(c.Request.Context(), c.Param("id"), c.Param("studentId"), status, userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
