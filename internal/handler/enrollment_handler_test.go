package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-batch-api/internal/models"
	appErrors "github.com/noah-isme/lms-batch-api/pkg/errors"
)

type fakeEnrollmentCommands struct {
	enrollErr   error
	unenrollErr error
	lastEnroll  string
	lastConfirm bool
	lastReason  string
	lastStatus  models.EnrollmentStatus
}

func (f *fakeEnrollmentCommands) Enroll(_ context.Context, _ string, studentID string, _ *string) (*models.EnrollmentRecord, error) {
	f.lastEnroll = studentID
	if f.enrollErr != nil {
		return nil, f.enrollErr
	}
	return &models.EnrollmentRecord{ID: "e1", StudentID: studentID}, nil
}

func (f *fakeEnrollmentCommands) Unenroll(_ context.Context, _, _, reason string, confirm bool, _ *string) error {
	f.lastConfirm = confirm
	f.lastReason = reason
	return f.unenrollErr
}

func (f *fakeEnrollmentCommands) UpdateEnrollmentStatus(_ context.Context, _, studentID string, status models.EnrollmentStatus, _ *string) (*models.EnrollmentRecord, error) {
	f.lastStatus = status
	return &models.EnrollmentRecord{ID: "e1", StudentID: studentID, Status: status}, nil
}

func enrollmentContext(t *testing.T, method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, path, strings.NewReader(body))
	c.Params = gin.Params{{Key: "id", Value: "b1"}, {Key: "studentId", Value: "s1"}}
	return c, rec
}

func TestEnrollmentHandlerEnroll(t *testing.T) {
	fake := &fakeEnrollmentCommands{}
	h := NewEnrollmentHandler(fake)

	c, rec := enrollmentContext(t, http.MethodPost, "/batches/b1/enrollments", `{"student_id":"s2"}`)
	h.Enroll(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "s2", fake.lastEnroll)
}

func TestEnrollmentHandlerEnrollMissingStudent(t *testing.T) {
	h := NewEnrollmentHandler(&fakeEnrollmentCommands{})

	c, rec := enrollmentContext(t, http.MethodPost, "/batches/b1/enrollments", `{}`)
	h.Enroll(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnrollmentHandlerEnrollCapacityConflict(t *testing.T) {
	fake := &fakeEnrollmentCommands{enrollErr: appErrors.Clone(appErrors.ErrCapacityExceeded, "")}
	h := NewEnrollmentHandler(fake)

	c, rec := enrollmentContext(t, http.MethodPost, "/batches/b1/enrollments", `{"student_id":"s2"}`)
	h.Enroll(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEnrollmentHandlerUnenrollPassesConfirmAndReason(t *testing.T) {
	fake := &fakeEnrollmentCommands{}
	h := NewEnrollmentHandler(fake)

	c, rec := enrollmentContext(t, http.MethodDelete, "/batches/b1/enrollments/s1?confirm=true&reason=moved", "")
	h.Unenroll(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, fake.lastConfirm)
	assert.Equal(t, "moved", fake.lastReason)
}

func TestEnrollmentHandlerUnenrollDeclined(t *testing.T) {
	fake := &fakeEnrollmentCommands{unenrollErr: appErrors.Clone(appErrors.ErrConfirmationDeclined, "")}
	h := NewEnrollmentHandler(fake)

	c, rec := enrollmentContext(t, http.MethodDelete, "/batches/b1/enrollments/s1", "")
	h.Unenroll(c)

	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.False(t, fake.lastConfirm)
}

func TestEnrollmentHandlerUpdateStatus(t *testing.T) {
	fake := &fakeEnrollmentCommands{}
	h := NewEnrollmentHandler(fake)

	c, rec := enrollmentContext(t, http.MethodPut, "/batches/b1/enrollments/s1/status", `{"status":"on_hold"}`)
	h.UpdateStatus(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.EnrollmentStatusOnHold, fake.lastStatus)
}

func TestEnrollmentHandlerUpdateStatusMissing(t *testing.T) {
	h := NewEnrollmentHandler(&fakeEnrollmentCommands{})

	c, rec := enrollmentContext(t, http.MethodPut, "/batches/b1/enrollments/s1/status", `{}`)
	h.UpdateStatus(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
