package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-batch-api/internal/dto"
	"github.com/noah-isme/lms-batch-api/internal/models"
	appErrors "github.com/noah-isme/lms-batch-api/pkg/errors"
)

func exportSnapshot() *dto.BatchDashboardResponse {
	return &dto.BatchDashboardResponse{
		Batch: models.Batch{ID: "b1", Name: "Cohort 1", Capacity: 10, EnrolledCount: 2, Status: models.BatchStatusActive},
		Enrolled: []dto.RosterEntry{
			{
				EnrollmentRecord: models.EnrollmentRecord{
					StudentID:      "s1",
					Status:         models.EnrollmentStatusActive,
					Progress:       40,
					PaymentPlan:    models.PaymentPlanFull,
					EnrollmentDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
				},
				StudentName:  "Ada",
				StudentEmail: "ada@example.com",
			},
		},
		Aggregates: models.AggregateSnapshot{
			Capacity: &models.CapacityUtilization{Utilization: 20.0},
		},
	}
}

func TestRosterCSV(t *testing.T) {
	svc := NewExportService()
	result, err := svc.Roster(exportSnapshot(), "csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Content)
	assert.Contains(t, body, "Cohort 1")
	assert.Contains(t, body, "Utilization,20.0%")
	assert.Contains(t, body, "Student ID,Name,Email,Status,Progress,Payment Plan,Enrolled On")
	assert.Contains(t, body, "s1,Ada,ada@example.com,ACTIVE,40%,FULL,2026-01-10")
}

func TestRosterPDF(t *testing.T) {
	svc := NewExportService()
	result, err := svc.Roster(exportSnapshot(), "pdf")
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestRosterUnsupportedFormat(t *testing.T) {
	svc := NewExportService()
	_, err := svc.Roster(exportSnapshot(), "xlsx")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}
