package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-batch-api/internal/models"
)

func record(status models.EnrollmentStatus, progress int, plan models.PaymentPlan, date string) models.EnrollmentRecord {
	d, _ := time.Parse("2006-01-02", date)
	return models.EnrollmentRecord{
		StudentID:      "s",
		Status:         status,
		Progress:       progress,
		PaymentPlan:    plan,
		EnrollmentDate: d,
	}
}

func TestStatusBreakdownPercentages(t *testing.T) {
	svc := NewAnalyticsService()
	records := []models.EnrollmentRecord{
		record(models.EnrollmentStatusActive, 10, models.PaymentPlanFull, "2026-01-01"),
		record(models.EnrollmentStatusActive, 20, models.PaymentPlanFull, "2026-01-01"),
		record(models.EnrollmentStatusCompleted, 100, models.PaymentPlanFull, "2026-01-02"),
	}

	out := svc.StatusBreakdown(records)
	require.Len(t, out, 2)
	byStatus := map[models.EnrollmentStatus]models.StatusCount{}
	for _, c := range out {
		byStatus[c.Status] = c
	}
	assert.Equal(t, 2, byStatus[models.EnrollmentStatusActive].Count)
	assert.Equal(t, 67, byStatus[models.EnrollmentStatusActive].Percentage)
	assert.Equal(t, 33, byStatus[models.EnrollmentStatusCompleted].Percentage)
}

func TestStatusBreakdownEmpty(t *testing.T) {
	svc := NewAnalyticsService()
	assert.Empty(t, svc.StatusBreakdown(nil))
	assert.Empty(t, svc.ProgressDistribution(nil))
	assert.Empty(t, svc.PaymentPlanDistribution(nil))
	assert.Empty(t, svc.EnrollmentTrend(nil))
}

func TestProgressBucketBoundaries(t *testing.T) {
	svc := NewAnalyticsService()
	cases := map[int]string{
		0:   "0",
		1:   "1-25",
		25:  "1-25",
		26:  "26-50",
		50:  "26-50",
		51:  "51-75",
		75:  "51-75",
		76:  "76-99",
		99:  "76-99",
		100: "100",
	}
	for progress, wantBucket := range cases {
		out := svc.ProgressDistribution([]models.EnrollmentRecord{
			record(models.EnrollmentStatusActive, progress, models.PaymentPlanFull, "2026-01-01"),
		})
		require.Len(t, out, 6, "all buckets present even when empty")
		for _, bucket := range out {
			if bucket.Label == wantBucket {
				assert.Equal(t, 1, bucket.Count, "progress %d belongs in %s", progress, wantBucket)
			} else {
				assert.Zero(t, bucket.Count, "progress %d leaked into %s", progress, bucket.Label)
			}
		}
	}
}

func TestEnrollmentTrendMergesAndAccumulates(t *testing.T) {
	svc := NewAnalyticsService()
	records := []models.EnrollmentRecord{
		record(models.EnrollmentStatusActive, 0, models.PaymentPlanFull, "2026-02-03"),
		record(models.EnrollmentStatusActive, 0, models.PaymentPlanFull, "2026-02-01"),
		record(models.EnrollmentStatusActive, 0, models.PaymentPlanFull, "2026-02-03"),
		record(models.EnrollmentStatusActive, 0, models.PaymentPlanFull, "2026-02-02"),
	}

	out := svc.EnrollmentTrend(records)
	require.Len(t, out, 3)
	assert.Equal(t, []models.TrendPoint{
		{Date: "2026-02-01", Count: 1, Cumulative: 1},
		{Date: "2026-02-02", Count: 1, Cumulative: 2},
		{Date: "2026-02-03", Count: 2, Cumulative: 4},
	}, out)
}

func TestInstructorWorkloadBands(t *testing.T) {
	svc := NewAnalyticsService()
	low, mid, high, zero := "i-low", "i-mid", "i-high", "i-zero"
	batches := []models.Batch{
		{ID: "b1", InstructorID: &low, Status: models.BatchStatusActive, Capacity: 10, EnrolledCount: 5},
		{ID: "b2", InstructorID: &mid, Status: models.BatchStatusActive, Capacity: 10, EnrolledCount: 8},
		{ID: "b3", InstructorID: &high, Status: models.BatchStatusActive, Capacity: 10, EnrolledCount: 9},
		{ID: "b4", InstructorID: &zero, Status: models.BatchStatusUpcoming, Capacity: 0, EnrolledCount: 0},
		{ID: "b5", InstructorID: nil, Status: models.BatchStatusActive, Capacity: 10, EnrolledCount: 10},
	}

	out := svc.InstructorWorkload(batches)
	require.Len(t, out, 4, "unassigned batch skipped")
	byID := map[string]models.InstructorLoad{}
	for _, load := range out {
		byID[load.InstructorID] = load
	}

	assert.Equal(t, models.BandUnderutilized, byID[low].Band)
	assert.Equal(t, 50.0, byID[low].Utilization)
	assert.Equal(t, models.BandOptimal, byID[mid].Band, "80 is inclusive optimal")
	assert.Equal(t, models.BandOverloaded, byID[high].Band)
	assert.Equal(t, models.BandUnderutilized, byID[zero].Band, "zero capacity defaults to 0%")
	assert.Equal(t, 0.0, byID[zero].Utilization)
}

func TestInstructorWorkloadBoundarySixty(t *testing.T) {
	svc := NewAnalyticsService()
	id := "i-1"
	out := svc.InstructorWorkload([]models.Batch{
		{ID: "b1", InstructorID: &id, Status: models.BatchStatusActive, Capacity: 10, EnrolledCount: 6},
	})
	require.Len(t, out, 1)
	assert.Equal(t, 60.0, out[0].Utilization)
	assert.Equal(t, models.BandOptimal, out[0].Band, "60 is inclusive optimal")
}

func TestUtilizationOneDecimalRounding(t *testing.T) {
	svc := NewAnalyticsService()
	util := svc.CapacityUtilization(models.Batch{ID: "b1", Capacity: 3, EnrolledCount: 1})
	assert.Equal(t, 33.3, util.Utilization)
	assert.False(t, util.High)

	util = svc.CapacityUtilization(models.Batch{ID: "b1", Capacity: 7, EnrolledCount: 6})
	assert.Equal(t, 85.7, util.Utilization)
	assert.True(t, util.High)

	util = svc.CapacityUtilization(models.Batch{ID: "b1", Capacity: 5, EnrolledCount: 4})
	assert.Equal(t, 80.0, util.Utilization)
	assert.False(t, util.High, "high is strictly above 80")
}

func TestAggregateSnapshotWholesale(t *testing.T) {
	svc := NewAnalyticsService()
	batch := models.Batch{ID: "b1", Capacity: 10, EnrolledCount: 2}
	records := []models.EnrollmentRecord{
		record(models.EnrollmentStatusActive, 40, models.PaymentPlanFull, "2026-01-01"),
		record(models.EnrollmentStatusOnHold, 80, models.PaymentPlanInstallment, "2026-01-05"),
	}

	snapshot := svc.Aggregate(batch, records)
	assert.Equal(t, "b1", snapshot.BatchID)
	assert.Equal(t, 2, snapshot.Total)
	assert.Len(t, snapshot.ByStatus, 2)
	assert.Len(t, snapshot.ByPaymentPlan, 2)
	assert.Len(t, snapshot.Trend, 2)
	require.NotNil(t, snapshot.Capacity)
	assert.Equal(t, 20.0, snapshot.Capacity.Utilization)
}
