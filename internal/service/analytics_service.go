package service

import (
	"math"
	"sort"

	"github.com/noah-isme/lms-batch-api/internal/models"
)

// progressBuckets are the fixed ranges for the progress distribution. Each
// progress value belongs to exactly one bucket by inclusive membership.
var progressBuckets = []struct {
	label string
	min   int
	max   int
}{
	{"0", 0, 0},
	{"1-25", 1, 25},
	{"26-50", 26, 50},
	{"51-75", 51, 75},
	{"76-99", 76, 99},
	{"100", 100, 100},
}

// AnalyticsService derives summary views from enrollment and batch
// snapshots. Every method is a pure function of its input: no caching, no
// incremental patching, output replaced wholesale on each call. Input sizes
// are tens to low hundreds of records, so recompute-always wins over drift.
type AnalyticsService struct{}

// NewAnalyticsService constructs the aggregator.
func NewAnalyticsService() *AnalyticsService {
	return &AnalyticsService{}
}

// Aggregate computes the full snapshot for one batch.
func (s *AnalyticsService) Aggregate(batch models.Batch, records []models.EnrollmentRecord) models.AggregateSnapshot {
	capacity := s.CapacityUtilization(batch)
	return models.AggregateSnapshot{
		BatchID:       batch.ID,
		Total:         len(records),
		ByStatus:      s.StatusBreakdown(records),
		ByProgress:    s.ProgressDistribution(records),
		ByPaymentPlan: s.PaymentPlanDistribution(records),
		Trend:         s.EnrollmentTrend(records),
		Capacity:      &capacity,
	}
}

// StatusBreakdown counts records per status. Empty input yields an empty
// slice, never a division error.
func (s *AnalyticsService) StatusBreakdown(records []models.EnrollmentRecord) []models.StatusCount {
	if len(records) == 0 {
		return []models.StatusCount{}
	}
	counts := make(map[models.EnrollmentStatus]int)
	for _, record := range records {
		counts[record.Status]++
	}
	total := len(records)
	out := make([]models.StatusCount, 0, len(counts))
	for status, count := range counts {
		out = append(out, models.StatusCount{
			Status:     status,
			Count:      count,
			Percentage: roundPercent(count, total),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}

// ProgressDistribution buckets progress values over the fixed ranges.
func (s *AnalyticsService) ProgressDistribution(records []models.EnrollmentRecord) []models.ProgressBucket {
	if len(records) == 0 {
		return []models.ProgressBucket{}
	}
	total := len(records)
	out := make([]models.ProgressBucket, 0, len(progressBuckets))
	for _, bucket := range progressBuckets {
		count := 0
		for _, record := range records {
			if record.Progress >= bucket.min && record.Progress <= bucket.max {
				count++
			}
		}
		out = append(out, models.ProgressBucket{
			Label:      bucket.label,
			Count:      count,
			Percentage: roundPercent(count, total),
		})
	}
	return out
}

// PaymentPlanDistribution counts records per payment plan.
func (s *AnalyticsService) PaymentPlanDistribution(records []models.EnrollmentRecord) []models.PaymentPlanCount {
	if len(records) == 0 {
		return []models.PaymentPlanCount{}
	}
	counts := make(map[models.PaymentPlan]int)
	for _, record := range records {
		counts[record.PaymentPlan]++
	}
	total := len(records)
	out := make([]models.PaymentPlanCount, 0, len(counts))
	for plan, count := range counts {
		out = append(out, models.PaymentPlanCount{
			Plan:       plan,
			Count:      count,
			Percentage: roundPercent(count, total),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Plan < out[j].Plan })
	return out
}

// EnrollmentTrend groups records by calendar date (server timezone), merges
// duplicate dates into one point and returns points sorted ascending with a
// running cumulative total. This is the only order-sensitive aggregation.
func (s *AnalyticsService) EnrollmentTrend(records []models.EnrollmentRecord) []models.TrendPoint {
	if len(records) == 0 {
		return []models.TrendPoint{}
	}
	counts := make(map[string]int)
	for _, record := range records {
		counts[record.EnrollmentDate.Format("2006-01-02")]++
	}
	dates := make([]string, 0, len(counts))
	for date := range counts {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]models.TrendPoint, 0, len(dates))
	cumulative := 0
	for _, date := range dates {
		cumulative += counts[date]
		out = append(out, models.TrendPoint{Date: date, Count: counts[date], Cumulative: cumulative})
	}
	return out
}

// InstructorWorkload summarises load per instructor across the given
// batches. Batches without an instructor assignment are skipped. Zero total
// capacity yields 0% utilization, banded underutilized.
func (s *AnalyticsService) InstructorWorkload(batches []models.Batch) []models.InstructorLoad {
	type acc struct {
		active   int
		total    int
		students int
		capacity int
	}
	byInstructor := make(map[string]*acc)
	for _, batch := range batches {
		if batch.InstructorID == nil || *batch.InstructorID == "" {
			continue
		}
		a, ok := byInstructor[*batch.InstructorID]
		if !ok {
			a = &acc{}
			byInstructor[*batch.InstructorID] = a
		}
		a.total++
		if batch.Status == models.BatchStatusActive {
			a.active++
		}
		a.students += batch.EnrolledCount
		a.capacity += batch.Capacity
	}

	out := make([]models.InstructorLoad, 0, len(byInstructor))
	for instructorID, a := range byInstructor {
		utilization := 0.0
		if a.capacity > 0 {
			utilization = math.Round(float64(a.students)/float64(a.capacity)*1000) / 10
		}
		out = append(out, models.InstructorLoad{
			InstructorID:  instructorID,
			ActiveBatches: a.active,
			TotalBatches:  a.total,
			TotalStudents: a.students,
			Utilization:   utilization,
			Band:          utilizationBand(utilization),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstructorID < out[j].InstructorID })
	return out
}

// CapacityUtilization computes a single batch's fill level. High strictly
// above 80%; enrollment itself is blocked only at full capacity.
func (s *AnalyticsService) CapacityUtilization(batch models.Batch) models.CapacityUtilization {
	utilization := 0.0
	if batch.Capacity > 0 {
		utilization = math.Round(float64(batch.EnrolledCount)/float64(batch.Capacity)*1000) / 10
	}
	return models.CapacityUtilization{
		BatchID:     batch.ID,
		Enrolled:    batch.EnrolledCount,
		Capacity:    batch.Capacity,
		Utilization: utilization,
		High:        utilization > 80,
	}
}

// utilizationBand applies the exact thresholds: <60 underutilized, 60-80
// inclusive optimal, >80 overloaded.
func utilizationBand(utilization float64) models.UtilizationBand {
	switch {
	case utilization < 60:
		return models.BandUnderutilized
	case utilization <= 80:
		return models.BandOptimal
	default:
		return models.BandOverloaded
	}
}

func roundPercent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
