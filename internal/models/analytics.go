package models

// StatusCount is one slice of the status breakdown.
type StatusCount struct {
	Status     EnrollmentStatus `json:"status"`
	Count      int              `json:"count"`
	Percentage int              `json:"percentage"`
}

// ProgressBucket is one fixed progress range with its membership count.
type ProgressBucket struct {
	Label      string `json:"label"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// PaymentPlanCount is one slice of the payment plan distribution.
type PaymentPlanCount struct {
	Plan       PaymentPlan `json:"plan"`
	Count      int         `json:"count"`
	Percentage int         `json:"percentage"`
}

// TrendPoint is a per-date enrollment count with a running cumulative total.
type TrendPoint struct {
	Date       string `json:"date"`
	Count      int    `json:"count"`
	Cumulative int    `json:"cumulative"`
}

// UtilizationBand labels an instructor's aggregate load for presentation.
type UtilizationBand string

// Utilization bands. 60 and 80 themselves fall in the optimal band.
const (
	BandUnderutilized UtilizationBand = "UNDERUTILIZED"
	BandOptimal       UtilizationBand = "OPTIMAL"
	BandOverloaded    UtilizationBand = "OVERLOADED"
)

// InstructorLoad summarises one instructor's batches.
type InstructorLoad struct {
	InstructorID  string          `json:"instructor_id"`
	ActiveBatches int             `json:"active_batches"`
	TotalBatches  int             `json:"total_batches"`
	TotalStudents int             `json:"total_students"`
	Utilization   float64         `json:"utilization"`
	Band          UtilizationBand `json:"band"`
}

// CapacityUtilization summarises a single batch's fill level. High is a
// presentation threshold only; it never blocks enrollment.
type CapacityUtilization struct {
	BatchID     string  `json:"batch_id"`
	Enrolled    int     `json:"enrolled"`
	Capacity    int     `json:"capacity"`
	Utilization float64 `json:"utilization"`
	High        bool    `json:"high"`
}

// AggregateSnapshot is a pure function of the enrollment set. It is always
// replaced wholesale, never patched in place.
type AggregateSnapshot struct {
	BatchID       string               `json:"batch_id"`
	Total         int                  `json:"total"`
	ByStatus      []StatusCount        `json:"by_status"`
	ByProgress    []ProgressBucket     `json:"by_progress"`
	ByPaymentPlan []PaymentPlanCount   `json:"by_payment_plan"`
	Trend         []TrendPoint         `json:"trend"`
	Capacity      *CapacityUtilization `json:"capacity,omitempty"`
}
