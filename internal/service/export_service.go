package service

import (
	"fmt"
	"strings"
	"time"

	appErrors "github.com/noah-isme/lms-batch-api/pkg/errors"
	"github.com/noah-isme/lms-batch-api/pkg/export"

	"github.com/noah-isme/lms-batch-api/internal/dto"
)

const (
	// ExportFormatCSV renders the roster as CSV.
	ExportFormatCSV = "csv"
	// ExportFormatPDF renders the roster as PDF.
	ExportFormatPDF = "pdf"
)

// ExportResult carries rendered export bytes plus HTTP delivery metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders batch rosters into downloadable documents.
type ExportService struct {
	csv *export.CSVExporter
	pdf *export.PDFExporter
}

// NewExportService constructs an ExportService.
func NewExportService() *ExportService {
	return &ExportService{csv: export.NewCSVExporter(), pdf: export.NewPDFExporter()}
}

// Roster renders the enrolled roster of a dashboard snapshot in the requested
// format. A summary block with the batch identity and utilization precedes
// the table.
func (s *ExportService) Roster(snapshot *dto.BatchDashboardResponse, format string) (*ExportResult, error) {
	dataset := rosterDataset(snapshot)
	filename := fmt.Sprintf("roster-%s-%s", snapshot.Batch.ID, time.Now().UTC().Format("20060102"))

	switch strings.ToLower(format) {
	case ExportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv export")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: filename + ".csv"}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset, fmt.Sprintf("Batch Roster - %s", snapshot.Batch.Name))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf export")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: filename + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func rosterDataset(snapshot *dto.BatchDashboardResponse) export.Dataset {
	headers := []string{"Student ID", "Name", "Email", "Status", "Progress", "Payment Plan", "Enrolled On"}
	rows := make([]map[string]string, 0, len(snapshot.Enrolled))
	for _, entry := range snapshot.Enrolled {
		rows = append(rows, map[string]string{
			"Student ID":   entry.StudentID,
			"Name":         entry.StudentName,
			"Email":        entry.StudentEmail,
			"Status":       string(entry.Status),
			"Progress":     fmt.Sprintf("%d%%", entry.Progress),
			"Payment Plan": string(entry.PaymentPlan),
			"Enrolled On":  entry.EnrollmentDate.Format("2006-01-02"),
		})
	}
	summary := []export.SummaryRow{
		{Label: "Batch", Value: snapshot.Batch.Name},
		{Label: "Status", Value: string(snapshot.Batch.Status)},
		{Label: "Capacity", Value: fmt.Sprintf("%d", snapshot.Batch.Capacity)},
		{Label: "Enrolled", Value: fmt.Sprintf("%d", snapshot.Batch.EnrolledCount)},
	}
	if capacity := snapshot.Aggregates.Capacity; capacity != nil {
		summary = append(summary, export.SummaryRow{Label: "Utilization", Value: fmt.Sprintf("%.1f%%", capacity.Utilization)})
	}
	return export.Dataset{
		Summary: summary,
		Headers: headers,
		Rows:    rows,
	}
}
