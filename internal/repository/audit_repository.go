package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-batch-api/internal/models"
)

// AuditFilter narrows the audit listing.
type AuditFilter struct {
	BatchID   string
	Action    string
	Outcome   string
	StudentID string
	Limit     int
	Offset    int
}

// AuditRepository persists the command audit trail.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record inserts one audit row.
func (r *AuditRepository) Record(ctx context.Context, entry *models.CommandAudit) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO command_audits
	(user_id, action, batch_id, student_id, outcome, rolled_back, detail, ip_address, created_at)
	VALUES (:user_id, :action, :batch_id, :student_id, :outcome, :rolled_back, :detail, :ip_address, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}

// List returns audit rows matching the filter, latest first.
func (r *AuditRepository) List(ctx context.Context, filter AuditFilter) ([]models.CommandAudit, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(`SELECT id, user_id, action, batch_id, student_id, outcome, rolled_back, detail, ip_address, created_at
	FROM command_audits`)

	conditions := make([]string, 0, 4)
	if filter.BatchID != "" {
		args = append(args, filter.BatchID)
		conditions = append(conditions, fmt.Sprintf("batch_id = $%d", len(args)))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}
	if filter.Outcome != "" {
		args = append(args, filter.Outcome)
		conditions = append(conditions, fmt.Sprintf("outcome = $%d", len(args)))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	builder.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		builder.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	var entries []models.CommandAudit
	if err := r.db.SelectContext(ctx, &entries, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	return entries, nil
}
