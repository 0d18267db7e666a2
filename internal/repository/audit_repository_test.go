package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-batch-api/internal/models"
)

func newAuditRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAuditRepositoryRecord(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO command_audits")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := "u-1"
	student := "s-1"
	entry := &models.CommandAudit{
		UserID:    &user,
		Action:    "enroll",
		BatchID:   "b-1",
		StudentID: &student,
		Outcome:   models.AuditOutcomeConfirmed,
	}
	require.NoError(t, repo.Record(context.Background(), entry))
	require.False(t, entry.CreatedAt.IsZero(), "created_at defaulted on insert")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	rows := sqlmock.NewRows([]string{"id", "user_id", "action", "batch_id", "student_id", "outcome", "rolled_back", "detail", "ip_address", "created_at"}).
		AddRow(int64(7), nil, "unenroll", "b-1", nil, "ROLLED_BACK", true, nil, "", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, action, batch_id, student_id")).
		WithArgs("b-1", "unenroll", 25).
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), AuditFilter{BatchID: "b-1", Action: "unenroll", Limit: 25})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, int64(7), entries[0].ID)
	require.True(t, entries[0].RolledBack)
	require.NoError(t, mock.ExpectationsWereMet())
}
