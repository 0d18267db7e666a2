package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-batch-api/internal/models"
	"github.com/noah-isme/lms-batch-api/pkg/config"
	appErrors "github.com/noah-isme/lms-batch-api/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := New(config.UpstreamConfig{BaseURL: server.URL, APIKey: "test-key", Timeout: 2 * time.Second}, zap.NewNop())
	return client, server.Close
}

func TestFetchBatchEnvelope(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/batches/b1", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": models.Batch{ID: "b1", Name: "Cohort", Capacity: 10, Status: models.BatchStatusActive},
		})
	})
	defer cleanup()

	batch, err := client.FetchBatch(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "Cohort", batch.Name)
	assert.Equal(t, 10, batch.Capacity)
}

func TestFetchBatchBareBody(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(models.Batch{ID: "b1", Status: models.BatchStatusUpcoming})
	})
	defer cleanup()

	batch, err := client.FetchBatch(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusUpcoming, batch.Status)
}

func TestFetchBatchNotFound(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer cleanup()

	_, err := client.FetchBatch(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestFetchBatchServerError(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer cleanup()

	_, err := client.FetchBatch(context.Background(), "b1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUpstreamFailed))
}

func TestFetchEnrollmentsMalformedDegradesToEmpty(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data": {"unexpected": "shape"}}`))
	})
	defer cleanup()

	records, err := client.FetchEnrollments(context.Background(), models.EnrollmentFilter{BatchID: "b1"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchEnrollmentsQueryFilters(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/batches/b1/enrollments", r.URL.Path)
		assert.Equal(t, "s1", r.URL.Query().Get("studentId"))
		assert.Equal(t, "ACTIVE", r.URL.Query().Get("status"))
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []models.EnrollmentRecord{{ID: "e1"}}})
	})
	defer cleanup()

	records, err := client.FetchEnrollments(context.Background(), models.EnrollmentFilter{
		BatchID: "b1", StudentID: "s1", Status: models.EnrollmentStatusActive,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestEnrollStudentPostsPayload(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/enrollments", r.URL.Path)
		var req EnrollRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "s1", req.StudentID)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": models.EnrollmentRecord{ID: "e-new", StudentID: req.StudentID, BatchID: req.BatchID},
		})
	})
	defer cleanup()

	record, err := client.EnrollStudent(context.Background(), EnrollRequest{StudentID: "s1", BatchID: "b1", CourseID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "e-new", record.ID)
}

func TestUpdateBatchStatusPut(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/batches/b1/status", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ACTIVE", body["status"])
		w.WriteHeader(http.StatusOK)
	})
	defer cleanup()

	require.NoError(t, client.UpdateBatchStatus(context.Background(), "b1", models.BatchStatusActive))
}

func TestRemoveStudentDelete(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/batches/b1/students/s1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	defer cleanup()

	require.NoError(t, client.RemoveStudent(context.Background(), "b1", "s1"))
}
