package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-batch-api/internal/models"
	"github.com/noah-isme/lms-batch-api/pkg/config"
	appErrors "github.com/noah-isme/lms-batch-api/pkg/errors"
)

// Client talks to the external batch/enrollment persistence API. All
// persistence is delegated there; this service never writes batch or
// enrollment state anywhere else.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// EnrollRequest is the payload for creating an enrollment upstream.
type EnrollRequest struct {
	StudentID      string `json:"student_id"`
	CourseID       string `json:"course_id"`
	BatchID        string `json:"batch_id"`
	EnrollmentType string `json:"enrollment_type,omitempty"`
}

// New constructs a Client from configuration.
func New(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *appErrors.Error `json:"error,omitempty"`
}

// FetchBatch loads a single batch.
func (c *Client) FetchBatch(ctx context.Context, batchID string) (*models.Batch, error) {
	var batch models.Batch
	if err := c.do(ctx, http.MethodGet, "/batches/"+url.PathEscape(batchID), nil, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// FetchEnrollments loads enrollment records for a batch. A malformed body
// degrades to an empty list with a logged warning rather than failing the
// whole load.
func (c *Client) FetchEnrollments(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentRecord, error) {
	path := "/batches/" + url.PathEscape(filter.BatchID) + "/enrollments"
	query := url.Values{}
	if filter.StudentID != "" {
		query.Set("studentId", filter.StudentID)
	}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var records []models.EnrollmentRecord
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		if appErrors.HasCode(err, appErrors.ErrValidation) {
			c.logger.Warn("malformed enrollment payload, treating as empty",
				zap.String("batch_id", filter.BatchID), zap.Error(err))
			return []models.EnrollmentRecord{}, nil
		}
		return nil, err
	}
	return records, nil
}

// FetchAllStudents loads the full student roster.
func (c *Client) FetchAllStudents(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := c.do(ctx, http.MethodGet, "/students", nil, &students); err != nil {
		if appErrors.HasCode(err, appErrors.ErrValidation) {
			c.logger.Warn("malformed student payload, treating as empty", zap.Error(err))
			return []models.Student{}, nil
		}
		return nil, err
	}
	return students, nil
}

// UpdateBatchStatus persists a batch status change.
func (c *Client) UpdateBatchStatus(ctx context.Context, batchID string, status models.BatchStatus) error {
	body := map[string]string{"status": string(status)}
	return c.do(ctx, http.MethodPut, "/batches/"+url.PathEscape(batchID)+"/status", body, nil)
}

// EnrollStudent creates an enrollment and returns the server-confirmed record
// including server-assigned id, date and any defaulted fields.
func (c *Client) EnrollStudent(ctx context.Context, req EnrollRequest) (*models.EnrollmentRecord, error) {
	var record models.EnrollmentRecord
	if err := c.do(ctx, http.MethodPost, "/enrollments", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// RemoveStudent deletes the student's enrollment in the batch.
func (c *Client) RemoveStudent(ctx context.Context, batchID, studentID string) error {
	path := "/batches/" + url.PathEscape(batchID) + "/students/" + url.PathEscape(studentID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// UpdateEnrollmentRecord persists an enrollment status change.
func (c *Client) UpdateEnrollmentRecord(ctx context.Context, enrollmentID string, status models.EnrollmentStatus) error {
	body := map[string]string{"status": string(status)}
	return c.do(ctx, http.MethodPatch, "/enrollments/"+url.PathEscape(enrollmentID), body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode upstream payload")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstreamFailed.Code, appErrors.ErrUpstreamFailed.Status, "upstream request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstreamFailed.Code, appErrors.ErrUpstreamFailed.Status, "read upstream response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %s: not found", method, path))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return appErrors.Wrap(
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw, 256)),
			appErrors.ErrUpstreamFailed.Code, appErrors.ErrUpstreamFailed.Status,
			fmt.Sprintf("upstream rejected %s %s", method, path),
		)
	}

	if dest == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Data) == 0 {
		// Some upstream deployments answer without the envelope.
		if err := json.Unmarshal(raw, dest); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "decode upstream response")
		}
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "decode upstream data")
	}
	return nil
}

func truncate(raw []byte, limit int) string {
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}
