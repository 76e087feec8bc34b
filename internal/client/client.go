// Package client submits validated captures to the analysis backend.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yildizm/PcapView/internal/config"
	"github.com/yildizm/PcapView/internal/intake"
	"github.com/yildizm/PcapView/internal/logger"
)

// FormField is the multipart field the backend reads the capture from
const FormField = "file"

// RequestIDHeader carries a per-upload identifier for log correlation
const RequestIDHeader = "X-Request-ID"

// Result is the backend's analysis, kept verbatim
type Result struct {
	raw       json.RawMessage
	requestID string
}

// NewResult wraps a JSON document; it fails when data is not valid JSON
func NewResult(data []byte) (*Result, error) {
	var probe json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return &Result{raw: raw}, nil
}

// Raw returns the verbatim response body
func (r *Result) Raw() json.RawMessage {
	return r.raw
}

// RequestID returns the identifier the upload was sent with
func (r *Result) RequestID() string {
	return r.requestID
}

// HealthStatus is the backend's /health answer
type HealthStatus struct {
	Status        string `json:"status"`
	NATSConnected bool   `json:"nats_connected"`
}

// Client talks to the analysis backend. It holds no per-request state, so it
// never queues: callers must not start a second Submit while one is running.
type Client struct {
	uploadURL string
	healthURL string
	http      *http.Client
	messages  config.MessageConfig
	log       *logger.Logger
	newID     func() string
}

// New creates a client from configuration
func New(cfg *config.Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		uploadURL: cfg.Server.UploadURL(),
		healthURL: cfg.Server.HealthURL(),
		http:      &http.Client{Timeout: cfg.Server.Timeout},
		messages:  cfg.Messages,
		log:       log.WithComponent("client"),
		newID:     uuid.NewString,
	}
}

// Submit uploads file as multipart/form-data and decodes the analysis.
// One attempt only; failures are *AnalysisError.
func (c *Client) Submit(ctx context.Context, file *intake.SelectedFile) (*Result, error) {
	requestID := c.newID()
	startTime := time.Now()

	src, err := file.Open()
	if err != nil {
		return nil, c.transportError(requestID, fmt.Errorf("failed to open %s: %w", file.Name(), err))
	}

	body, writer := io.Pipe()
	form := multipart.NewWriter(writer)
	go func() {
		_ = writer.CloseWithError(writeForm(form, file.Name(), src))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, body)
	if err != nil {
		_ = body.Close()
		return nil, c.transportError(requestID, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	c.log.InfoWithFields("uploading capture", []logger.Field{
		logger.F("name", file.Name()),
		logger.Bytes(file.Size()),
		logger.F("request_id", requestID),
	})

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(requestID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(requestID, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		aerr := &AnalysisError{
			Kind:       RequestFailed,
			Message:    c.failureMessage(payload),
			StatusCode: resp.StatusCode,
			RequestID:  requestID,
		}
		c.log.Warn("analysis rejected: %s", aerr.Detail())
		return nil, aerr
	}

	result, err := NewResult(payload)
	if err != nil {
		return nil, c.transportError(requestID, fmt.Errorf("malformed analysis response: %w", err))
	}
	result.requestID = requestID

	c.log.InfoWithFields("analysis received", []logger.Field{
		logger.F("status", resp.StatusCode),
		logger.Bytes(int64(len(payload))),
		logger.Duration(time.Since(startTime)),
		logger.F("request_id", requestID),
	})

	return result, nil
}

// Health probes the backend's health endpoint
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	requestID := c.newID()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, http.NoBody)
	if err != nil {
		return nil, c.transportError(requestID, err)
	}
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(requestID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(requestID, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AnalysisError{
			Kind:       RequestFailed,
			Message:    c.failureMessage(payload),
			StatusCode: resp.StatusCode,
			RequestID:  requestID,
		}
	}

	var status HealthStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return nil, c.transportError(requestID, fmt.Errorf("malformed health response: %w", err))
	}
	return &status, nil
}

// writeForm streams the capture into a single "file" part
func writeForm(form *multipart.Writer, name string, src io.ReadCloser) error {
	defer func() { _ = src.Close() }()

	part, err := form.CreateFormFile(FormField, name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	return form.Close()
}

// failureMessage returns the backend's string "detail" or the configured fallback.
// A body that is not JSON, or a non-string detail, yields the fallback.
func (c *Client) failureMessage(payload []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || len(body.Detail) == 0 {
		return c.messages.RequestFailed
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil || detail == "" {
		return c.messages.RequestFailed
	}
	return detail
}

func (c *Client) transportError(requestID string, cause error) *AnalysisError {
	message := c.messages.TransportFailure
	if cause != nil && cause.Error() != "" {
		message = cause.Error()
	}
	aerr := &AnalysisError{
		Kind:      TransportFailure,
		Message:   message,
		RequestID: requestID,
		Cause:     cause,
	}
	c.log.Warn("analysis transport failure: %s", aerr.Detail())
	return aerr
}
