// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/jeranaias/comply-tui/internal/logging"
)

// Defaults for ClientConfig.
const (
	DefaultBaseURL           = "http://127.0.0.1:8000"
	DefaultTimeout           = 120 * time.Second
	DefaultRequestsPerMinute = 30
	DefaultUserAgent         = "comply-tui"

	// MaxResponseSize bounds how much of a response body is read.
	MaxResponseSize = 10 * 1024 * 1024

	// MaxUploadSize bounds documents accepted by OpenUpload.
	MaxUploadSize = 25 * 1024 * 1024
)

// RequestIDHeader carries the correlation ID of a request.
const RequestIDHeader = "X-Request-ID"

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend root, without a trailing slash.
	BaseURL string

	// Timeout bounds each request. Generation and document checks call an
	// LLM on the server, so this is generous by default.
	Timeout time.Duration

	// RequestsPerMinute limits outgoing requests. Negative disables the limit.
	RequestsPerMinute int

	UserAgent string

	// Logger receives request logs. Defaults to a discarding logger.
	Logger logrus.FieldLogger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           DefaultBaseURL,
		Timeout:           DefaultTimeout,
		RequestsPerMinute: DefaultRequestsPerMinute,
		UserAgent:         DefaultUserAgent,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the compliance backend.
//
// The Client is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logrus.FieldLogger
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client, filling zero values of config
// with defaults.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60), cfg.RequestsPerMinute)
	}

	return &Client{
		config:     &cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		log:        cfg.Logger.WithField("component", "api"),
	}
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// REQUEST CORRELATION
// =============================================================================

type requestIDKey struct{}

// WithRequestID returns a context whose requests carry id in the
// X-Request-ID header.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request ID stored in ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the backend is reachable and healthy.
func (c *Client) CheckRunning(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, nil, &health); err != nil {
		return nil, err
	}
	if health.Status != "" && health.Status != "healthy" {
		return &health, &ClientError{Type: ErrTypeServer, Message: "backend reports status " + health.Status}
	}
	return &health, nil
}

// =============================================================================
// AGENT OPERATIONS
// =============================================================================

// GenerateContent asks the backend to generate content for a prompt and
// check it against the active rules.
func (c *Client) GenerateContent(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/agent/generate", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckDocument uploads a document for violation analysis.
func (c *Client) CheckDocument(ctx context.Context, userID string, doc Upload) (*DocumentCheckResponse, error) {
	body, contentType, err := multipartBody("file", doc)
	if err != nil {
		return nil, err
	}

	query := url.Values{"user_id": {userID}}
	var resp DocumentCheckResponse
	if err := c.do(ctx, http.MethodPost, "/agent/check-document", query, body, contentType, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RewriteContent asks for a compliant version of a violating passage.
func (c *Client) RewriteContent(ctx context.Context, submissionID, violationText string) (*RewriteResponse, error) {
	req := RewriteRequest{SubmissionID: submissionID, ViolationText: violationText}
	var resp RewriteResponse
	if err := c.doJSON(ctx, http.MethodPost, "/agent/rewrite", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OpenUpload reads a document from disk for CheckDocument.
func OpenUpload(path string) (Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to open document: %w", err)
	}
	if info.IsDir() {
		return Upload{}, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxUploadSize {
		return Upload{}, fmt.Errorf("document is %d bytes, limit is %d", info.Size(), MaxUploadSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to read document: %w", err)
	}
	return Upload{Filename: filepath.Base(path), Data: data}, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, query, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out interface{}) error {
	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	requestID := RequestIDFrom(ctx)
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}

	log := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeRateLimited, Message: "rate limit wait aborted", Cause: err}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Debug("request failed")
		return transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to read response", Status: resp.StatusCode, Cause: err}
	}
	if len(data) > MaxResponseSize {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "response exceeded maximum size", Status: resp.StatusCode}
	}

	log = log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		clientErr := statusError(resp.StatusCode, data)
		log.WithField("error_type", clientErr.Type.String()).Debug("request rejected")
		return clientErr
	}
	log.Debug("request completed")

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Status: resp.StatusCode, Cause: err}
	}
	return nil
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &ClientError{Type: ErrTypeConnection, Message: "request cancelled", Cause: err}
	}
	return &ClientError{Type: ErrTypeNotRunning, Message: ErrNotRunning.Message, Cause: err}
}

func multipartBody(field string, doc Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, doc.Filename)
	if err != nil {
		return nil, "", &ClientError{Type: ErrTypeUnknown, Message: "failed to build upload", Cause: err}
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, "", &ClientError{Type: ErrTypeUnknown, Message: "failed to build upload", Cause: err}
	}
	if err := w.Close(); err != nil {
		return nil, "", &ClientError{Type: ErrTypeUnknown, Message: "failed to build upload", Cause: err}
	}
	return &buf, w.FormDataContentType(), nil
}
