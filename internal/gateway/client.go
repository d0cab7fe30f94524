// Package gateway is the HTTP client for the university backend.
// It exposes one generic request primitive plus typed wrappers for the
// endpoints uniscope consumes. Each call is a single best-effort round trip:
// no retries, no caching. Callers own error presentation and retry policy.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client talks to the backend at a single configured base origin.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger
}

// New creates a Client for the given base URL. A nil logger disables logging.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Request describes one round trip. Body handling is content-aware: an
// io.Reader is streamed unmodified with ContentType (left empty, the
// transport decides); anything else is serialized as JSON with an
// application/json content type.
type Request struct {
	Method      string // defaults to GET
	Path        string // joined to the base URL, e.g. "/api/universities"
	Token       string // bearer token, omitted when empty
	Body        interface{}
	ContentType string            // only honored for io.Reader bodies
	Headers     map[string]string // overrides applied last
}

// StatusError is returned for non-2xx responses and carries the HTTP status.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http error: status %d", e.Status)
}

// IsStatus reports whether err is a StatusError with the given status code.
func IsStatus(err error, status int) bool {
	se, ok := err.(*StatusError)
	return ok && se.Status == status
}

// Do performs one HTTP round trip and returns the raw JSON response body.
// Network failures and non-2xx statuses are returned as errors; the response
// body is not interpreted beyond that.
func (c *Client) Do(ctx context.Context, r Request) (json.RawMessage, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	contentType := ""
	switch b := r.Body.(type) {
	case nil:
	case io.Reader:
		body = b
		contentType = r.ContentType
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+r.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("gateway request",
		zap.String("method", method),
		zap.String("path", r.Path))

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("gateway error response",
			zap.String("path", r.Path),
			zap.Int("status", resp.StatusCode))
		return nil, &StatusError{Status: resp.StatusCode, Body: data}
	}

	return json.RawMessage(data), nil
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}
