// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	// ErrTypeTransport means no response was received.
	ErrTypeTransport ErrorType = iota
	// ErrTypeHTTPStatus means the backend answered with a non-2xx status.
	ErrTypeHTTPStatus
	// ErrTypeInvalidResponse means a 2xx body could not be decoded.
	ErrTypeInvalidResponse
	// ErrTypeCancelled means the caller's context ended first.
	ErrTypeCancelled
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeTransport:
		return "transport"
	case ErrTypeHTTPStatus:
		return "http_status"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	case ErrTypeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ClientError represents an error from the summarizer client.
type ClientError struct {
	Type ErrorType

	// Set for ErrTypeHTTPStatus.
	StatusCode int
	Status     string
	Detail     string

	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// maxErrorBody bounds how much of a failure body is read.
const maxErrorBody = 1 << 20

// ClientConfig holds configuration options for the summarizer client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://localhost:8000)
	BaseURL string

	// HealthTimeout bounds GET /health (default: 5s)
	HealthTimeout time.Duration

	// UserAgent is sent with every request (default: summify)
	UserAgent string

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "http://localhost:8000",
		HealthTimeout: 5 * time.Second,
		UserAgent:     "summify",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the summarization backend. It is safe for concurrent use.
//
// Example:
//
//	client := summarizer.NewClient(&summarizer.ClientConfig{BaseURL: ep.BaseURL})
//	resp, err := client.Summarize(ctx, "https://youtu.be/abc")
type Client struct {
	config     *ClientConfig
	httpClient *http.Client

	mu      sync.RWMutex
	baseURL string
}

// NewClient creates a client, filling zero config values with defaults.
func NewClient(config *ClientConfig) *Client {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}

	cfg := *config
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HealthTimeout == 0 {
		cfg.HealthTimeout = defaults.HealthTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// No client-level timeout: Summarize deadlines come from the context.
		httpClient = &http.Client{}
	}

	return &Client{config: &cfg, httpClient: httpClient, baseURL: cfg.BaseURL}
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL points later requests at a different backend.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// =============================================================================
// SUMMARIZE
// =============================================================================

// Summarize posts url to /summarize and decodes the reply.
// A 2xx reply with an empty summary is returned as-is; callers decide what
// an empty summary means.
func (c *Client) Summarize(ctx context.Context, url string) (*SummaryResponse, error) {
	body, err := json.Marshal(SummarizeRequest{URL: url})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeTransport, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+"/summarize", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	var out SummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return nil, c.transportError(ctx, err)
		}
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &out, nil
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+"/health", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var out HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &out, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// transportError distinguishes a cancelled context from a network failure.
func (c *Client) transportError(ctx context.Context, err error) *ClientError {
	if ctx.Err() != nil {
		return &ClientError{Type: ErrTypeCancelled, Message: "request cancelled", Cause: context.Cause(ctx)}
	}
	return &ClientError{Type: ErrTypeTransport, Message: "request failed", Cause: err}
}

// statusError builds an ErrTypeHTTPStatus error, reading {"detail"} if present.
func statusError(resp *http.Response) *ClientError {
	status := http.StatusText(resp.StatusCode)
	if status == "" {
		status = strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	}

	cerr := &ClientError{
		Type:       ErrTypeHTTPStatus,
		StatusCode: resp.StatusCode,
		Status:     status,
		Message:    "server returned " + resp.Status,
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return cerr
	}
	var body ErrorResponse
	if json.Unmarshal(data, &body) == nil {
		cerr.Detail = body.DetailText()
	}
	if cerr.Detail != "" {
		cerr.Message += ": " + cerr.Detail
	}
	return cerr
}
