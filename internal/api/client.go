// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the skydesk support backend.
//
// The client wraps the chat, feedback, session, order and login endpoints as
// plain request/response calls. It performs no retries and no caching; every
// failure is returned to the caller, which decides how to degrade.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is the base URL of a locally running backend.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared HTTP transport for all backend requests.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// Error variables for common backend errors.
var (
	// ErrInvalidCredentials indicates the login was rejected.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotConfigured indicates the client has no base URL.
	ErrNotConfigured = errors.New("backend base URL not configured")
)

// APIError represents a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the skydesk support backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// New creates a new backend client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   DefaultTimeout,
		},
		userAgent: "skydesk/0.1.0",
	}
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// CHAT
// =============================================================================

// Chat performs one start-or-continue exchange. An empty ConversationID asks
// the server to open a new conversation; an empty Message is the boot call
// that returns the initial greeting.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.postJSON(ctx, "/api/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// FEEDBACK
// =============================================================================

// SubmitFeedback submits a user rating for the exchange identified by the
// trace id. The response body is an acknowledgement and is discarded.
func (c *Client) SubmitFeedback(ctx context.Context, req FeedbackRequest) error {
	return c.postJSON(ctx, "/api/feedback", req, nil)
}

// =============================================================================
// SESSIONS
// =============================================================================

// ListSessions returns up to limit persisted sessions, scoped to the user
// when userID is non-empty. Used once at startup to rebuild local state.
func (c *Client) ListSessions(ctx context.Context, limit int, userID string) ([]SessionPayload, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if userID != "" {
		q.Set("user_id", userID)
	}

	var payloads []SessionPayload
	if err := c.getJSON(ctx, "/api/sessions", q, &payloads); err != nil {
		return nil, err
	}
	return payloads, nil
}

// =============================================================================
// ORDERS
// =============================================================================

// ListOrders returns the user's orders.
func (c *Client) ListOrders(ctx context.Context, userID string) ([]OrderPayload, error) {
	q := url.Values{}
	if userID != "" {
		q.Set("user_id", userID)
	}

	var payloads []OrderPayload
	if err := c.getJSON(ctx, "/api/orders", q, &payloads); err != nil {
		return nil, err
	}
	return payloads, nil
}

// CreateOrder creates a new order for the user and returns it.
func (c *Client) CreateOrder(ctx context.Context, userID string) (*OrderPayload, error) {
	req := struct {
		UserID string `json:"user_id"`
	}{UserID: userID}

	var payload OrderPayload
	if err := c.postJSON(ctx, "/api/orders", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// =============================================================================
// LOGIN
// =============================================================================

// Login exchanges opaque credentials for an opaque user object. A 401 maps to
// ErrInvalidCredentials so the login form can show a friendly message.
func (c *Client) Login(ctx context.Context, username, password string) (*UserPayload, error) {
	req := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var payload UserPayload
	if err := c.postJSON(ctx, "/api/login", req, &payload); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return &payload, nil
}

// =============================================================================
// TRANSPORT HELPERS
// =============================================================================

// postJSON performs a POST with a JSON body and decodes the response into out
// when out is non-nil.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	return c.do(req, out)
}

// getJSON performs a GET with query parameters and decodes the response.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	return c.do(req, out)
}

// do executes the request and handles status and decode uniformly.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
}

// readResponse reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// errorMessage extracts a detail string from an error body when present.
// FastAPI-style backends return {"detail": "..."}; plain text passes through.
func errorMessage(body []byte) string {
	var detail struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &detail); err == nil {
		if detail.Detail != "" {
			return detail.Detail
		}
		if detail.Error != "" {
			return detail.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
