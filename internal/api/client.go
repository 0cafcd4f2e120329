// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client wrapper for the RAG backend.
//
// The wrapper applies a fixed base URL and a bounded timeout to every call,
// attaches the stored identity token as the User-UUID header, and intercepts
// authorization failures: a 401 received while the app is not on the login
// view evicts the token and fires the injected unauthorized hook. The
// original failure always propagates to the caller. No retries happen at
// this layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ragchat/ragchat-tui/internal/storage"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second

	// TokenHeader carries the identity token on every request.
	TokenHeader = "User-UUID"

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// Error variables for the backend failure taxonomy.
var (
	// ErrInvalidCredentials indicates the backend rejected the request
	// with 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrBadRequest indicates the backend rejected the request with 400.
	ErrBadRequest = errors.New("bad request")

	// ErrTimeout indicates the client-side deadline was exceeded.
	ErrTimeout = errors.New("request timed out")

	// ErrNetworkUnreachable indicates no response was received at all.
	ErrNetworkUnreachable = errors.New("network unreachable")
)

// APIError represents any other non-2xx response from the backend.
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

// errorBody is the error envelope some backend responses carry.
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the HTTP client wrapper for the RAG backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     storage.TokenStore

	// onLoginView reports whether the app is currently showing the login
	// view. A 401 received there must not trigger eviction; the login
	// call itself legitimately returns 401 for wrong credentials.
	onLoginView func() bool

	// unauthorized fires after the token has been evicted on a 401.
	unauthorized func()
}

// NewClient creates a client for the given base URL and token store.
func NewClient(baseURL string, tokens storage.TokenStore) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		tokens:       tokens,
		onLoginView:  func() bool { return false },
		unauthorized: func() {},
	}
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithLoginViewCheck injects the "am I on the login view" predicate.
func (c *Client) WithLoginViewCheck(fn func() bool) *Client {
	if fn != nil {
		c.onLoginView = fn
	}
	return c
}

// WithUnauthorizedHook injects the hook fired after 401 token eviction.
func (c *Client) WithUnauthorizedHook(fn func()) *Client {
	if fn != nil {
		c.unauthorized = fn
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUESTS
// =============================================================================

// Post sends a JSON POST to the given path and decodes the 2xx response
// body into out (when out is non-nil). body may be nil for empty requests.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.request(ctx, http.MethodPost, path, body, out)
}

func (c *Client) request(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(err)
	}
	defer resp.Body.Close()
	log.Printf("API %s %s: %d (%v)", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	respBody, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// setHeaders sets the standard headers, including the identity token when
// one is stored.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ragchat/0.1.0")

	if c.tokens != nil {
		if token, err := c.tokens.Get(); err == nil && token != "" {
			req.Header.Set(TokenHeader, token)
		}
	}
}

// transportError maps transport-level failures onto the error taxonomy.
// A deadline hit is ErrTimeout; anything else that produced no response
// is ErrNetworkUnreachable.
func (c *Client) transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
}

// handleErrorResponse converts HTTP error responses to taxonomy errors and
// performs the 401 eviction side effect.
func (c *Client) handleErrorResponse(status int, body []byte) error {
	detail := ""
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Detail != "" {
			detail = eb.Detail
		} else if eb.Message != "" {
			detail = eb.Message
		}
	}

	if status == http.StatusUnauthorized {
		// Eviction only happens away from the login view; there the 401
		// simply means wrong credentials and the stored state is not
		// touched.
		if !c.onLoginView() {
			if c.tokens != nil {
				if err := c.tokens.Clear(); err != nil {
					log.Printf("failed to evict token after 401: %v", err)
				}
			}
			c.unauthorized()
		}
		if detail != "" {
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, detail)
		}
		return ErrInvalidCredentials
	}

	if status == http.StatusBadRequest {
		if detail != "" {
			return fmt.Errorf("%w: %s", ErrBadRequest, detail)
		}
		return ErrBadRequest
	}

	return &APIError{Status: status, Message: detail}
}

// readResponse reads the response body with a size limit.
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
