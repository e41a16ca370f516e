// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// maxResponseBytes bounds how much of a response body is read. List
// endpoints paginate, so anything larger than this is a misbehaving
// server, not data.
const maxResponseBytes = 8 << 20

// AuthContext carries the per-request identity signals. The zero
// value means an unauthenticated request (login, register).
type AuthContext struct {
	// AccessToken goes into the Authorization header.
	AccessToken string

	// EnvironmentID is the resolved backend environment identifier
	// (X-Environment-Id). Never the raw enum literal.
	EnvironmentID string

	// Environment is the raw selector literal (X-Environment).
	Environment string
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the backend proxy root (e.g. "https://api.ledgerline.dev").
	BaseURL string

	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client talks to the Ledgerline backend proxy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a backend client. BaseURL is required — there is
// no default endpoint.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// doRequest performs an HTTP request and returns the response body.
// On 2xx, returns the body. On any other status, returns a
// *RequestError with the server's message/error field when the body
// is JSON, or an empty message (normalized to the generic string at
// display time) when it is not.
func (c *Client) doRequest(ctx context.Context, method, path string, auth AuthContext, requestBody any, query url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("api: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}

	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("X-Request-Id", uuid.NewString())
	if auth.AccessToken != "" {
		request.Header.Set("Authorization", "Bearer "+auth.AccessToken)
	}
	if auth.EnvironmentID != "" {
		request.Header.Set("X-Environment-Id", auth.EnvironmentID)
	}
	if auth.Environment != "" {
		request.Header.Set("X-Environment", auth.Environment)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("api: reading %s %s response: %w", method, path, err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	requestErr := &RequestError{StatusCode: response.StatusCode}

	// Error bodies are JSON with a "message" or "error" field when the
	// backend produced them, and HTML when a proxy in between did. Only
	// the former contributes user-facing text; the raw body goes to the
	// log either way.
	var errorBody struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if jsonErr := json.Unmarshal(responseBody, &errorBody); jsonErr == nil {
		if errorBody.Message != "" {
			requestErr.Message = errorBody.Message
		} else if errorBody.Error != "" {
			requestErr.Message = errorBody.Error
		}
	}

	c.logger.Debug("request failed",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"body", truncateForLog(responseBody),
	)

	return nil, requestErr
}

// get decodes a 2xx JSON response into out.
func (c *Client) get(ctx context.Context, path string, auth AuthContext, query url.Values, out any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, auth, nil, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("api: parsing %s response: %w", path, err)
	}
	return nil
}

// truncateForLog keeps log records bounded when a proxy returns a
// large HTML error page.
func truncateForLog(body []byte) string {
	const limit = 512
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
