// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// GenericErrorMessage is shown to the operator when the backend
// produced no usable message (non-JSON body, HTML error page, empty
// response). Raw bodies are logged, never displayed.
const GenericErrorMessage = "Something went wrong. Please try again."

// RequestError is a normalized non-2xx response from the backend.
type RequestError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Message is the server-provided "message" or "error" field,
	// verbatim. Empty when the body was not JSON or carried neither
	// field.
	Message string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: request failed with status %d: %s", e.StatusCode, e.Message)
}

// UserMessage returns the text to surface in view state: the server's
// message when present, the generic fallback otherwise.
func (e *RequestError) UserMessage() string {
	if e.Message == "" {
		return GenericErrorMessage
	}
	return e.Message
}

// IsUnauthorized reports whether err is a 401 response — the
// universal forced-logout signal.
func IsUnauthorized(err error) bool {
	var requestErr *RequestError
	if errors.As(err, &requestErr) {
		return requestErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// UserMessage derives the human-readable string for any fetch error.
// Network and parse failures have no server message, so they collapse
// to the generic fallback; the raw error stays in the logs.
func UserMessage(err error) string {
	var requestErr *RequestError
	if errors.As(err, &requestErr) {
		return requestErr.UserMessage()
	}
	return GenericErrorMessage
}
