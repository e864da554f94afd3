// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package twitch

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the API client. Callers branch on these with
// errors.Is to drive re-authentication and backoff policy; the client itself
// never retries.
var (
	// ErrUnauthenticated means no access token is configured. The request
	// is never sent.
	ErrUnauthenticated = errors.New("no access token available")

	// ErrUnauthorized is an HTTP 401: the token is expired or revoked and
	// the caller should trigger a fresh authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is an HTTP 429: the caller should defer the next poll,
	// not retry immediately.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrTooManyPages means a paginated endpoint kept issuing cursors past
	// the hard page cap.
	ErrTooManyPages = errors.New("pagination exceeded page limit")
)

// RemoteError is any other non-2xx response, carrying the status and body
// for diagnostics.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("api request failed (%d): %s", e.StatusCode, e.Body)
}

// DecodeError wraps a malformed response body.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
