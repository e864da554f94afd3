// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for authentication attempts.
var (
	// ErrStateMismatch means the callback's state did not match the
	// attempt's nonce. Never treated as success.
	ErrStateMismatch = errors.New("state mismatch")

	// ErrMissingField means the callback lacked a field required by the
	// active flow (code, or access token).
	ErrMissingField = errors.New("missing required callback field")

	// ErrBindFailed means the loopback port could not be bound. Fatal for
	// the attempt; never retried automatically.
	ErrBindFailed = errors.New("binding callback listener")

	// ErrChannelClosed means the listener exited without producing a
	// result.
	ErrChannelClosed = errors.New("callback listener closed without result")
)

// DeniedError carries the provider-reported authorization error.
type DeniedError struct {
	Reason      string
	Description string
}

func (e *DeniedError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authorization denied: %s (%s)", e.Reason, e.Description)
	}
	return "authorization denied: " + e.Reason
}

// ExchangeError is a failed code-for-token exchange. The exchange is never
// retried: authorization codes are single use.
type ExchangeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("token exchange failed (HTTP %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }
