// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package auth

import (
	"fmt"
	"net/url"
)

// FlowKind selects how the provider returns the authorization result.
type FlowKind int

const (
	// FlowImplicit receives the token in the URL fragment, smuggled back
	// over a local POST by the bootstrap page. Default: needs no secret.
	FlowImplicit FlowKind = iota
	// FlowCode receives an authorization code in the query string and
	// exchanges it at the token endpoint.
	FlowCode
)

// CallbackPayload is the parsed redirect data from one callback, either a
// query-string redirect or the token POST from the bootstrap page. It must
// be validated against the attempt's nonce before being trusted.
type CallbackPayload struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string

	// Implicit-flow fields, taken from the URL fragment by the page script.
	AccessToken string
	TokenType   string
	Scope       []string
	IDToken     string
}

// payloadFromQuery builds a payload from redirect query parameters.
func payloadFromQuery(q url.Values) CallbackPayload {
	return CallbackPayload{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}

// Validate checks the payload against the attempt's nonce. Rules apply in
// order: a provider error always wins, then the state must equal the nonce
// exactly, then the field the active flow requires must be present.
func (p *CallbackPayload) Validate(kind FlowKind, nonce string) error {
	if p.Error != "" {
		return &DeniedError{Reason: p.Error, Description: p.ErrorDescription}
	}

	if p.State != nonce {
		return fmt.Errorf("%w: expected %q, got %q", ErrStateMismatch, nonce, p.State)
	}

	switch kind {
	case FlowCode:
		if p.Code == "" {
			return fmt.Errorf("%w: code", ErrMissingField)
		}
	case FlowImplicit:
		if p.AccessToken == "" {
			return fmt.Errorf("%w: access_token", ErrMissingField)
		}
	}
	return nil
}
