// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fldc/twitch-indicator/pkg/twitch"
)

// exchangeClient trades an authorization code for a token at the
// provider's token endpoint. Twitch returns scope as a JSON array, which
// rules out the stock oauth2 exchange, so the POST is issued directly.
type exchangeClient struct {
	tokenURL    string
	clientID    string
	redirectURI string
	httpClient  *http.Client
}

func newExchangeClient(tokenURL, clientID, redirectURI string) *exchangeClient {
	return &exchangeClient{
		tokenURL:    tokenURL,
		clientID:    clientID,
		redirectURI: redirectURI,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// exchange performs one form-encoded POST. A non-success status is a hard
// failure carrying the response body. Never retried here: the code is
// single use, so blind retries are unsafe.
func (e *exchangeClient) exchange(ctx context.Context, code string) (*twitch.TokenResponse, error) {
	formData := url.Values{}
	formData.Set("client_id", e.clientID)
	formData.Set("code", code)
	formData.Set("grant_type", "authorization_code")
	formData.Set("redirect_uri", e.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.tokenURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("sending request to %s: %w", e.tokenURL, err)}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var token struct {
		twitch.TokenResponse
		IDToken string `json:"id_token"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("parsing response: %w", err)}
	}

	if token.IDToken != "" {
		logIdentity(token.IDToken)
	}

	return &token.TokenResponse, nil
}
