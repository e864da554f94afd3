// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

// Package twitch implements a typed client for the Helix REST API with
// bearer authentication, cursor pagination and a typed error taxonomy.
package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultAPIBase is the production Helix endpoint.
	DefaultAPIBase = "https://api.twitch.tv/helix"
	// DefaultValidateURL is the token validation endpoint.
	DefaultValidateURL = "https://id.twitch.tv/oauth2/validate"

	// pageSize is the maximum page size Helix allows.
	pageSize = 100

	// maxPages bounds the cursor loop. The provider stopping to issue
	// cursors is a protocol invariant, not something to rely on
	// unconditionally: a cursor cycle must surface as an error, not a hang.
	maxPages = 100
)

// Client talks to the Helix API. All requests carry the Client-ID header
// and a bearer token read from the shared handle.
type Client struct {
	APIBase     string
	ValidateURL string
	HTTPClient  *http.Client

	clientID string
	token    *TokenHandle
}

// NewClient creates a Helix client reading its token from handle.
func NewClient(clientID string, handle *TokenHandle) *Client {
	return &Client{
		APIBase:     DefaultAPIBase,
		ValidateURL: DefaultValidateURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		clientID: clientID,
		token:    handle,
	}
}

// Token exposes the shared token handle.
func (c *Client) Token() *TokenHandle {
	return c.token
}

// GetUser returns the account the current token belongs to.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	env, err := fetchPage[User](ctx, c, "users", nil)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return nil, &DecodeError{Endpoint: "users", Err: fmt.Errorf("no user data returned")}
	}
	return &env.Data[0], nil
}

// GetUsersByIDs looks up users in bulk. An empty id list short-circuits
// to an empty result without a network call.
func (c *Client) GetUsersByIDs(ctx context.Context, ids []string) ([]User, error) {
	if len(ids) == 0 {
		return []User{}, nil
	}
	params := url.Values{}
	for _, id := range ids {
		params.Add("id", id)
	}
	env, err := fetchPage[User](ctx, c, "users", params)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// GetStreamsByUserIDs returns the live streams among the given user ids.
// Offline users simply have no entry in the result.
func (c *Client) GetStreamsByUserIDs(ctx context.Context, userIDs []string) ([]Stream, error) {
	if len(userIDs) == 0 {
		return []Stream{}, nil
	}
	params := url.Values{}
	params.Set("first", strconv.Itoa(pageSize))
	for _, id := range userIDs {
		params.Add("user_id", id)
	}
	env, err := fetchPage[Stream](ctx, c, "streams", params)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// GetFollowedChannels returns every channel the user follows, following
// pagination cursors until the provider stops issuing them.
func (c *Client) GetFollowedChannels(ctx context.Context, userID string) ([]FollowedChannel, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("first", strconv.Itoa(pageSize))
	return fetchAll[FollowedChannel](ctx, c, "channels/followed", params)
}

// GetFollowedStreams returns the live streams among the user's follows,
// across all pages.
func (c *Client) GetFollowedStreams(ctx context.Context, userID string) ([]Stream, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("first", strconv.Itoa(pageSize))
	return fetchAll[Stream](ctx, c, "streams/followed", params)
}

// ValidateToken checks the current token against the id server. The call
// is a pure read; validating twice yields the same result.
func (c *Client) ValidateToken(ctx context.Context) (*TokenValidation, error) {
	token, ok := c.token.Get()
	if !ok {
		return nil, ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ValidateURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validating token: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if err := classifyStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var validation TokenValidation
	if err := json.Unmarshal(body, &validation); err != nil {
		return nil, &DecodeError{Endpoint: "validate", Err: err}
	}

	log.Debug().Str("login", validation.Login).Msg("token validated")
	return &validation, nil
}

// DownloadImage fetches raw image bytes, e.g. a profile avatar or stream
// thumbnail. No authentication headers are attached.
func (c *Client) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading image bytes: %w", err)
	}

	if err := classifyStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// get issues one authenticated request and returns the response body after
// status classification.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	token, ok := c.token.Get()
	if !ok {
		return nil, ErrUnauthenticated
	}

	reqURL := c.APIBase + "/" + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)

	log.Debug().Str("url", reqURL).Msg("api request")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request to %s: %w", reqURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if err := classifyStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// classifyStatus maps response codes onto the client error taxonomy.
func classifyStatus(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &RemoteError{StatusCode: status, Body: string(body)}
	}
}

// fetchPage issues one request and decodes a single envelope.
func fetchPage[T any](ctx context.Context, c *Client, endpoint string, params url.Values) (*envelope[T], error) {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	return &env, nil
}

// fetchAll follows the cursor loop: request, accumulate, repeat with the
// cursor as the after parameter until the envelope carries none. An empty
// cursor is treated the same as an absent one to avoid spinning forever.
func fetchAll[T any](ctx context.Context, c *Client, endpoint string, params url.Values) ([]T, error) {
	var all []T

	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("%w: %s", ErrTooManyPages, endpoint)
		}

		env, err := fetchPage[T](ctx, c, endpoint, params)
		if err != nil {
			return nil, err
		}
		all = append(all, env.Data...)

		cursor := env.cursor()
		if cursor == "" {
			break
		}
		params.Set("after", cursor)
	}

	if all == nil {
		all = []T{}
	}
	return all, nil
}
