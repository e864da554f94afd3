// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package auth

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fldc/twitch-indicator/pkg/twitch"
)

// insecureClient trusts the flow's self-signed certificate, as a browser
// user would after clicking through the warning.
func insecureClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		},
		Timeout: 5 * time.Second,
	}
}

type loginResult struct {
	token *twitch.TokenResponse
	err   error
}

// startLogin runs flow.Login in the background and hands back the
// authorization URL the "browser" was pointed at.
func startLogin(t *testing.T, flow *Flow) (authURL string, results <-chan loginResult) {
	t.Helper()

	urls := make(chan string, 1)
	flow.OpenBrowser = func(u string) error {
		urls <- u
		return nil
	}

	ch := make(chan loginResult, 1)
	go func() {
		token, err := flow.Login(context.Background())
		ch <- loginResult{token: token, err: err}
	}()

	select {
	case u := <-urls:
		return u, ch
	case res := <-ch:
		t.Fatalf("login returned before opening browser: %v", res.err)
		return "", nil
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for browser launch")
		return "", nil
	}
}

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestLoginImplicitFlow(t *testing.T) {
	flow := &Flow{ClientID: "test-client", Port: 42801}
	authURL, results := startLogin(t, flow)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "test-client", q.Get("client_id"))
	assert.Equal(t, "token", q.Get("response_type"))
	assert.Equal(t, "https://localhost:42801", q.Get("redirect_uri"))
	assert.Equal(t, "user:read:follows", q.Get("scope"))
	assert.Equal(t, "true", q.Get("force_verify"))
	state := stateFrom(t, authURL)

	client := insecureClient()
	base := "https://localhost:42801"

	// The redirect lands on the bootstrap page; the token lives in the
	// fragment, which never reaches the server.
	resp, err := client.Get(base + "/")
	require.NoError(t, err)
	page, err := io.ReadAll(resp.Body)
	resp.Body.Close() //nolint:errcheck
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), state, "bootstrap page embeds the attempt nonce")

	// The page script posts the fragment contents back.
	body, err := json.Marshal(map[string]any{
		"access_token": "T1",
		"token_type":   "bearer",
		"scope":        []string{"read"},
		"state":        state,
	})
	require.NoError(t, err)

	resp, err = client.Post(base+tokenPath, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	res := <-results
	require.NoError(t, res.err)
	assert.Equal(t, "T1", res.token.AccessToken)
	assert.Equal(t, "bearer", res.token.TokenType)
	assert.Equal(t, []string{"read"}, res.token.Scope)
}

func TestLoginDeniedAuthorization(t *testing.T) {
	flow := &Flow{ClientID: "test-client", Port: 42802}
	authURL, results := startLogin(t, flow)
	state := stateFrom(t, authURL)

	client := insecureClient()
	resp, err := client.Get(fmt.Sprintf(
		"https://localhost:42802/?error=access_denied&state=%s", state))
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close() //nolint:errcheck
	assert.Contains(t, strings.ToLower(string(page)), "failed")

	// The denial resolves the attempt immediately, no further input needed.
	select {
	case res := <-results:
		var denied *DeniedError
		require.ErrorAs(t, res.err, &denied)
		assert.Equal(t, "access_denied", denied.Reason)
	case <-time.After(5 * time.Second):
		t.Fatal("denied authorization did not resolve the attempt")
	}
}

func TestLoginImplicitStateMismatch(t *testing.T) {
	flow := &Flow{ClientID: "test-client", Port: 42803}
	_, results := startLogin(t, flow)

	body, err := json.Marshal(map[string]any{
		"access_token": "T1",
		"token_type":   "bearer",
		"state":        "not-the-nonce",
	})
	require.NoError(t, err)

	client := insecureClient()
	resp, err := client.Post("https://localhost:42803"+tokenPath, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	res := <-results
	require.ErrorIs(t, res.err, ErrStateMismatch)
}

func TestLoginCodeFlow(t *testing.T) {
	tokenEndpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "the-code", r.Form.Get("code"))
		assert.Equal(t, "test-client", r.Form.Get("client_id"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"access_token": "T2",
			"refresh_token": "R2",
			"token_type": "bearer",
			"scope": ["user:read:follows"]
		}`)
	}))
	defer tokenEndpoint.Close()

	flow := &Flow{
		ClientID: "test-client",
		Port:     42804,
		Kind:     FlowCode,
		TokenURL: tokenEndpoint.URL,
	}
	authURL, results := startLogin(t, flow)
	assert.Contains(t, authURL, "response_type=code")
	state := stateFrom(t, authURL)

	client := insecureClient()
	resp, err := client.Get(fmt.Sprintf(
		"https://localhost:42804/?code=the-code&state=%s", state))
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close() //nolint:errcheck
	assert.Contains(t, string(page), "Authorization Successful")

	res := <-results
	require.NoError(t, res.err)
	assert.Equal(t, "T2", res.token.AccessToken)
	assert.Equal(t, "R2", res.token.RefreshToken)
	assert.Equal(t, []string{"user:read:follows"}, res.token.Scope)
}

func TestLoginExchangeFailure(t *testing.T) {
	tokenEndpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "invalid_grant"}`)
	}))
	defer tokenEndpoint.Close()

	flow := &Flow{
		ClientID: "test-client",
		Port:     42805,
		Kind:     FlowCode,
		TokenURL: tokenEndpoint.URL,
	}
	authURL, results := startLogin(t, flow)
	state := stateFrom(t, authURL)

	client := insecureClient()
	resp, err := client.Get(fmt.Sprintf(
		"https://localhost:42805/?code=used-code&state=%s", state))
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck

	res := <-results
	var exchangeErr *ExchangeError
	require.ErrorAs(t, res.err, &exchangeErr)
	assert.Equal(t, http.StatusBadRequest, exchangeErr.StatusCode)
}

func TestLoginContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	flow := &Flow{
		ClientID: "test-client",
		Port:     42806,
		OpenBrowser: func(string) error {
			return nil
		},
	}

	results := make(chan loginResult, 1)
	go func() {
		token, err := flow.Login(ctx)
		results <- loginResult{token: token, err: err}
	}()

	// Nobody completes the browser flow; the caller imposes the bound.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case res := <-results:
		require.ErrorIs(t, res.err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("cancellation did not unblock login")
	}
}

func TestBindFailureIsFatal(t *testing.T) {
	// Occupy the port first.
	blocker, err := net.Listen("tcp", "127.0.0.1:42807")
	require.NoError(t, err)
	defer blocker.Close() //nolint:errcheck

	flow := &Flow{
		ClientID:    "test-client",
		Port:        42807,
		OpenBrowser: func(string) error { return nil },
	}
	_, err = flow.Login(context.Background())
	require.ErrorIs(t, err, ErrBindFailed)
}

func TestListenerClosedWithoutResult(t *testing.T) {
	cert, err := SelfSigned{}.Certificate()
	require.NoError(t, err)

	cs, err := newCallbackServer(42808, cert, FlowImplicit, "nonce", nil)
	require.NoError(t, err)
	cs.start()

	require.NoError(t, cs.shutdown(context.Background()))

	_, err = cs.wait(context.Background())
	require.ErrorIs(t, err, ErrChannelClosed)
}

func TestDeliverFiresExactlyOnce(t *testing.T) {
	cert, err := SelfSigned{}.Certificate()
	require.NoError(t, err)

	cs, err := newCallbackServer(42809, cert, FlowImplicit, "nonce", nil)
	require.NoError(t, err)
	defer cs.shutdown(context.Background()) //nolint:errcheck

	cs.deliver(&twitch.TokenResponse{AccessToken: "first"}, nil)
	cs.deliver(&twitch.TokenResponse{AccessToken: "second"}, nil)
	cs.deliver(nil, fmt.Errorf("late error"))

	token, err := cs.wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", token.AccessToken)
}
