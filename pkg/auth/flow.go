// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

// Package auth implements browser-based Twitch authorization for a public
// client: a self-signed TLS listener on a fixed loopback port captures the
// redirect and hands the result back to the waiting caller exactly once.
package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/fldc/twitch-indicator/pkg/twitch"
)

const (
	// DefaultAuthURL is the Twitch authorization endpoint.
	DefaultAuthURL = "https://id.twitch.tv/oauth2/authorize"
	// DefaultTokenURL is the Twitch token endpoint used by the code flow.
	DefaultTokenURL = "https://id.twitch.tv/oauth2/token"
	// DefaultRedirectPort is the loopback port registered with the
	// provider; the redirect URI must match it exactly.
	DefaultRedirectPort = 17563
)

// DefaultScopes is the minimal scope set the indicator needs.
var DefaultScopes = []string{"user:read:follows"}

// Flow orchestrates one authorization attempt.
type Flow struct {
	ClientID string
	Scopes   []string
	Port     int
	Kind     FlowKind

	// AuthURL and TokenURL default to the Twitch id endpoints; tests
	// point them elsewhere.
	AuthURL  string
	TokenURL string

	// Certificates provides the ephemeral TLS identity. Defaults to
	// SelfSigned.
	Certificates CertificateProvider

	// OpenBrowser launches the user's browser. Defaults to OpenBrowser.
	OpenBrowser func(url string) error
}

// Login runs the authorization round: generate a fresh nonce, start the
// listener, open the browser and block on the completion channel. There is
// no built-in timeout; cancel ctx to bound the wait.
func (f *Flow) Login(ctx context.Context) (*twitch.TokenResponse, error) {
	f.applyDefaults()

	if f.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}

	// The nonce binds this attempt to its callback. Generated before the
	// browser opens, never reused across attempts.
	nonce := uuid.NewString()

	cert, err := f.Certificates.Certificate()
	if err != nil {
		return nil, fmt.Errorf("generating TLS identity: %w", err)
	}

	var server *callbackServer
	exchange := func(code string) (*twitch.TokenResponse, error) {
		return newExchangeClient(f.TokenURL, f.ClientID, server.redirectURL()).exchange(ctx, code)
	}

	server, err = newCallbackServer(f.Port, cert, f.Kind, nonce, exchange)
	if err != nil {
		return nil, err
	}
	defer server.shutdown(context.Background()) //nolint:errcheck

	server.start()

	authURL := f.authorizeURL(nonce, server.redirectURL())
	log.Info().Str("url", authURL).Msg("opening browser for authorization")

	if err := f.OpenBrowser(authURL); err != nil {
		return nil, fmt.Errorf("opening browser: %w", err)
	}

	return server.wait(ctx)
}

// authorizeURL builds the browser-facing authorization URL. The implicit
// flow overrides response_type; everything else is the standard shape.
func (f *Flow) authorizeURL(nonce, redirectURI string) string {
	conf := &oauth2.Config{
		ClientID:    f.ClientID,
		Endpoint:    oauth2.Endpoint{AuthURL: f.AuthURL, TokenURL: f.TokenURL},
		RedirectURL: redirectURI,
		Scopes:      f.Scopes,
	}

	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("force_verify", "true"),
	}
	if f.Kind == FlowImplicit {
		opts = append(opts, oauth2.SetAuthURLParam("response_type", "token"))
	}

	return conf.AuthCodeURL(nonce, opts...)
}

func (f *Flow) applyDefaults() {
	if f.AuthURL == "" {
		f.AuthURL = DefaultAuthURL
	}
	if f.TokenURL == "" {
		f.TokenURL = DefaultTokenURL
	}
	if f.Port == 0 {
		f.Port = DefaultRedirectPort
	}
	if len(f.Scopes) == 0 {
		f.Scopes = DefaultScopes
	}
	if f.Certificates == nil {
		f.Certificates = SelfSigned{}
	}
	if f.OpenBrowser == nil {
		f.OpenBrowser = OpenBrowser
	}
}
