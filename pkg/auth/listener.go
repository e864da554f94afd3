// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package auth

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fldc/twitch-indicator/pkg/twitch"
)

// tokenPath is the loopback path the bootstrap page posts the fragment
// token to.
const tokenPath = "/token"

// attemptResult is the single outcome of one authorization attempt.
type attemptResult struct {
	token *twitch.TokenResponse
	err   error
}

// callbackServer is the short-lived TLS listener that intercepts the
// browser redirect. It produces exactly one result: the first definitive
// success or failure fires the result channel and nothing fires it again.
type callbackServer struct {
	server   *http.Server
	listener net.Listener
	port     int

	kind     FlowKind
	nonce    string
	exchange func(code string) (*twitch.TokenResponse, error)

	result chan attemptResult
	once   sync.Once
}

// newCallbackServer binds the fixed loopback port and prepares the TLS
// server. A bind failure is fatal for the attempt and is not retried.
func newCallbackServer(port int, cert tls.Certificate, kind FlowKind, nonce string, exchange func(string) (*twitch.TokenResponse, error)) (*callbackServer, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("%w on port %d: %v", ErrBindFailed, port, err)
	}

	cs := &callbackServer{
		listener: tls.NewListener(listener, &tls.Config{
			Certificates: []tls.Certificate{cert},
		}),
		port:     port,
		kind:     kind,
		nonce:    nonce,
		exchange: exchange,
		result:   make(chan attemptResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", cs.handleRoot)
	mux.HandleFunc(tokenPath, cs.handleTokenPost)

	cs.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		// Failed TLS handshakes (port scanners, browser preflights) end up
		// here; the accept loop keeps running.
		ErrorLog: stdlog.New(serveLogWriter{}, "", 0),
	}

	return cs, nil
}

// start runs the accept loop in the background. If the server exits
// without a result the channel is closed so the waiter unblocks.
func (cs *callbackServer) start() {
	go func() {
		if err := cs.server.Serve(cs.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Debug().Err(err).Msg("callback server exited")
		}
		cs.once.Do(func() { close(cs.result) })
	}()
}

// redirectURL returns the redirect URI registered with the provider.
func (cs *callbackServer) redirectURL() string {
	return fmt.Sprintf("https://localhost:%d", cs.port)
}

// wait blocks until the attempt resolves or ctx is canceled. There is no
// built-in timeout: bounding the wait is the caller's concern.
func (cs *callbackServer) wait(ctx context.Context) (*twitch.TokenResponse, error) {
	select {
	case res, ok := <-cs.result:
		if !ok {
			return nil, ErrChannelClosed
		}
		return res.token, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// shutdown stops the accept loop.
func (cs *callbackServer) shutdown(ctx context.Context) error {
	return cs.server.Shutdown(ctx)
}

// deliver resolves the attempt. Only the first call has any effect.
func (cs *callbackServer) deliver(token *twitch.TokenResponse, err error) {
	cs.once.Do(func() {
		cs.result <- attemptResult{token: token, err: err}
	})
}

// handleRoot serves the redirect target. A query string carrying an
// authorization result is the code-flow (or denied) path; a bare GET in
// the implicit flow serves the bootstrap page so the browser can read the
// fragment. Anything else is ignored and the listener keeps waiting.
func (cs *callbackServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	actionable := q.Get("code") != "" || q.Get("error") != "" || q.Get("state") != ""

	if !actionable {
		if cs.kind == FlowImplicit {
			page, err := renderBootstrapPage(cs.nonce)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			writeHTML(w, http.StatusOK, page)
			return
		}
		// Code flow with nothing actionable: no result yet.
		http.NotFound(w, r)
		return
	}

	payload := payloadFromQuery(q)
	log.Debug().Str("path", r.URL.Path).Msg("received authorization callback")

	if payload.Error != "" || (cs.kind == FlowCode && payload.Code == "") {
		writeHTML(w, http.StatusBadRequest, renderErrorPage(payload.Error, payload.ErrorDescription))
	} else {
		writeHTML(w, http.StatusOK, []byte(successPage))
	}

	if err := payload.Validate(FlowCode, cs.nonce); err != nil {
		cs.deliver(nil, err)
		return
	}

	token, err := cs.exchange(payload.Code)
	if err != nil {
		cs.deliver(nil, err)
		return
	}
	cs.deliver(token, nil)
}

// handleTokenPost receives the fragment token posted by the bootstrap
// page. The body is JSON, delimited by Content-Length, and is the
// attempt's definitive result.
func (cs *callbackServer) handleTokenPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var body struct {
		AccessToken string   `json:"access_token"`
		TokenType   string   `json:"token_type"`
		Scope       []string `json:"scope"`
		State       string   `json:"state"`
		IDToken     string   `json:"id_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		cs.deliver(nil, fmt.Errorf("decoding token post: %w", err))
		return
	}

	payload := CallbackPayload{
		AccessToken: body.AccessToken,
		TokenType:   body.TokenType,
		Scope:       body.Scope,
		State:       body.State,
		IDToken:     body.IDToken,
	}
	if err := payload.Validate(FlowImplicit, cs.nonce); err != nil {
		http.Error(w, "invalid token post", http.StatusForbidden)
		cs.deliver(nil, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK")) //nolint:errcheck

	if payload.IDToken != "" {
		logIdentity(payload.IDToken)
	}

	cs.deliver(&twitch.TokenResponse{
		AccessToken: payload.AccessToken,
		TokenType:   payload.TokenType,
		Scope:       payload.Scope,
	}, nil)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body) //nolint:errcheck
}

// serveLogWriter routes net/http server noise to the structured logger.
type serveLogWriter struct{}

func (serveLogWriter) Write(p []byte) (int, error) {
	log.Warn().Msg(strings.TrimSpace(string(p)))
	return len(p), nil
}
