package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jumbler/jumbler/internal/auth"
	"github.com/jumbler/jumbler/internal/shared"
)

// fakeExchanger is a FlowExchanger test double.
type fakeExchanger struct {
	mu            sync.Mutex
	exchangeCalls int
	token         *auth.TokenSet
	err           error
	gotCode       string
	gotVerifier   string
}

func (f *fakeExchanger) AuthCodeURL(challenge string) string {
	return "https://accounts.example.com/authorize?response_type=code&client_id=test-client" +
		"&scope=playlist-read-private&code_challenge_method=S256&code_challenge=" + challenge +
		"&redirect_uri=http%3A%2F%2Flocalhost%2Fcallback"
}

func (f *fakeExchanger) Exchange(ctx context.Context, code, verifier string) (*auth.TokenSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchangeCalls++
	f.gotCode = code
	f.gotVerifier = verifier
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

func (f *fakeExchanger) Refresh(ctx context.Context, refreshToken string) (*auth.TokenSet, error) {
	return nil, fmt.Errorf("unexpected Refresh call")
}

func (f *fakeExchanger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exchangeCalls
}

// memStore is an in-memory auth.Store.
type memStore struct {
	mu    sync.Mutex
	token string
}

func (s *memStore) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

func (s *memStore) Read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", fmt.Errorf("%w: mem", shared.ErrNotFound)
	}
	return s.token, nil
}

func (s *memStore) Write(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memStore) value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

type flowOutcome struct {
	token *auth.TokenSet
	err   error
}

type flowFixture struct {
	server *FlowServer
	done   chan flowOutcome
	cancel context.CancelFunc
}

// startFlow runs a FlowServer on a random loopback port and waits for it to bind.
func startFlow(t *testing.T, exchanger FlowExchanger, store auth.Store, persist bool, timeout time.Duration) *flowFixture {
	t.Helper()

	handler := NewFlowHandler(exchanger, store, persist, shared.NewLogger(io.Discard))
	srv := NewFlowServer(FlowServerOpts{
		Handler: handler,
		Host:    "127.0.0.1",
		Port:    0,
		Timeout: timeout,
		Logger:  shared.NewLogger(io.Discard),
		Output:  io.Discard,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan flowOutcome, 1)
	go func() {
		token, err := srv.Run(ctx)
		done <- flowOutcome{token: token, err: err}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for srv.URL() == "" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if srv.URL() == "" {
		t.Fatal("listener did not start")
	}

	t.Cleanup(cancel)
	return &flowFixture{server: srv, done: done, cancel: cancel}
}

// noRedirectClient returns an http.Client that does not follow redirects.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func mustGet(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("request to %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, string(body)
}

func TestFlow(t *testing.T) {
	t.Run("Root Redirects With Challenge", func(t *testing.T) {
		f := startFlow(t, &fakeExchanger{}, &memStore{}, false, time.Minute)

		resp, _ := mustGet(t, noRedirectClient(), f.server.URL()+"/")
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("expected 302, got %d", resp.StatusCode)
		}

		location := resp.Header.Get("Location")
		for _, want := range []string{
			"response_type=code",
			"client_id=test-client",
			"code_challenge_method=S256",
			"code_challenge=",
			"redirect_uri=",
			"scope=",
		} {
			if !strings.Contains(location, want) {
				t.Errorf("expected redirect location to contain %q, got %s", want, location)
			}
		}
	})

	t.Run("Callback Before Root", func(t *testing.T) {
		exchanger := &fakeExchanger{}
		f := startFlow(t, exchanger, &memStore{}, false, time.Minute)

		resp, body := mustGet(t, http.DefaultClient, f.server.URL()+"/callback?code=early")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, "must first authorize") {
			t.Errorf("expected authorize-first page, got %q", body)
		}
		if exchanger.calls() != 0 {
			t.Error("expected exchanger not to be reached")
		}
	})

	t.Run("Denied Callback Allows Retry", func(t *testing.T) {
		exchanger := &fakeExchanger{token: &auth.TokenSet{AccessToken: "at", RefreshToken: "rt"}}
		store := &memStore{}
		f := startFlow(t, exchanger, store, true, time.Minute)
		client := noRedirectClient()

		mustGet(t, client, f.server.URL()+"/")

		resp, body := mustGet(t, client, f.server.URL()+"/callback?error=access_denied")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200 retry page, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, "access_denied") {
			t.Errorf("expected error description on retry page, got %q", body)
		}
		if exchanger.calls() != 0 {
			t.Error("expected no exchange after denied callback")
		}

		// Same run, user retries via the link and succeeds.
		mustGet(t, client, f.server.URL()+"/")
		mustGet(t, client, f.server.URL()+"/callback?code=good-code")

		select {
		case outcome := <-f.done:
			if outcome.err != nil {
				t.Fatalf("expected success, got %v", outcome.err)
			}
			if outcome.token.AccessToken != "at" {
				t.Errorf("expected access token 'at', got %s", outcome.token.AccessToken)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("flow did not resolve")
		}

		if exchanger.gotCode != "good-code" {
			t.Errorf("expected exchange with retried code, got %q", exchanger.gotCode)
		}
		if exchanger.gotVerifier == "" {
			t.Error("expected exchange to carry the stored verifier")
		}
		if store.value() != "rt" {
			t.Errorf("expected refresh token persisted, got %q", store.value())
		}
	})

	t.Run("Callback Without Code Keeps Listener", func(t *testing.T) {
		exchanger := &fakeExchanger{}
		f := startFlow(t, exchanger, &memStore{}, false, time.Minute)
		client := noRedirectClient()

		mustGet(t, client, f.server.URL()+"/")
		_, body := mustGet(t, client, f.server.URL()+"/callback")
		if !strings.Contains(body, "try again") {
			t.Errorf("expected retry page, got %q", body)
		}
		if exchanger.calls() != 0 {
			t.Error("expected no exchange without a code")
		}
	})

	t.Run("Persist Opt-Out Skips Store", func(t *testing.T) {
		exchanger := &fakeExchanger{token: &auth.TokenSet{AccessToken: "at", RefreshToken: "rt"}}
		store := &memStore{}
		f := startFlow(t, exchanger, store, false, time.Minute)
		client := noRedirectClient()

		mustGet(t, client, f.server.URL()+"/")
		mustGet(t, client, f.server.URL()+"/callback?code=c")

		select {
		case outcome := <-f.done:
			if outcome.err != nil {
				t.Fatalf("expected success, got %v", outcome.err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("flow did not resolve")
		}

		if store.value() != "" {
			t.Errorf("expected nothing persisted, got %q", store.value())
		}
	})

	t.Run("Exchange Failure Fails Flow", func(t *testing.T) {
		exchanger := &fakeExchanger{err: fmt.Errorf("%w: invalid_grant", shared.ErrAuthFailed)}
		f := startFlow(t, exchanger, &memStore{}, false, time.Minute)
		client := noRedirectClient()

		mustGet(t, client, f.server.URL()+"/")
		mustGet(t, client, f.server.URL()+"/callback?code=bad")

		select {
		case outcome := <-f.done:
			if !errors.Is(outcome.err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", outcome.err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("flow did not resolve")
		}
	})

	t.Run("Timeout Closes Listener", func(t *testing.T) {
		f := startFlow(t, &fakeExchanger{}, &memStore{}, false, 100*time.Millisecond)

		select {
		case outcome := <-f.done:
			if !errors.Is(outcome.err, shared.ErrTimeout) {
				t.Errorf("expected ErrTimeout, got %v", outcome.err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("flow did not time out")
		}

		if _, err := http.Get(f.server.URL() + "/"); err == nil {
			t.Error("expected listener to be closed after timeout")
		}
	})

	t.Run("Unknown Path Is 404", func(t *testing.T) {
		f := startFlow(t, &fakeExchanger{}, &memStore{}, false, time.Minute)

		resp, _ := mustGet(t, http.DefaultClient, f.server.URL()+"/favicon.ico")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})
}

// refreshExchanger stubs only the refresh grant for Authorizer integration tests.
type refreshExchanger struct {
	fakeExchanger
	refreshToken *auth.TokenSet
	refreshErr   error
}

func (r *refreshExchanger) Refresh(ctx context.Context, refreshToken string) (*auth.TokenSet, error) {
	if r.refreshErr != nil {
		return nil, r.refreshErr
	}
	return r.refreshToken, nil
}

func TestAuthorizerWithFlowServer(t *testing.T) {
	t.Run("Successful Refresh Never Binds Listener", func(t *testing.T) {
		// Occupy a port; if the authorizer tried to start the flow server
		// on it, authorization would fail instead of succeeding.
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to reserve port: %v", err)
		}
		defer ln.Close()
		port := ln.Addr().(*net.TCPAddr).Port

		exchanger := &refreshExchanger{refreshToken: &auth.TokenSet{AccessToken: "at"}}
		handler := NewFlowHandler(exchanger, &memStore{token: "rt"}, true, shared.NewLogger(io.Discard))
		flow := NewFlowServer(FlowServerOpts{Handler: handler, Host: "127.0.0.1", Port: port, Timeout: time.Second, Logger: shared.NewLogger(io.Discard), Output: io.Discard})

		authorizer := auth.NewAuthorizer(auth.AuthorizerOpts{
			Store:     &memStore{token: "rt"},
			Exchanger: exchanger,
			Flow:      flow,
			Logger:    shared.NewLogger(io.Discard),
		})

		token, err := authorizer.Authorize(context.Background())
		if err != nil {
			t.Fatalf("expected refresh to succeed without a listener, got %v", err)
		}
		if token.AccessToken != "at" {
			t.Errorf("expected access token 'at', got %s", token.AccessToken)
		}
	})

	t.Run("Failed Refresh Falls Back To Listener", func(t *testing.T) {
		exchanger := &refreshExchanger{refreshErr: fmt.Errorf("%w: invalid_grant", shared.ErrAuthFailed)}
		handler := NewFlowHandler(exchanger, &memStore{token: "rt-stale"}, true, shared.NewLogger(io.Discard))
		flow := NewFlowServer(FlowServerOpts{Handler: handler, Host: "127.0.0.1", Port: 0, Timeout: 150 * time.Millisecond, Logger: shared.NewLogger(io.Discard), Output: io.Discard})

		authorizer := auth.NewAuthorizer(auth.AuthorizerOpts{
			Store:     &memStore{token: "rt-stale"},
			Exchanger: exchanger,
			Flow:      flow,
			Logger:    shared.NewLogger(io.Discard),
		})

		// The listener starts and then times out: proof the interactive
		// path ran after the refresh was rejected.
		_, err := authorizer.Authorize(context.Background())
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout from the interactive flow, got %v", err)
		}
	})
}
