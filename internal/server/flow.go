package server

import (
	"context"
	"fmt"
	"html"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jumbler/jumbler/internal/auth"
	"github.com/jumbler/jumbler/internal/shared"
)

// FlowExchanger is what the flow handler needs from the auth layer: the
// two token grants plus the ability to build the remote authorize URL for
// a code challenge.
type FlowExchanger interface {
	auth.Exchanger
	AuthCodeURL(challenge string) string
}

// FlowResult contains the outcome of an interactive authorization flow.
type FlowResult struct {
	Token *auth.TokenSet
	err   error
}

func (r *FlowResult) Error() error {
	return r.err
}

// FlowHandler drives the redirect and callback legs of the PKCE flow.
// Implements the [Handler] interface for registration with a [Router].
//
// A visit to "/" generates a fresh verifier/challenge pair and redirects
// the browser to the remote authorization endpoint. The callback either
// exchanges the returned code using the stored verifier or serves a retry
// page, leaving the listener available for another attempt. The result is
// delivered through a one-shot channel, so the flow resolves exactly once
// no matter how the callback and the deadline race.
type FlowHandler struct {
	exchanger  FlowExchanger
	store      auth.Store
	persist    bool
	logger     *log.Logger
	resultChan chan FlowResult
	once       sync.Once

	mu       sync.Mutex
	verifier string
}

// NewFlowHandler creates a flow handler. When persist is true, refresh
// tokens returned by a successful exchange are written to the store;
// write failures are logged and swallowed.
func NewFlowHandler(exchanger FlowExchanger, store auth.Store, persist bool, logger *log.Logger) *FlowHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &FlowHandler{
		exchanger:  exchanger,
		store:      store,
		persist:    persist,
		logger:     logger,
		resultChan: make(chan FlowResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves. The root pattern
// catches every path; the handler 404s anything it does not recognize.
func (h *FlowHandler) Routes() []string {
	return []string{"/"}
}

// ServeHTTP dispatches the two meaningful paths and 404s the rest.
func (h *FlowHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		h.handleStart(w, r)
	case "/callback":
		h.handleCallback(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleStart generates a fresh PKCE pair and redirects the browser to
// the remote authorization endpoint. A revisit overwrites the previous
// verifier: it is the same human retrying, so the last verifier wins.
func (h *FlowHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	challenge, err := auth.NewChallenge()
	if err != nil {
		h.logger.Errorf("failed to generate code challenge: %v", err)
		http.Error(w, "Failed to generate code challenge", http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	h.verifier = challenge.Verifier
	h.mu.Unlock()

	http.Redirect(w, r, h.exchanger.AuthCodeURL(challenge.Challenge), http.StatusFound)
}

// handleCallback validates the callback, exchanges the authorization code
// for tokens, and delivers the outcome.
func (h *FlowHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	verifier := h.verifier
	h.mu.Unlock()

	w.Header().Set("Content-Type", "text/html")

	if verifier == "" {
		fmt.Fprint(w, mustAuthorizePage)
		return
	}

	query := r.URL.Query()
	code := query.Get("code")
	if errParam := query.Get("error"); errParam != "" || code == "" {
		if errParam == "" {
			errParam = "no authorization code"
		}
		h.logger.Warnf("authorization callback failed: %s", errParam)
		fmt.Fprintf(w, retryPage, html.EscapeString(errParam))
		return
	}

	// The success page goes out before the exchange so the tab can close;
	// the deadline stays armed until the exchange actually settles.
	fmt.Fprint(w, successPage)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	h.logger.Info("received authorization code, exchanging for tokens")
	token, err := h.exchanger.Exchange(context.Background(), code, verifier)
	if err != nil {
		h.Send(FlowResult{err: fmt.Errorf("token exchange failed: %w", err)})
		return
	}

	if h.persist && token.RefreshToken != "" {
		if err := h.store.Write(token.RefreshToken); err != nil {
			h.logger.Warnf("failed to save refresh token: %v", err)
		}
	}

	h.Send(FlowResult{Token: token})
}

// Send delivers the flow result through the channel (only once).
func (h *FlowHandler) Send(result FlowResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *FlowHandler) Result() <-chan FlowResult {
	return h.resultChan
}

// FlowServerOpts contains configuration for creating a [FlowServer].
type FlowServerOpts struct {
	Handler     *FlowHandler
	Host        string
	Port        int
	Timeout     time.Duration            // defaults to 2 minutes
	Logger      *log.Logger              // defaults to stderr
	Output      io.Writer                // user-facing messages, defaults to stdout
	OpenBrowser func(url string) error   // nil disables browser opening
}

// FlowServer binds the loopback listener, runs the [FlowHandler] on it,
// and waits for the flow to settle. Implements auth.InteractiveFlow.
type FlowServer struct {
	handler     *FlowHandler
	host        string
	port        int
	timeout     time.Duration
	logger      *log.Logger
	output      io.Writer
	openBrowser func(url string) error

	mu  sync.Mutex
	url string
}

// NewFlowServer creates a FlowServer from the given options.
func NewFlowServer(opts FlowServerOpts) *FlowServer {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &FlowServer{
		handler:     opts.Handler,
		host:        opts.Host,
		port:        opts.Port,
		timeout:     opts.Timeout,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: opts.OpenBrowser,
	}
}

// URL returns the local authorization URL once the listener is bound,
// empty before that.
func (s *FlowServer) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Run binds the listener and blocks until the flow resolves, the deadline
// fires, or the context is cancelled. First to settle wins: a late
// exchange result lands in the handler's buffered channel and is
// discarded with the listener already closed.
func (s *FlowServer) Run(ctx context.Context) (*auth.TokenSet, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.host, s.port))
	if err != nil {
		return nil, fmt.Errorf("failed to bind loopback listener: %w", err)
	}

	router := NewBasicRouter()
	router.Use(requestLog(s.logger))
	router.Handler(s.handler)
	httpServer := &http.Server{Handler: router}

	serverErrors := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	localURL := fmt.Sprintf("http://localhost:%d", ln.Addr().(*net.TCPAddr).Port)
	s.mu.Lock()
	s.url = localURL
	s.mu.Unlock()

	s.logger.Infof("authorization listener started at %s", ln.Addr())
	fmt.Fprintf(s.output, "→ Please go to %s to authorize with Spotify\n", localURL)
	if s.openBrowser != nil {
		if err := s.openBrowser(localURL); err != nil {
			s.logger.Warnf("failed to open browser automatically: %v", err)
			fmt.Fprintf(s.output, "⚠ Could not open browser automatically, open the URL above yourself.\n")
		}
	}

	deadline := time.NewTimer(s.timeout)
	defer deadline.Stop()

	var result FlowResult
	select {
	case result = <-s.handler.Result():
		// Flow settled; shut the listener down below.
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-deadline.C:
		s.shutdown(httpServer)
		return nil, fmt.Errorf("%w after %s", shared.ErrTimeout, s.timeout)
	case <-ctx.Done():
		s.shutdown(httpServer)
		return nil, ctx.Err()
	}

	s.shutdown(httpServer)

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

func requestLog(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("request", "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}

func (s *FlowServer) shutdown(httpServer *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnf("error shutting down listener: %v", err)
	}
}
