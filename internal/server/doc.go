// Package server provides the ephemeral loopback HTTP listener that drives
// the interactive authorization flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Authorization Flow
//
// [FlowHandler] owns the per-session state of the PKCE dance. A request to
// "/" generates a verifier/challenge pair and redirects the browser to the
// remote authorization endpoint; the callback leg validates the returned
// code and exchanges it for tokens using the stored verifier.
//
// The outcome travels through a buffered one-shot channel guarded by
// sync.Once, which enforces the resolve-exactly-once invariant by
// construction: whichever of the callback and the deadline settles first
// wins, and the loser's send is discarded.
//
// [FlowServer] binds the configured loopback port, serves the handler, and
// waits for the flow to settle or the deadline (2 minutes by default) to
// fire. The deadline stays armed through the token-exchange network call;
// only a delivered result disarms it.
//
// # Session State
//
// Only one session's state is meaningful per listener. A second visit to
// "/" mid-flow silently replaces the verifier, and a callback that arrives with an
// error keeps the listener open so the user can follow the retry link.
package server
