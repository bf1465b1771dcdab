package auth

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jumbler/jumbler/internal/shared"
)

// InteractiveFlow runs the browser-based leg of the authorization: an
// ephemeral loopback listener that sequences the redirect, the callback,
// and the code exchange. Implemented by server.FlowServer.
type InteractiveFlow interface {
	Run(ctx context.Context) (*TokenSet, error)
}

// Authorizer is the public entry point for obtaining a usable token set.
//
// It tries the persisted refresh credential first and falls back to the
// interactive flow on absence or any refresh failure. The stale credential
// is deliberately left in place on failure so a transient outage does not
// force repeated logins.
type Authorizer struct {
	store     Store
	exchanger Exchanger
	flow      InteractiveFlow
	persist   bool
	logger    *log.Logger
}

// AuthorizerOpts contains configuration for creating an [Authorizer].
type AuthorizerOpts struct {
	Store     Store
	Exchanger Exchanger
	Flow      InteractiveFlow
	Persist   bool // save refresh tokens returned by successful exchanges
	Logger    *log.Logger
}

// NewAuthorizer creates an Authorizer from the given collaborators.
func NewAuthorizer(opts AuthorizerOpts) *Authorizer {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Authorizer{
		store:     opts.Store,
		exchanger: opts.Exchanger,
		flow:      opts.Flow,
		persist:   opts.Persist,
		logger:    opts.Logger,
	}
}

// Authorize returns a token set, refreshing silently when possible and
// running the interactive flow otherwise. Interactive failures (timeout,
// denial, exchange error) are fatal to the caller.
func (a *Authorizer) Authorize(ctx context.Context) (*TokenSet, error) {
	if a.store.Exists() {
		a.logger.Info("authorizing with stored refresh token")
		token, err := a.refresh(ctx)
		if err == nil {
			return token, nil
		}
		a.logger.Warnf("refresh authorization failed, falling back to interactive flow: %v", err)
	}

	if a.flow == nil {
		return nil, fmt.Errorf("%w: no interactive flow configured", shared.ErrAuthFailed)
	}

	return a.flow.Run(ctx)
}

// refresh reads the stored credential and performs the refresh grant,
// persisting a rotated refresh token when the server returns one.
func (a *Authorizer) refresh(ctx context.Context) (*TokenSet, error) {
	refreshToken, err := a.store.Read()
	if err != nil {
		return nil, err
	}

	token, err := a.exchanger.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if a.persist && token.RefreshToken != "" {
		if err := a.store.Write(token.RefreshToken); err != nil {
			a.logger.Warnf("failed to save refresh token: %v", err)
		}
	}

	return token, nil
}
