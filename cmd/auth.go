package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jumbler/jumbler/internal/auth"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the authorization flow: stored refresh token first, then
// the interactive browser flow with the loopback listener.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)
	persist := !cmd.Bool("no-refresh")

	token, err := r.authorize(ctx, config, persist)
	if err != nil {
		return err
	}

	library := r.library
	if library == nil {
		library = r.newLibrary(token.AccessToken)
	}

	user, err := library.UserProfile(ctx)
	if err != nil {
		r.logger.Warnf("authorized, but could not fetch profile: %v", err)
		return r.writePlain("✓ Authorization successful\n")
	}

	name := user.DisplayName
	if name == "" {
		name = user.ID
	}
	r.writePlain("✓ Authorized as %s\n", name)

	if persist && token.RefreshToken != "" {
		store := auth.NewRefreshStore(config.Auth.RefreshFile)
		r.writePlain("Refresh token stored at %s\n", store.Path())
	}

	return nil
}

// AuthStatus reports whether a stored refresh token exists.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)
	store := auth.NewRefreshStore(config.Auth.RefreshFile)

	if !store.Exists() {
		return r.writePlain("✗ Not logged in (no refresh token at %s)\n", store.Path())
	}

	r.writePlain("✓ Refresh token present at %s\n", store.Path())
	r.writePlain("Client ID: %s\n", config.Credentials.Spotify.ClientID)
	r.writePlain("Scopes: %s\n", config.Credentials.Spotify.Scopes)
	return nil
}

// AuthLogout deletes the stored refresh token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)
	store := auth.NewRefreshStore(config.Auth.RefreshFile)

	if err := os.Remove(store.Path()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r.writePlain("Nothing to remove at %s\n", store.Path())
		}
		return fmt.Errorf("failed to remove refresh token: %w", err)
	}

	r.logger.Info("refresh token removed", "path", store.Path())
	return r.writePlain("✓ Logged out\n")
}
