// package services defines interface Library for talking to the Spotify Web API
package services

import (
	"context"

	"github.com/jumbler/jumbler/internal/models"
)

// Library is the surface the shuffle pipeline depends on. Implemented by
// [SpotifyService]; tests substitute fakes.
type Library interface {
	// UserProfile retrieves the authenticated user's profile.
	UserProfile(ctx context.Context) (*models.User, error)

	// UserPlaylists retrieves every playlist owned or followed by the
	// authenticated user, following pagination to the end.
	UserPlaylists(ctx context.Context) ([]models.Playlist, error)

	// Playlist retrieves a playlist with its complete track listing.
	// Accepts a bare ID or a share URL.
	Playlist(ctx context.Context, idOrURL string) (*models.Playlist, error)

	// CreatePlaylist creates an empty playlist for the given user.
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error)

	// ReplaceTracks clears a playlist and repopulates it with the given
	// URIs in order.
	ReplaceTracks(ctx context.Context, playlistID string, uris []string) error
}
