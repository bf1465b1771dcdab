package shared

import "fmt"

var (
	// Authorization errors
	ErrAuthFailed     = fmt.Errorf("authorization rejected")
	ErrTransport      = fmt.Errorf("no response from remote")
	ErrTimeout        = fmt.Errorf("authorization timed out")
	ErrNotFound       = fmt.Errorf("not found")
	ErrNoRefreshToken = fmt.Errorf("no refresh token available")

	// API and service errors
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrIncompleteRead   = fmt.Errorf("playlist read incomplete")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Snapshot errors
	ErrSnapshotNotFound = fmt.Errorf("snapshot not found")
)
