package tasks

import (
	"fmt"

	"github.com/jumbler/jumbler/internal/models"
)

// ProgressUpdate represents a progress event during a shuffle run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchProfile Phase = iota
	FetchPlaylist
	TakeSnapshot
	ShuffleTracks
	CreateTarget
	WriteTracks
)

func (p Phase) String() string {
	switch p {
	case FetchProfile:
		return "fetch_profile"
	case FetchPlaylist:
		return "fetch_playlist"
	case TakeSnapshot:
		return "take_snapshot"
	case ShuffleTracks:
		return "shuffle_tracks"
	case CreateTarget:
		return "create_target"
	case WriteTracks:
		return "write_tracks"
	default:
		return ""
	}
}

func fetchProfileUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchProfile,
		Step:    1,
		Total:   1,
		Message: "Fetching your profile...",
	}
}

func fetchPlaylistUpdate(idOrURL string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reading playlist (%s)...", idOrURL),
	}
}

func foundPlaylistUpdate(playlist *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", playlist.Name, playlist.Total),
		Data:    playlist,
	}
}

func takeSnapshotUpdate(playlist *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TakeSnapshot,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saving snapshot of %s...", playlist.Name),
	}
}

func shuffleTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ShuffleTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Shuffling %d tracks...", count),
	}
}

func createTargetUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateTarget,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %s...", name),
	}
}

func writeTracksUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Writing tracks (%d/%d)...", step, total),
	}
}
