// package tasks implements the playlist shuffle pipeline.
//
// The core abstraction is ShuffleEngine, which reads a playlist, snapshots it,
// permutes the track order, and writes the result back.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jumbler/jumbler/internal/models"
	"github.com/jumbler/jumbler/internal/services"
	"github.com/jumbler/jumbler/internal/shared"
)

// RunOpts configures a single shuffle run.
type RunOpts struct {
	IDOrURL     string // playlist to shuffle, bare ID or share URL
	Overwrite   bool   // write back to the source playlist instead of a new one
	Name        string // target playlist name when not overwriting
	Description string // target playlist description when not overwriting
	Public      bool   // target playlist visibility when not overwriting
	NoSnapshot  bool   // skip recording the pre-shuffle order
}

// ShuffleRunResult contains all data from a completed shuffle run.
type ShuffleRunResult struct {
	User       *models.User     // Authenticated user
	Source     *models.Playlist // Playlist as read, in original order
	Target     *models.Playlist // Playlist the shuffled order was written to
	SnapshotID string           // Recorded snapshot, empty when skipped
	Written    int              // Number of track URIs written
}

// SnapshotRecorder persists the pre-shuffle track order for later restore.
// Implemented by repositories.SnapshotRepository.
type SnapshotRecorder interface {
	Save(ctx context.Context, snapshot *models.Snapshot) (string, error)
}

// ShuffleEngine defines the shuffle pipeline operation.
type ShuffleEngine interface {
	// Run reads the playlist, snapshots it, shuffles the track order, and
	// writes the permutation back per opts.
	Run(ctx context.Context, opts RunOpts, progress chan<- ProgressUpdate) (*ShuffleRunResult, error)
}

// PlaylistEngine implements ShuffleEngine against a [services.Library].
type PlaylistEngine struct {
	library   services.Library
	snapshots SnapshotRecorder
	shuffler  *Shuffler
	logger    *log.Logger
}

// NewPlaylistEngine creates a PlaylistEngine. snapshots may be nil, in which
// case runs behave as if RunOpts.NoSnapshot were always set.
func NewPlaylistEngine(library services.Library, snapshots SnapshotRecorder, shuffler *Shuffler, logger *log.Logger) *PlaylistEngine {
	if shuffler == nil {
		shuffler = NewShuffler()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistEngine{
		library:   library,
		snapshots: snapshots,
		shuffler:  shuffler,
		logger:    logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run executes the full pipeline: profile, read, snapshot, shuffle, write.
func (e *PlaylistEngine) Run(ctx context.Context, opts RunOpts, progress chan<- ProgressUpdate) (*ShuffleRunResult, error) {
	if opts.IDOrURL == "" {
		return nil, fmt.Errorf("%w: playlist id or url", shared.ErrMissingArgument)
	}

	e.sendProgress(progress, fetchProfileUpdate())
	user, err := e.library.UserProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	e.sendProgress(progress, fetchPlaylistUpdate(opts.IDOrURL))
	source, err := e.library.Playlist(ctx, opts.IDOrURL)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}
	e.sendProgress(progress, foundPlaylistUpdate(source))

	result := &ShuffleRunResult{User: user, Source: source}

	if !opts.NoSnapshot && e.snapshots != nil {
		e.sendProgress(progress, takeSnapshotUpdate(source))
		id, err := e.snapshots.Save(ctx, snapshotOf(source))
		if err != nil {
			// A failed snapshot loses the undo point, not the run.
			e.logger.Warnf("failed to record snapshot: %v", err)
		} else {
			result.SnapshotID = id
		}
	}

	uris := source.URIs()
	e.sendProgress(progress, shuffleTracksUpdate(len(uris)))
	shuffled := e.shuffler.Shuffle(uris)

	target := source
	if !opts.Overwrite {
		name := opts.Name
		if name == "" {
			name = source.Name + " (shuffled)"
		}
		e.sendProgress(progress, createTargetUpdate(name))
		target, err = e.library.CreatePlaylist(ctx, user.ID, name, opts.Description, opts.Public)
		if err != nil {
			return nil, fmt.Errorf("failed to create target playlist: %w", err)
		}
	}

	e.sendProgress(progress, writeTracksUpdate(0, len(shuffled)))
	if err := e.library.ReplaceTracks(ctx, target.ID, shuffled); err != nil {
		return nil, fmt.Errorf("failed to write shuffled tracks: %w", err)
	}
	e.sendProgress(progress, writeTracksUpdate(len(shuffled), len(shuffled)))

	result.Target = target
	result.Written = len(shuffled)
	e.logger.Infof("shuffled %s into %s (%d tracks)", source.Name, target.Name, result.Written)
	return result, nil
}

func snapshotOf(playlist *models.Playlist) *models.Snapshot {
	return &models.Snapshot{
		PlaylistID:   playlist.ID,
		PlaylistName: playlist.Name,
		TrackCount:   len(playlist.Tracks),
		Tracks:       playlist.Tracks,
	}
}
