package main

import (
	"context"
	"fmt"

	"github.com/jumbler/jumbler/internal/formatter"
	"github.com/jumbler/jumbler/internal/models"
	"github.com/jumbler/jumbler/internal/shared"
	"github.com/urfave/cli/v3"
)

// SnapshotList prints recorded snapshots, newest first.
func (r *Runner) SnapshotList(ctx context.Context, cmd *cli.Command) error {
	snapshots, closeDB, err := r.resolveSnapshots(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	list, err := snapshots.List(ctx, cmd.String("playlist"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(list, true)
	}

	if len(list) == 0 {
		return r.writePlain("No snapshots recorded\n")
	}

	for _, snapshot := range list {
		r.writePlain("%s  %s  %s (%d tracks)\n",
			snapshot.ID,
			snapshot.TakenAt.Format("2006-01-02 15:04"),
			snapshot.PlaylistName,
			snapshot.TrackCount,
		)
	}

	return nil
}

// SnapshotShow prints one snapshot's recorded track order.
func (r *Runner) SnapshotShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}

	snapshots, closeDB, err := r.resolveSnapshots(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	snapshot, err := snapshots.Get(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshot, true)
	}

	data, err := formatter.SnapshotToText(snapshot)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// SnapshotRestore writes a snapshot's recorded order back to its playlist.
// Accepts an explicit snapshot id, or --playlist to use that playlist's latest.
func (r *Runner) SnapshotRestore(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	playlistID := cmd.String("playlist")
	if id == "" && playlistID == "" {
		return fmt.Errorf("%w: a snapshot id or --playlist", shared.ErrMissingArgument)
	}

	snapshots, closeDB, err := r.resolveSnapshots(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	var snapshot *models.Snapshot
	if id != "" {
		snapshot, err = snapshots.Get(ctx, id)
	} else {
		snapshot, err = snapshots.Latest(ctx, playlistID)
	}
	if err != nil {
		return err
	}

	library, err := r.resolveLibrary(ctx, cmd)
	if err != nil {
		return err
	}

	r.logger.Info("restoring snapshot", "id", snapshot.ID, "playlist", snapshot.PlaylistName, "tracks", snapshot.TrackCount)
	if err := library.ReplaceTracks(ctx, snapshot.PlaylistID, snapshot.URIs()); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}

	r.writePlain("✓ Restored %s to its order from %s (%d tracks)\n",
		snapshot.PlaylistName,
		snapshot.TakenAt.Format("2006-01-02 15:04"),
		snapshot.TrackCount,
	)
	return nil
}

// SnapshotPrune deletes old snapshots, keeping the newest per playlist.
func (r *Runner) SnapshotPrune(ctx context.Context, cmd *cli.Command) error {
	snapshots, closeDB, err := r.resolveSnapshots(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	removed, err := snapshots.Prune(ctx, cmd.String("playlist"), int(cmd.Int("keep")))
	if err != nil {
		return err
	}

	if removed == 0 {
		return r.writePlain("Nothing to prune\n")
	}
	return r.writePlain("✓ Pruned %d snapshot(s)\n", removed)
}
