package main

import (
	"context"
	"fmt"

	"github.com/jumbler/jumbler/internal/shared"
	"github.com/jumbler/jumbler/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Shuffle reads a playlist, records a snapshot, permutes the track order,
// and writes it to the source playlist or a newly created one.
func (r *Runner) Shuffle(ctx context.Context, cmd *cli.Command) error {
	idOrURL := cmd.StringArg("playlist")
	if idOrURL == "" {
		return fmt.Errorf("%w: playlist id or url", shared.ErrMissingArgument)
	}

	library, err := r.resolveLibrary(ctx, cmd)
	if err != nil {
		return err
	}

	var recorder tasks.SnapshotRecorder
	if !cmd.Bool("no-snapshot") {
		snapshots, closeDB, err := r.resolveSnapshots(cmd)
		if err != nil {
			// The run can proceed without an undo point.
			r.logger.Warnf("snapshot storage unavailable: %v", err)
		} else {
			defer closeDB()
			recorder = snapshots
		}
	}

	engine := tasks.NewPlaylistEngine(library, recorder, nil, r.logger)

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()

	opts := tasks.RunOpts{
		IDOrURL:     idOrURL,
		Overwrite:   cmd.Bool("overwrite"),
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
		Public:      cmd.Bool("public"),
		NoSnapshot:  cmd.Bool("no-snapshot"),
	}

	result, err := engine.Run(ctx, opts, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlain("✓ Shuffled %s (%d tracks)\n", result.Source.Name, result.Written)
	if result.Target.ID != result.Source.ID {
		r.writePlain("Written to new playlist: %s (%s)\n", result.Target.Name, result.Target.ID)
	} else {
		r.writePlain("Source playlist rewritten in place\n")
	}
	if result.SnapshotID != "" {
		r.writePlain("Snapshot %s records the original order\n", result.SnapshotID)
	}

	return nil
}
