package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jumbler/jumbler/internal/shared"
	"github.com/jumbler/jumbler/internal/tasks"
	"github.com/jumbler/jumbler/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for picking and shuffling a playlist.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	library, err := r.resolveLibrary(ctx, cmd)
	if err != nil {
		return err
	}

	var recorder tasks.SnapshotRecorder
	snapshots, closeDB, err := r.resolveSnapshots(cmd)
	if err != nil {
		r.logger.Warnf("snapshot storage unavailable: %v", err)
	} else {
		defer closeDB()
		recorder = snapshots
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/jumbler-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine := tasks.NewPlaylistEngine(library, recorder, nil, fileLogger)

	model := ui.NewModel(ctx, library, engine, cmd.Bool("overwrite"))
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
