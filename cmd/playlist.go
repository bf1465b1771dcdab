package main

import (
	"context"
	"fmt"

	"github.com/jumbler/jumbler/internal/formatter"
	"github.com/jumbler/jumbler/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistList prints the authenticated user's playlists.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	library, err := r.resolveLibrary(ctx, cmd)
	if err != nil {
		return err
	}

	playlists, err := library.UserPlaylists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists found\n")
	}

	for i, playlist := range playlists {
		visibility := "private"
		if playlist.Public {
			visibility = "public"
		}
		r.writePlain("%d. %s (%d tracks, %s)\n   %s\n", i+1, playlist.Name, playlist.Total, visibility, playlist.ID)
	}

	return nil
}

// PlaylistShow prints one playlist's full track listing in the chosen format.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	idOrURL := cmd.StringArg("playlist")
	if idOrURL == "" {
		return fmt.Errorf("%w: playlist id or url", shared.ErrMissingArgument)
	}

	library, err := r.resolveLibrary(ctx, cmd)
	if err != nil {
		return err
	}

	playlist, err := library.Playlist(ctx, idOrURL)
	if err != nil {
		return err
	}

	if base := cmd.String("output"); base != "" {
		result, err := formatter.WriteExport(playlist, base)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %s\n", result.TracksFile)
		r.writePlain("✓ Exported %s\n", result.MetadataFile)
		return nil
	}

	var data []byte
	switch format := cmd.String("format"); format {
	case "text", "":
		data, err = formatter.ExportToText(playlist)
	case "markdown", "md":
		data, err = formatter.ExportToMarkdown(playlist)
	case "csv":
		data, err = formatter.ExportToCSV(playlist)
	case "json":
		return r.writeJSON(playlist, true)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return err
	}

	return r.writePlain("%s", data)
}
