// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// authFlags are shared by every command that talks to the API.
func authFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:  "client-id",
			Usage: "Spotify application client ID (overrides config)",
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "Loopback listener port for the authorization flow",
		},
		&cli.StringFlag{
			Name:  "redirect-uri",
			Usage: "Registered redirect URI (overrides config)",
		},
		&cli.StringFlag{
			Name:  "refresh-file",
			Usage: "Path to the stored refresh token",
		},
		&cli.BoolFlag{
			Name:  "no-refresh",
			Usage: "Do not persist refresh tokens to disk",
		},
	}
}

// setupCommand initializes the snapshot database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize config file, database, and migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// authCommand handles authorization against Spotify.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize with Spotify",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Run the authorization flow and store a refresh token",
				Flags:  authFlags(),
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show stored credential state",
				Flags:  []cli.Flag{configFlag(), &cli.StringFlag{Name: "refresh-file", Usage: "Path to the stored refresh token"}},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Delete the stored refresh token",
				Flags:  []cli.Flag{configFlag(), &cli.StringFlag{Name: "refresh-file", Usage: "Path to the stored refresh token"}},
				Action: r.AuthLogout,
			},
		},
	}
}

// shuffleCommand runs the full shuffle pipeline.
func shuffleCommand(r *Runner) *cli.Command {
	flags := append(authFlags(),
		&cli.StringFlag{
			Name:  "name",
			Usage: "Name for the shuffled playlist (default: \"<source> (shuffled)\")",
		},
		&cli.StringFlag{
			Name:  "description",
			Usage: "Description for the shuffled playlist",
		},
		&cli.BoolFlag{
			Name:  "public",
			Usage: "Make the shuffled playlist public",
		},
		&cli.BoolFlag{
			Name:  "overwrite",
			Usage: "Write the shuffled order back to the source playlist",
		},
		&cli.BoolFlag{
			Name:  "no-snapshot",
			Usage: "Skip recording the original order",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output run result as JSON",
		},
	)

	return &cli.Command{
		Name:      "shuffle",
		Usage:     "Shuffle a playlist's track order",
		ArgsUsage: "<playlist id or url>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "playlist"},
		},
		Flags:  flags,
		Action: r.Shuffle,
	}
}

// playlistCommand lists and inspects playlists.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your playlists",
				Flags: append(authFlags(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true},
				),
				Action: r.PlaylistList,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist's full track listing",
				ArgsUsage: "<playlist id or url>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
				},
				Flags: append(authFlags(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: text, markdown, csv, json",
						Value: "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Export to {output}_tracks.csv and {output}_metadata.json",
					},
				),
				Action: r.PlaylistShow,
			},
		},
	}
}

// snapshotCommand manages recorded pre-shuffle orders.
func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "snapshot",
		Aliases: []string{"snap"},
		Usage:   "Manage pre-shuffle snapshots",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded snapshots",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "playlist", Usage: "Only snapshots of this playlist"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.SnapshotList,
			},
			{
				Name:      "show",
				Usage:     "Show a snapshot's recorded order",
				ArgsUsage: "<snapshot id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.SnapshotShow,
			},
			{
				Name:      "restore",
				Usage:     "Write a snapshot's order back to its playlist",
				ArgsUsage: "[snapshot id]",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append(authFlags(),
					&cli.StringFlag{Name: "playlist", Usage: "Restore the latest snapshot of this playlist"},
				),
				Action: r.SnapshotRestore,
			},
			{
				Name:  "prune",
				Usage: "Delete old snapshots, keeping the newest per playlist",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "playlist", Usage: "Only prune snapshots of this playlist"},
					&cli.IntFlag{Name: "keep", Usage: "Snapshots to keep per playlist", Value: 5},
				},
				Action: r.SnapshotPrune,
			},
		},
	}
}

// tuiCommand launches the interactive picker.
func tuiCommand(r *Runner) *cli.Command {
	flags := append(authFlags(),
		&cli.BoolFlag{
			Name:  "overwrite",
			Usage: "Write shuffles back to the source playlist",
		},
	)

	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactively pick and shuffle a playlist",
		Flags:  flags,
		Action: r.TUI,
	}
}
