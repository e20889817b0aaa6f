// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// outputFlags returns fresh --json and --pretty flags. Flags hold parse state, so commands never share them.
func outputFlags(extra ...cli.Flag) []cli.Flag {
	return append(extra,
		&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
	)
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Create config.toml and optionally import Discogs credentials",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "user-id",
						Usage: "Discogs username",
					},
					&cli.StringFlag{
						Name:  "token",
						Usage: "Discogs personal access token",
					},
					&cli.StringFlag{
						Name:  "legacy",
						Usage: "Import credentials from a simple_discogs.conf file",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// collectionCommand handles the local mirror of the Discogs collection.
func collectionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "collection",
		Aliases: []string{"col"},
		Usage:   "Mirror and browse the Discogs collection",
		Commands: []*cli.Command{
			{
				Name:   "refresh",
				Usage:  "Rebuild the local mirror from Discogs",
				Flags:  outputFlags(),
				Action: r.CollectionRefresh,
			},
			{
				Name:  "browse",
				Usage: "List releases matching a category value (RANDOM <n>, all, or a column)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "category"},
					&cli.StringArg{Name: "selection"},
				},
				Flags:  outputFlags(),
				Action: r.CollectionBrowse,
			},
			{
				Name:   "categories",
				Usage:  "List browsable categories with their distinct value counts",
				Flags:  outputFlags(),
				Action: r.CollectionCategories,
			},
			{
				Name:  "values",
				Usage: "List the distinct values of a category",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "category"},
				},
				Flags:  outputFlags(),
				Action: r.CollectionValues,
			},
			{
				Name:  "runs",
				Usage: "Show recent refresh runs",
				Flags: outputFlags(
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 10,
					},
				),
				Action: r.CollectionRuns,
			},
			{
				Name:  "covers",
				Usage: "Download cover images for releases matching a category value",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "category"},
					&cli.StringArg{Name: "selection"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: covers_<timestamp>)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent downloads (max 10)",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Downloads per second",
						Value: 2,
					},
				},
				Action: r.CollectionCovers,
			},
		},
	}
}

// releaseCommand handles single-release operations.
func releaseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "release",
		Aliases: []string{"rel"},
		Usage:   "Inspect a mirrored release",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a mirrored release",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     outputFlags(),
				Action:    r.ReleaseShow,
			},
			{
				Name:      "tracks",
				Usage:     "List a release's tracks, importing them from Discogs on first use",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     outputFlags(),
				Action:    r.ReleaseTracks,
			},
			{
				Name:      "videos",
				Usage:     "List a release's videos from Discogs",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     outputFlags(),
				Action:    r.ReleaseVideos,
			},
			{
				Name:      "cover",
				Usage:     "Download a release's cover image",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: cover_<id>.jpg)",
					},
				},
				Action: r.ReleaseCover,
			},
			{
				Name:      "open",
				Usage:     "Open a release on discogs.com",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "print",
						Usage: "Print the URL instead of opening a browser",
					},
				},
				Action: r.ReleaseOpen,
			},
		},
	}
}

// songFlags are the song fields shared by add and query.
func songFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Song title"},
		&cli.StringFlag{Name: "release", Usage: "Release title"},
		&cli.StringFlag{Name: "artist", Usage: "Artist name"},
		&cli.StringFlag{Name: "release-id", Usage: "Discogs release id"},
		&cli.StringFlag{Name: "track", Usage: "Position on the release (A1, 2, ...)"},
	}
}

// songCommand handles the user-curated track store.
func songCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "song",
		Usage: "Manage stored songs",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Store a song",
				Flags: outputFlags(append(songFlags(),
					&cli.StringFlag{Name: "length", Usage: "Length as H:M:S or M:S"},
				)...),
				Action: r.SongAdd,
			},
			{
				Name:      "rm",
				Usage:     "Delete a song",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.SongRemove,
			},
			{
				Name:   "list",
				Usage:  "List stored songs",
				Flags:  outputFlags(),
				Action: r.SongList,
			},
			{
				Name:  "query",
				Usage: "Find songs matching every given filter",
				Flags: outputFlags(append(songFlags(),
					&cli.StringFlag{Name: "id", Usage: "Song id"},
					&cli.StringFlag{Name: "min-length", Usage: "Minimum length (inclusive)"},
					&cli.StringFlag{Name: "max-length", Usage: "Maximum length (inclusive)"},
				)...),
				Action: r.SongQuery,
			},
		},
	}
}

// tapeCommand handles the two-sided tape.
func tapeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tape",
		Usage: "Arrange stored songs on side A and B",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Append a song to a side",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "side"},
					&cli.StringArg{Name: "song-id"},
				},
				Action: r.TapeAdd,
			},
			{
				Name:      "rm",
				Usage:     "Remove an entry from the tape",
				Arguments: []cli.Argument{&cli.StringArg{Name: "entry-id"}},
				Action:    r.TapeRemove,
			},
			{
				Name:  "move",
				Usage: "Move an entry to a side and position",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "entry-id"},
					&cli.StringArg{Name: "side"},
					&cli.StringArg{Name: "position"},
				},
				Action: r.TapeMove,
			},
			{
				Name:   "clear",
				Usage:  "Remove every entry",
				Action: r.TapeClear,
			},
			{
				Name:   "show",
				Usage:  "Show both sides with their totals",
				Flags:  outputFlags(),
				Action: r.TapeShow,
			},
			{
				Name:      "export",
				Usage:     "Write the tape to a .txt, .csv or .md file",
				Arguments: []cli.Argument{&cli.StringArg{Name: "file"}},
				Action:    r.TapeExport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI to browse the collection and build the tape",
		Action:  r.TUI,
	}
}

// serveCommand starts the read-only JSON API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the mirror and tape as a read-only JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.host:server.port from config)",
			},
		},
		Action: r.Serve,
	}
}
