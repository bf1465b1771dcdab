package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jumbler/jumbler/internal/auth"
	"github.com/jumbler/jumbler/internal/models"
	"github.com/jumbler/jumbler/internal/shared"
	tu "github.com/jumbler/jumbler/internal/testing"
	"github.com/urfave/cli/v3"
)

func runCommand(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "jumbler", Commands: runner.register()}
	return app.Run(context.Background(), append([]string{"jumbler"}, args...))
}

func stubAuthorize(token *auth.TokenSet, err error) func(context.Context, *shared.Config, bool) (*auth.TokenSet, error) {
	return func(ctx context.Context, config *shared.Config, persist bool) (*auth.TokenSet, error) {
		return token, err
	}
}

func memoryDB(t *testing.T) func(string) (*sql.DB, error) {
	t.Helper()
	return func(string) (*sql.DB, error) {
		return shared.NewDatabase(":memory:")
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			library := &tu.MockLibrary{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Library:    library,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.library != library {
				t.Error("expected library to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.authorize == nil || runner.newLibrary == nil || runner.openDB == nil {
				t.Error("expected default factories to be set")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("compact", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"k": "v"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := output.String(); got != "{\"k\":\"v\"}\n" {
				t.Errorf("unexpected output %q", got)
			}
		})

		t.Run("pretty", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"k": "v"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "  \"k\": \"v\"") {
				t.Errorf("expected indented output, got %q", output.String())
			}
		})

		t.Run("failed write", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON("x", false); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("writePlain failed write", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := runner.writePlain("hello"); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("Status Without Token", func(t *testing.T) {
		output := &bytes.Buffer{}
		config := shared.DefaultConfig()
		config.Auth.RefreshFile = filepath.Join(t.TempDir(), "refresh")
		runner := NewRunner(RunnerOpts{Config: config, Output: output})

		if err := runCommand(t, runner, "auth", "status"); err != nil {
			t.Fatalf("expected status to succeed, got %v", err)
		}
		if !strings.Contains(output.String(), "Not logged in") {
			t.Errorf("expected not-logged-in message, got %q", output.String())
		}
	})

	t.Run("Status With Token", func(t *testing.T) {
		output := &bytes.Buffer{}
		refreshFile := filepath.Join(t.TempDir(), "refresh")
		if err := os.WriteFile(refreshFile, []byte("rt"), 0600); err != nil {
			t.Fatalf("failed to seed refresh file: %v", err)
		}
		config := shared.DefaultConfig()
		config.Auth.RefreshFile = refreshFile
		runner := NewRunner(RunnerOpts{Config: config, Output: output})

		if err := runCommand(t, runner, "auth", "status"); err != nil {
			t.Fatalf("expected status to succeed, got %v", err)
		}
		if !strings.Contains(output.String(), "Refresh token present") {
			t.Errorf("expected token-present message, got %q", output.String())
		}
	})

	t.Run("Login Greets User", func(t *testing.T) {
		output := &bytes.Buffer{}
		config := shared.DefaultConfig()
		config.Auth.RefreshFile = filepath.Join(t.TempDir(), "refresh")
		runner := NewRunner(RunnerOpts{
			Config:    config,
			Output:    output,
			Library:   &tu.MockLibrary{User: &models.User{ID: "u1", DisplayName: "Alex"}},
			Authorize: stubAuthorize(&auth.TokenSet{AccessToken: "at", RefreshToken: "rt"}, nil),
		})

		if err := runCommand(t, runner, "auth", "login"); err != nil {
			t.Fatalf("expected login to succeed, got %v", err)
		}
		if !strings.Contains(output.String(), "Authorized as Alex") {
			t.Errorf("expected greeting, got %q", output.String())
		}
	})

	t.Run("Login Propagates Authorization Failure", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Output:    &bytes.Buffer{},
			Authorize: stubAuthorize(nil, fmt.Errorf("%w: timed out", shared.ErrTimeout)),
		})

		err := runCommand(t, runner, "auth", "login")
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("Logout Removes Token", func(t *testing.T) {
		output := &bytes.Buffer{}
		refreshFile := filepath.Join(t.TempDir(), "refresh")
		if err := os.WriteFile(refreshFile, []byte("rt"), 0600); err != nil {
			t.Fatalf("failed to seed refresh file: %v", err)
		}
		config := shared.DefaultConfig()
		config.Auth.RefreshFile = refreshFile
		runner := NewRunner(RunnerOpts{Config: config, Output: output})

		if err := runCommand(t, runner, "auth", "logout"); err != nil {
			t.Fatalf("expected logout to succeed, got %v", err)
		}
		if _, err := os.Stat(refreshFile); !errors.Is(err, os.ErrNotExist) {
			t.Error("expected refresh file removed")
		}
	})
}

func TestShuffleCommand(t *testing.T) {
	library := func() *tu.MockLibrary {
		return &tu.MockLibrary{
			User: &models.User{ID: "u1", DisplayName: "Alex"},
			Current: &models.Playlist{
				ID:    "src-id",
				Name:  "Mix",
				Total: 3,
				Tracks: []models.Track{
					{URI: "spotify:track:1", Position: 0},
					{URI: "spotify:track:2", Position: 1},
					{URI: "spotify:track:3", Position: 2},
				},
			},
		}
	}

	t.Run("Overwrite Run", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output:  output,
			Library: library(),
			OpenDB:  memoryDB(t),
		})

		if err := runCommand(t, runner, "shuffle", "src-id", "--overwrite"); err != nil {
			t.Fatalf("expected shuffle to succeed, got %v", err)
		}
		if !strings.Contains(output.String(), "✓ Shuffled Mix (3 tracks)") {
			t.Errorf("expected success message, got %q", output.String())
		}
		if !strings.Contains(output.String(), "rewritten in place") {
			t.Errorf("expected in-place message, got %q", output.String())
		}
	})

	t.Run("New Playlist Run", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output:  output,
			Library: library(),
			OpenDB:  memoryDB(t),
		})

		if err := runCommand(t, runner, "shuffle", "src-id", "--name", "Fresh"); err != nil {
			t.Fatalf("expected shuffle to succeed, got %v", err)
		}
		if !strings.Contains(output.String(), "Written to new playlist: Fresh") {
			t.Errorf("expected new-playlist message, got %q", output.String())
		}
		if !strings.Contains(output.String(), "Snapshot ") {
			t.Errorf("expected snapshot id in output, got %q", output.String())
		}
	})

	t.Run("Missing Argument", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Output:  &bytes.Buffer{},
			Library: library(),
			OpenDB:  memoryDB(t),
		})

		err := runCommand(t, runner, "shuffle")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("JSON Output", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output:  output,
			Library: library(),
			OpenDB:  memoryDB(t),
		})

		if err := runCommand(t, runner, "shuffle", "src-id", "--overwrite", "--no-snapshot", "--json"); err != nil {
			t.Fatalf("expected shuffle to succeed, got %v", err)
		}
		if !strings.Contains(output.String(), "\"source\"") && !strings.Contains(output.String(), "\"Source\"") {
			t.Errorf("expected JSON result, got %q", output.String())
		}
	})
}

func TestPlaylistCommands(t *testing.T) {
	t.Run("List Plain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output: output,
			Library: &tu.MockLibrary{Playlists: []models.Playlist{
				{ID: "p1", Name: "First", Total: 10, Public: true},
				{ID: "p2", Name: "Second", Total: 4},
			}},
		})

		if err := runCommand(t, runner, "playlist", "list"); err != nil {
			t.Fatalf("expected list to succeed, got %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "1. First (10 tracks, public)") || !strings.Contains(out, "2. Second (4 tracks, private)") {
			t.Errorf("unexpected listing: %q", out)
		}
	})

	t.Run("List Empty", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Library: &tu.MockLibrary{}})

		if err := runCommand(t, runner, "playlist", "list"); err != nil {
			t.Fatalf("expected list to succeed, got %v", err)
		}
		if !strings.Contains(output.String(), "No playlists found") {
			t.Errorf("expected empty message, got %q", output.String())
		}
	})

	t.Run("Show Text", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output: output,
			Library: &tu.MockLibrary{Current: &models.Playlist{
				ID: "p1", Name: "Mix", Total: 1,
				Tracks: []models.Track{{URI: "spotify:track:1", Title: "One", Artist: "A"}},
			}},
		})

		if err := runCommand(t, runner, "playlist", "show", "p1"); err != nil {
			t.Fatalf("expected show to succeed, got %v", err)
		}
		if !strings.Contains(output.String(), "Playlist: Mix") || !strings.Contains(output.String(), "1. A - One") {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("Show Unknown Format", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Output:  &bytes.Buffer{},
			Library: &tu.MockLibrary{Current: &models.Playlist{ID: "p1", Name: "Mix"}},
		})

		err := runCommand(t, runner, "playlist", "show", "p1", "--format", "yaml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Show Export Files", func(t *testing.T) {
		output := &bytes.Buffer{}
		base := filepath.Join(t.TempDir(), "mix")
		runner := NewRunner(RunnerOpts{
			Output: output,
			Library: &tu.MockLibrary{Current: &models.Playlist{
				ID: "p1", Name: "Mix",
				Tracks: []models.Track{{URI: "spotify:track:1", Title: "One", Artist: "A"}},
			}},
		})

		if err := runCommand(t, runner, "playlist", "show", "p1", "--output", base); err != nil {
			t.Fatalf("expected export to succeed, got %v", err)
		}
		tu.AssertFileExists(t, base+"_tracks.csv")
		tu.AssertFileExists(t, base+"_metadata.json")
	})
}

func TestSnapshotCommands(t *testing.T) {
	t.Run("List Empty", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, OpenDB: memoryDB(t)})

		if err := runCommand(t, runner, "snapshot", "list"); err != nil {
			t.Fatalf("expected list to succeed, got %v", err)
		}
		if !strings.Contains(output.String(), "No snapshots recorded") {
			t.Errorf("expected empty message, got %q", output.String())
		}
	})

	t.Run("Prune Empty", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, OpenDB: memoryDB(t)})

		if err := runCommand(t, runner, "snapshot", "prune"); err != nil {
			t.Fatalf("expected prune to succeed, got %v", err)
		}
		if !strings.Contains(output.String(), "Nothing to prune") {
			t.Errorf("expected nothing-to-prune message, got %q", output.String())
		}
	})

	t.Run("Restore Requires Selector", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, OpenDB: memoryDB(t)})

		err := runCommand(t, runner, "snapshot", "restore")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Show Missing Snapshot", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, OpenDB: memoryDB(t)})

		err := runCommand(t, runner, "snapshot", "show", "nope")
		if !errors.Is(err, shared.ErrSnapshotNotFound) {
			t.Errorf("expected ErrSnapshotNotFound, got %v", err)
		}
	})
}
