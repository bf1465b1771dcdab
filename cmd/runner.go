package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jumbler/jumbler/internal/auth"
	"github.com/jumbler/jumbler/internal/repositories"
	"github.com/jumbler/jumbler/internal/server"
	"github.com/jumbler/jumbler/internal/services"
	"github.com/jumbler/jumbler/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	logger     *log.Logger
	output     io.Writer
	httpClient *http.Client

	// test seams; production runs leave these nil and get the defaults below
	library    services.Library
	authorize  func(ctx context.Context, config *shared.Config, persist bool) (*auth.TokenSet, error)
	newLibrary func(accessToken string) services.Library
	openDB     func(path string) (*sql.DB, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client
	Library    services.Library
	Authorize  func(ctx context.Context, config *shared.Config, persist bool) (*auth.TokenSet, error)
	OpenDB     func(path string) (*sql.DB, error)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		logger:     opts.Logger,
		output:     opts.Output,
		httpClient: opts.HTTPClient,
		library:    opts.Library,
		authorize:  opts.Authorize,
		openDB:     opts.OpenDB,
	}

	if r.authorize == nil {
		r.authorize = r.doAuthorize
	}
	if r.newLibrary == nil {
		r.newLibrary = func(accessToken string) services.Library {
			return services.NewSpotifyService(accessToken, services.SpotifyServiceOpts{
				HTTPClient: r.httpClient,
				Logger:     r.logger,
			})
		}
	}
	if r.openDB == nil {
		r.openDB = shared.NewDatabase
	}

	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, shuffleCommand, playlistCommand, snapshotCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the Runner's logger, used when a TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// resolveConfig loads configuration for a command invocation: the --config
// path when the file exists, defaults otherwise, with credential and server
// flags overriding the loaded values.
func (r *Runner) resolveConfig(cmd *cli.Command) *shared.Config {
	config := r.config

	if path := cmd.String("config"); path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := shared.LoadConfig(path)
			if err != nil {
				r.logger.Warnf("failed to load config %s, using defaults: %v", path, err)
			} else {
				config = loaded
			}
		}
	}
	if config == nil {
		config = shared.DefaultConfig()
	}

	if clientID := cmd.String("client-id"); clientID != "" {
		config.Credentials.Spotify.ClientID = clientID
	}
	if port := cmd.Int("port"); port != 0 {
		config.Server.Port = int(port)
	}
	if redirectURI := cmd.String("redirect-uri"); redirectURI != "" {
		config.Credentials.Spotify.RedirectURI = redirectURI
	}
	if refreshFile := cmd.String("refresh-file"); refreshFile != "" {
		config.Auth.RefreshFile = refreshFile
	}

	return config
}

// doAuthorize runs the credential resolution order: stored refresh token
// first, interactive browser flow as the fallback.
func (r *Runner) doAuthorize(ctx context.Context, config *shared.Config, persist bool) (*auth.TokenSet, error) {
	if config.Credentials.Spotify.ClientID == "" {
		return nil, fmt.Errorf("%w: Spotify client_id must be set in config.toml or via --client-id", shared.ErrInvalidArgument)
	}

	store := auth.NewRefreshStore(config.Auth.RefreshFile)
	exchanger := auth.NewSpotifyExchanger(
		config.Credentials.Spotify.ClientID,
		config.RedirectURI(),
		config.Credentials.Spotify.Scopes,
	)

	handler := server.NewFlowHandler(exchanger, store, persist, r.logger)
	flow := server.NewFlowServer(server.FlowServerOpts{
		Handler:     handler,
		Host:        config.Server.Host,
		Port:        config.Server.Port,
		Timeout:     config.Auth.Timeout(),
		Logger:      r.logger,
		Output:      r.output,
		OpenBrowser: shared.OpenBrowser,
	})

	authorizer := auth.NewAuthorizer(auth.AuthorizerOpts{
		Store:     store,
		Exchanger: exchanger,
		Flow:      flow,
		Persist:   persist,
		Logger:    r.logger,
	})

	return authorizer.Authorize(ctx)
}

// resolveLibrary authorizes and returns an API client bound to the access token.
func (r *Runner) resolveLibrary(ctx context.Context, cmd *cli.Command) (services.Library, error) {
	if r.library != nil {
		return r.library, nil
	}

	config := r.resolveConfig(cmd)
	persist := !cmd.Bool("no-refresh")
	token, err := r.authorize(ctx, config, persist)
	if err != nil {
		return nil, err
	}

	return r.newLibrary(token.AccessToken), nil
}

// resolveSnapshots opens the snapshot database for the current config.
// The caller owns the returned close function.
func (r *Runner) resolveSnapshots(cmd *cli.Command) (*repositories.SnapshotRepository, func(), error) {
	config := r.resolveConfig(cmd)

	db, err := r.openDB(shared.ExpandPath(config.Database.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewSnapshotRepository(db), func() { db.Close() }, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
