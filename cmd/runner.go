package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/khinvi/spotify-apple-music-converter/internal/match"
	"github.com/khinvi/spotify-apple-music-converter/internal/repositories"
	"github.com/khinvi/spotify-apple-music-converter/internal/services"
	"github.com/khinvi/spotify-apple-music-converter/internal/shared"
	"github.com/khinvi/spotify-apple-music-converter/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	spotify   *services.SpotifyService
	apple     *services.AppleMusicService
	converter *tasks.Converter
	logger    *log.Logger
	output    io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Spotify *services.SpotifyService
	Apple   *services.AppleMusicService
	Logger  *log.Logger
	Output  io.Writer
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

	var converter *tasks.Converter
	if opts.Spotify != nil && opts.Apple != nil {
		matcher := match.NewMatcher(opts.Apple, opts.Logger)
		converter = tasks.NewConverter(opts.Spotify, matcher, opts.Apple, opts.Logger)
	}

	return &Runner{
		config:    opts.Config,
		spotify:   opts.Spotify,
		apple:     opts.Apple,
		converter: converter,
		logger:    opts.Logger,
		output:    opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, spotifyCommand, appleCommand, convertCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireSpotify returns the Spotify service or an error when credentials were
// not configured.
func (r *Runner) requireSpotify() (*services.SpotifyService, error) {
	if r.spotify == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized (set credentials.spotify in config.toml)", shared.ErrServiceUnavailable)
	}
	return r.spotify, nil
}

// requireApple returns the Apple Music service or an error when credentials
// were not configured.
func (r *Runner) requireApple() (*services.AppleMusicService, error) {
	if r.apple == nil {
		return nil, fmt.Errorf("%w: Apple Music service not initialized (set credentials.apple in config.toml)", shared.ErrServiceUnavailable)
	}
	return r.apple, nil
}

// openDatabase opens the configured SQLite database and runs pending migrations.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// restoreSpotifyToken installs the stored Spotify token on the service, when
// one exists.
func (r *Runner) restoreSpotifyToken(db *sql.DB) error {
	token, err := repositories.NewTokenRepository(db).Get("spotify")
	if err != nil {
		return err
	}
	r.spotify.SetToken(token)
	return nil
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
