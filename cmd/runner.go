package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundcheck/internal/services"
	"github.com/desertthunder/soundcheck/internal/shared"
	"github.com/desertthunder/soundcheck/internal/storage"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	store      storage.Store
	broker     *services.BrokerClient
	spotify    *services.SpotifyClient
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	// Store replaces the configured SQLite store, mainly for tests.
	Store storage.Store
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
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      opts.Store,
	}
	r.SetConfig(opts.Config)
	return r
}

// SetConfig replaces the configuration and rebuilds the clients that depend on it.
func (r *Runner) SetConfig(config *shared.Config) {
	r.config = config
	r.broker = services.NewBrokerClient(config.Client.BrokerURL, r.httpClient)
	r.spotify = services.NewSpotifyClient(config.Client.APIURL, r.httpClient, r.logger)
}

// SetLogger replaces the logger, e.g. with a file logger while the terminal player owns the screen.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.spotify = services.NewSpotifyClient(r.config.Client.APIURL, r.httpClient, logger)
}

// openStore returns the injected store or opens the configured SQLite database. The returned func releases it.
func (r *Runner) openStore() (storage.Store, func(), error) {
	if r.store != nil {
		return r.store, func() {}, nil
	}

	db, err := storage.OpenSQLite(r.config.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return db, func() {
		if err := db.Close(); err != nil {
			r.logger.Warn("failed to close storage", "error", err)
		}
	}, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, tokenCommand, playlistsCommand, playCommand, recentCommand, prefsCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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
