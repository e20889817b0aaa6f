package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database is opened on first use so commands that never touch it (setup config, help) work without one.
type Runner struct {
	config     *shared.Config
	configPath string
	service    services.Service
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db       *sql.DB
	releases *repositories.ReleaseRepository
	songs    *repositories.SongRepository
	tape     *repositories.TapeRepository
	runs     *repositories.RunRepository
	engine   *tasks.MirrorEngine
	catalog  *tasks.Catalog
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Service    services.Service // nil leaves remote commands unavailable
	DB         *sql.DB          // nil opens Config.Database on first use
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
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
		configPath: opts.ConfigPath,
		service:    opts.Service,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if opts.DB != nil {
		r.attach(opts.DB)
	}
	return r
}

// attach builds the repositories and tasks on top of db.
func (r *Runner) attach(db *sql.DB) {
	r.db = db
	r.releases = repositories.NewReleaseRepository(db)
	r.songs = repositories.NewSongRepository(db)
	r.tape = repositories.NewTapeRepository(db)
	r.runs = repositories.NewRunRepository(db)
	r.engine = tasks.NewMirrorEngine(r.service, r.releases, r.runs, r.logger)
	r.catalog = tasks.NewCatalog(r.service, r.releases, r.songs, r.tape, r.httpClient, r.logger)
}

// open opens and migrates the configured database unless one is attached.
func (r *Runner) open() error {
	if r.db != nil {
		return nil
	}

	r.logger.Debug("opening database", "path", r.config.Database.Path)
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	r.attach(db)
	return nil
}

// Close closes the database if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// SetLogger replaces the logger used by the runner and its tasks.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.db != nil {
		r.attach(r.db)
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, collectionCommand, releaseCommand, songCommand, tapeCommand, tuiCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(bytes.TrimRight(output, "\n")); err != nil {
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

// writeTable renders rows under header with [tablewriter].
func (r *Runner) writeTable(header []string, rows [][]string) {
	table := tablewriter.NewWriter(r.output)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetRowLine(false)
	table.AppendBulk(rows)
	table.Render()
}

// watchProgress logs progress updates until stop is called. stop waits for the last update to be logged.
func (r *Runner) watchProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}

// parseID parses a positive numeric id argument.
func parseID(name, value string) (int64, error) {
	if value == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", shared.ErrInvalidArgument, name, value)
	}
	return id, nil
}
