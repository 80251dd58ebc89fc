package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/session"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	httpClient *http.Client
	routes     auth.Routes

	db      *sql.DB
	kv      session.KV
	jar     *session.Jar
	api     *services.APIService
	backend services.Backend
	session *session.Context
}

// RunnerOpts contains configuration options for creating a Runner.
//
// KV and Backend are normally built by [Runner.Open] from the config; tests inject them.
type RunnerOpts struct {
	Config     *shared.Config
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	HTTPClient *http.Client
	KV         session.KV
	Backend    services.Backend
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
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	return &Runner{
		config:     opts.Config,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		httpClient: opts.HTTPClient,
		routes:     auth.DefaultRoutes(),
		kv:         opts.KV,
		backend:    opts.Backend,
	}
}

// Before opens the profile and backend clients for every command except setup.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if args := cmd.Args(); args.Len() > 0 && args.First() == "setup" {
		return ctx, nil
	}
	return ctx, r.Open()
}

// Open builds the session context, cookie jar and backend client. It is safe to call more than once.
//
// When the profile database cannot be opened, an in-memory store is used and nothing survives the process.
func (r *Runner) Open() error {
	if r.session != nil {
		return nil
	}

	if r.kv == nil {
		db, err := shared.OpenProfile(r.config.Profile)
		if err != nil {
			r.logger.Warn("profile database unavailable, session will not persist", "path", r.config.Profile.Path, "error", err)
			r.kv = session.NewMemoryKV()
		} else {
			r.db = db
			r.kv = repositories.NewKVRepository(db)
		}
	}

	jar, err := session.NewJar(r.kv, r.config.Backend.BaseURL, r.logger)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	r.jar = jar

	r.api = services.NewAPIService(
		r.config.Backend.BaseURL,
		r.httpClient,
		services.WithCookieJar(jar),
		services.WithRateLimit(r.config.Backend.RateLimit),
	)
	if r.backend == nil {
		r.backend = services.NewMovieService(r.api)
	}
	r.session = session.NewContext(session.NewStore(r.kv, r.logger))

	r.logger.Debug("runner ready", "backend", r.api.BaseURL(), "role", r.session.Current().Role)
	return nil
}

// Close releases the profile database.
func (r *Runner) Close() {
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.logger.Warn("failed to close profile database", "error", err)
		}
		r.db = nil
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, tuiCommand,
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
