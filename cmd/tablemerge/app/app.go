// Package app provides the application context and dependency management
// for the tablemerge CLI: configuration, logging, the source opener and
// its database pools.
package app

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/internal/cmd/application"
	"github.com/agentstation/tablemerge/internal/sources"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/executor"
	"github.com/agentstation/tablemerge/pkg/quality"
)

// App represents the tablemerge application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	out    io.Writer

	// Opener is created on first use and shared by every command.
	mu     sync.Mutex
	opener *sources.Opener
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		out:     os.Stdout,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Engine builds an engine from the configured policy plus opts.
func (a *App) Engine(opts ...tablemerge.Option) (tablemerge.Engine, error) {
	base, err := a.config.EngineOptions()
	if err != nil {
		return nil, err
	}
	engine, err := tablemerge.New(append(base, opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "engine", "", err)
	}
	return engine, nil
}

// Open returns a reader for a source URI.
func (a *App) Open(ctx context.Context, uri string) (sources.Reader, error) {
	return a.sources().Open(ctx, uri)
}

// Database returns the pool for the configured database URL.
func (a *App) Database(ctx context.Context) (executor.DB, error) {
	if a.config.DatabaseURL == "" {
		return nil, errors.NewConfigError("database", "database_url is not set (TABLEMERGE_DATABASE_URL or DATABASE_URL)", nil)
	}
	pool, err := a.sources().Pool(ctx, a.config.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// QualityOptions returns the configured quality thresholds.
func (a *App) QualityOptions() []quality.Option {
	return a.config.QualityOptions()
}

func (a *App) sources() *sources.Opener {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.opener == nil {
		a.opener = sources.NewOpener(sources.Config{
			DatabaseURL: a.config.DatabaseURL,
			AWSRegion:   a.config.AWSRegion,
			SampleSize:  a.config.SampleSize,
		})
	}
	return a.opener
}

// Shutdown closes database pools opened during the run.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.opener != nil {
		a.opener.Close()
		a.opener = nil
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOutput redirects command output, mainly for tests.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}

// WithOpener sets the source opener, mainly for tests.
func WithOpener(o *sources.Opener) Option {
	return func(a *App) error {
		a.opener = o
		return nil
	}
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)
