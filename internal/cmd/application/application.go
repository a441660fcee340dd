// Package application provides the application interface for tablemerge
// commands.
//
// Commands accept an Application rather than the concrete app type so they
// can be tested with Mock:
//
//	mock := &application.Mock{
//	    OpenFunc: func(ctx context.Context, uri string) (sources.Reader, error) {
//	        return fixtures[uri], nil
//	    },
//	}
//	cmd := reconcile.NewMatchCommand(mock)
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/internal/sources"
	"github.com/agentstation/tablemerge/pkg/executor"
	"github.com/agentstation/tablemerge/pkg/quality"
)

// Application provides what commands need from the app.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Engine returns a reconciliation engine built from the configuration.
	// Extra options are applied after the configured ones.
	Engine(opts ...tablemerge.Option) (tablemerge.Engine, error)

	// Open returns a reader for a source URI.
	Open(ctx context.Context, uri string) (sources.Reader, error)

	// Database returns the handle for the configured database URL.
	Database(ctx context.Context) (executor.DB, error)

	// QualityOptions returns the configured quality thresholds.
	QualityOptions() []quality.Option

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, markdown).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
