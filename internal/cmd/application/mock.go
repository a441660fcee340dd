package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/internal/sources"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/executor"
	"github.com/agentstation/tablemerge/pkg/quality"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value.
type Mock struct {
	EngineFunc         func(opts ...tablemerge.Option) (tablemerge.Engine, error)
	OpenFunc           func(ctx context.Context, uri string) (sources.Reader, error)
	DatabaseFunc       func(ctx context.Context) (executor.DB, error)
	QualityOptionsFunc func() []quality.Option
	LoggerFunc         func() *zerolog.Logger
	OutputFormatFunc   func() string
	VersionFunc        func() string
	CommitFunc         func() string
	DateFunc           func() string
	BuiltByFunc        func() string
}

// Engine returns an engine using the mock function or a default engine.
func (m *Mock) Engine(opts ...tablemerge.Option) (tablemerge.Engine, error) {
	if m.EngineFunc != nil {
		return m.EngineFunc(opts...)
	}
	return tablemerge.New(opts...)
}

// Open returns a reader using the mock function or a not found error.
func (m *Mock) Open(ctx context.Context, uri string) (sources.Reader, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, uri)
	}
	return nil, errors.NewNotFoundError("source", uri)
}

// Database returns a handle using the mock function or a config error.
func (m *Mock) Database(ctx context.Context) (executor.DB, error) {
	if m.DatabaseFunc != nil {
		return m.DatabaseFunc(ctx)
	}
	return nil, errors.NewConfigError("database", "no database configured", nil)
}

// QualityOptions returns options using the mock function or none.
func (m *Mock) QualityOptions() []quality.Option {
	if m.QualityOptionsFunc != nil {
		return m.QualityOptionsFunc()
	}
	return nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the format using the mock function or "json".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version returns the version using the mock function or "test".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "test"
}

// Commit returns the commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns the date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns the builder using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ Application = (*Mock)(nil)
