package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentstation/tablemerge/pkg/dataset"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/plan"
	"github.com/agentstation/tablemerge/pkg/schema"
)

// Querier is the subset of *pgxpool.Pool used to read tables.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Connect opens a pgx pool and checks that the database answers.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, errors.NewConfigError("postgres", "database_url is not set", nil)
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.NewConfigError("postgres", "invalid database_url", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.WrapResource("connect", "database", "", err)
	}
	return pool, nil
}

// TableRef is a schema-qualified table name.
type TableRef struct {
	Schema string
	Table  string
}

// ParseTableRef parses "table" or "schema.table". The schema defaults to public.
func ParseTableRef(ref string) (TableRef, error) {
	parts := strings.Split(strings.TrimSpace(ref), ".")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return TableRef{Schema: "public", Table: parts[0]}, nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return TableRef{Schema: parts[0], Table: parts[1]}, nil
	}
	return TableRef{}, &errors.ValidationError{Field: "table", Value: ref, Message: "expected table or schema.table"}
}

// String returns "schema.table".
func (t TableRef) String() string {
	return t.Schema + "." + t.Table
}

// PostgresSource reads a table's columns from information_schema and a
// sample of its rows.
type PostgresSource struct {
	db         Querier
	ref        TableRef
	sampleSize int
}

// NewPostgres creates a reader for a table. A sampleSize of zero reads
// every row.
func NewPostgres(db Querier, ref TableRef, sampleSize int) *PostgresSource {
	return &PostgresSource{db: db, ref: ref, sampleSize: sampleSize}
}

// Type returns TypePostgres.
func (s *PostgresSource) Type() Type { return TypePostgres }

// Name returns the qualified table name, which executors use as the
// table reference.
func (s *PostgresSource) Name() string { return s.ref.String() }

const columnsQuery = `
	SELECT column_name, data_type, is_nullable = 'YES'
	FROM information_schema.columns
	WHERE table_schema = $1 AND table_name = $2
	ORDER BY ordinal_position`

// Read loads the schema and sample rows.
func (s *PostgresSource) Read(ctx context.Context) (*dataset.Dataset, error) {
	sch, err := s.readSchema(ctx)
	if err != nil {
		return nil, err
	}

	quoted := make([]string, sch.Len())
	for i, name := range sch.Names() {
		quoted[i] = plan.QuoteIdent(name)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), plan.QuoteQualified(s.ref.String()))
	var args []any
	if s.sampleSize > 0 {
		query += " LIMIT $1"
		args = append(args, s.sampleSize)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapResource("sample", "table", s.ref.String(), err)
	}
	defer rows.Close()

	var out []dataset.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, errors.WrapResource("scan", "table", s.ref.String(), err)
		}
		row := make(dataset.Row, len(values))
		for i, v := range values {
			row[i] = normalizeValue(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapResource("sample", "table", s.ref.String(), err)
	}

	logging.FromContext(ctx).Debug().
		Str("dataset", s.Name()).
		Int("columns", sch.Len()).
		Int("rows", len(out)).
		Msg("Read Postgres table")
	return dataset.New(sch, out)
}

func (s *PostgresSource) readSchema(ctx context.Context) (*schema.Schema, error) {
	rows, err := s.db.Query(ctx, columnsQuery, s.ref.Schema, s.ref.Table)
	if err != nil {
		return nil, errors.WrapResource("describe", "table", s.ref.String(), err)
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var name, dataType string
		var nullable bool
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return nil, errors.WrapResource("describe", "table", s.ref.String(), err)
		}
		cols = append(cols, schema.NewColumn(name, dataType, nullable))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapResource("describe", "table", s.ref.String(), err)
	}
	if len(cols) == 0 {
		return nil, errors.NewNotFoundError("table", s.ref.String())
	}
	return schema.New(s.ref.String(), cols...)
}

// normalizeValue maps pgx driver values onto the plain Go types the
// dataset package compares.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", x[0:4], x[4:6], x[6:8], x[8:10], x[10:16])
	default:
		return v
	}
}
