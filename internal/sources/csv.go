package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/dataset"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/schema"
)

// dateLayouts are tried in order when inferring and parsing DATE columns.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// CSVSource reads a local CSV file.
type CSVSource struct {
	path       string
	name       string
	sampleSize int
}

// CSVOption configures a CSV source.
type CSVOption func(*CSVSource)

// WithName overrides the dataset name, which defaults to the file name
// without extension.
func WithName(name string) CSVOption {
	return func(s *CSVSource) {
		if name != "" {
			s.name = name
		}
	}
}

// WithInferenceRows limits how many rows are used to infer column types.
// Zero uses every row.
func WithInferenceRows(n int) CSVOption {
	return func(s *CSVSource) {
		s.sampleSize = n
	}
}

// NewCSV creates a reader for the CSV file at path.
func NewCSV(path string, opts ...CSVOption) *CSVSource {
	s := &CSVSource{path: path, name: datasetName(path)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Type returns TypeCSV.
func (s *CSVSource) Type() Type { return TypeCSV }

// Name returns the dataset name.
func (s *CSVSource) Name() string { return s.name }

// Read parses the file.
func (s *CSVSource) Read(ctx context.Context) (*dataset.Dataset, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, pkgerrors.NewNotFoundError("file", s.path)
		}
		return nil, pkgerrors.WrapIO("open", s.path, err)
	}
	defer func() { _ = f.Close() }()

	d, err := ParseCSV(s.name, s.path, f, s.sampleSize)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug().
		Str("dataset", s.name).
		Str("path", s.path).
		Int("columns", d.Schema.Len()).
		Int("rows", d.Len()).
		Msg("Read CSV file")
	return d, nil
}

// ParseCSV reads a CSV document with a header row. A header cell of the
// form "name:TYPE" declares the column type; other columns are inferred
// from the first inferRows data rows (zero means all): NUMBER when every
// non-empty value is numeric, DATE when every non-empty value is a date,
// VARCHAR otherwise. Empty cells are null. file is used in error messages.
func ParseCSV(name, file string, r io.Reader, inferRows int) (*dataset.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, &pkgerrors.ParseError{
				Format:  "csv",
				File:    file,
				Line:    pe.Line,
				Column:  pe.Column,
				Message: pe.Err.Error(),
				Err:     err,
			}
		}
		return nil, pkgerrors.WrapParse("csv", file, err)
	}
	if len(records) == 0 {
		return nil, pkgerrors.NewParseError("csv", file, "missing header row", nil)
	}

	header, body := records[0], records[1:]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	cols := make([]schema.Column, len(header))
	for j, cell := range header {
		colName, declared := splitHeader(cell)
		if declared == "" {
			declared = inferType(body, j, inferRows)
		}
		cols[j] = schema.NewColumn(colName, declared, true)
	}
	s, err := schema.New(name, cols...)
	if err != nil {
		return nil, err
	}

	rows := make([]dataset.Row, len(body))
	for i, rec := range body {
		row := make(dataset.Row, len(cols))
		for j, c := range cols {
			v, err := convert(rec[j], c)
			if err != nil {
				return nil, &pkgerrors.ParseError{
					Format:  "csv",
					File:    file,
					Line:    i + 2,
					Column:  j + 1,
					Message: err.Error(),
					Err:     err,
				}
			}
			row[j] = v
		}
		rows[i] = row
	}
	return dataset.New(s, rows)
}

// splitHeader separates "name:TYPE". A cell without a colon, or with an
// empty type, has no declared type.
func splitHeader(cell string) (string, string) {
	cell = strings.TrimSpace(cell)
	i := strings.LastIndexByte(cell, ':')
	if i <= 0 {
		return cell, ""
	}
	return strings.TrimSpace(cell[:i]), strings.TrimSpace(cell[i+1:])
}

func inferType(body [][]string, col, limit int) string {
	if limit > 0 && len(body) > limit {
		body = body[:limit]
	}
	numeric, date, seen := true, true, false
	for _, rec := range body {
		v := strings.TrimSpace(rec[col])
		if v == "" {
			continue
		}
		seen = true
		if numeric {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				numeric = false
			}
		}
		if date {
			if _, ok := parseDate(v); !ok {
				date = false
			}
		}
		if !numeric && !date {
			break
		}
	}
	switch {
	case !seen:
		return "VARCHAR"
	case numeric:
		return "NUMBER"
	case date:
		return "DATE"
	default:
		return "VARCHAR"
	}
}

func parseDate(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// convert turns a cell into a typed value for its column.
func convert(cell string, c schema.Column) (any, error) {
	v := strings.TrimSpace(cell)
	if v == "" {
		return nil, nil
	}
	switch c.Type {
	case schema.TypeNumeric:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, pkgerrors.NewValidationError(c.Name, v, "not a number")
		}
		return f, nil
	case schema.TypeDate:
		t, ok := parseDate(v)
		if !ok {
			return nil, pkgerrors.NewValidationError(c.Name, v, "not a date")
		}
		return t, nil
	case schema.TypeString:
		return cell, nil
	case schema.TypeOther:
		if schema.BaseType(c.Declared) == "BOOLEAN" || schema.BaseType(c.Declared) == "BOOL" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, pkgerrors.NewValidationError(c.Name, v, "not a boolean")
			}
			return b, nil
		}
		return cell, nil
	}
	return cell, nil
}
