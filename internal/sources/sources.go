// Package sources reads datasets from local CSV files, CSV objects in S3
// and Postgres tables.
package sources

import (
	"context"
	"path"
	"strings"

	"github.com/agentstation/tablemerge/pkg/dataset"
)

// Type identifies a kind of source.
type Type string

const (
	// TypeCSV is a CSV file on the local filesystem.
	TypeCSV Type = "csv"
	// TypeS3 is a CSV object stored in S3.
	TypeS3 Type = "s3"
	// TypePostgres is a Postgres table.
	TypePostgres Type = "postgres"
)

// String returns the type name.
func (t Type) String() string {
	return string(t)
}

// Reader loads one named dataset.
type Reader interface {
	// Type returns the kind of source.
	Type() Type
	// Name returns the dataset name the reader produces.
	Name() string
	// Read loads the schema and rows.
	Read(ctx context.Context) (*dataset.Dataset, error)
}

// datasetName derives a dataset name from a file path or object key.
func datasetName(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
