// Package constants provides shared constants used throughout the tablemerge codebase.
// This includes timeouts, limits, file permissions, and the default policy values
// that should be consistent between the engine and the CLI.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultTimeout is the standard timeout for schema and sample reads
	DefaultTimeout = 30 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// ExecuteTimeout bounds a single merge or dedupe statement against storage
	ExecuteTimeout = 30 * time.Minute

	// ShutdownTimeout is the grace period for closing pools on exit
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// DefaultSampleSize is the number of rows read when sampling a dataset
	DefaultSampleSize = 1000

	// MaxConcurrentPairs is the maximum number of table pairs reconciled at once
	MaxConcurrentPairs = 8

	// MaxColumnNameLength is the maximum allowed length for a column name
	MaxColumnNameLength = 255
)

// Merge policy defaults
const (
	// DefaultConfidenceThreshold is the confidence below which a mapping is surfaced for review
	DefaultConfidenceThreshold = 70

	// JoinKeyConfidenceFloor is the confidence a mapping needs to be chosen as a fallback join key
	JoinKeyConfidenceFloor = 90

	// ExactMatchConfidence is assigned to case-insensitive exact name matches
	ExactMatchConfidence = 100

	// MaxHighConflicts is the number of HIGH conflicts tolerated before review is mandatory
	MaxHighConflicts = 2

	// DefaultLeftPrefix disambiguates unmapped left columns in merged output
	DefaultLeftPrefix = "ds_left_"

	// DefaultRightPrefix disambiguates unmapped right columns in merged output
	DefaultRightPrefix = "ds_right_"

	// SourceTableColumn holds the per-row provenance tag
	SourceTableColumn = "_SOURCE_TABLE"

	// MergeTimestampColumn holds the time the merged row was produced
	MergeTimestampColumn = "_MERGE_TIMESTAMP"

	// DefaultDuplicateThreshold is the duplicate-key percentage a quality check tolerates
	DefaultDuplicateThreshold = 1.0

	// DefaultNullThreshold is the per-column null percentage a quality check tolerates
	DefaultNullThreshold = 5.0
)

// Format constants
const (
	// TimeFormatISO8601 is the ISO 8601 time format
	TimeFormatISO8601 = time.RFC3339

	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"
)
