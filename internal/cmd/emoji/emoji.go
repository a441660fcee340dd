// Package emoji provides symbol constants for CLI output.
package emoji

// Symbols used in tables and alerts. They stay single-width so table
// columns line up.
const (
	// Success marks a passing check or a kept row.
	Success = "✓"

	// Error marks a failing check.
	Error = "✗"

	// Stop marks a CRITICAL conflict that blocks an automatic merge.
	Stop = "■"

	// Warning marks HIGH conflicts and quality warnings.
	Warning = "!"

	// Optional marks an empty or not applicable cell.
	Optional = "-"

	// Unknown marks an unrecognized status.
	Unknown = "?"

	// Info marks MEDIUM and LOW conflicts.
	Info = "i"
)
