// Package table converts reconciliation results into rows for CLI tables.
package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/tablemerge/internal/cmd/emoji"
	"github.com/agentstation/tablemerge/pkg/conflict"
	"github.com/agentstation/tablemerge/pkg/dedupe"
	"github.com/agentstation/tablemerge/pkg/executor"
	"github.com/agentstation/tablemerge/pkg/match"
	"github.com/agentstation/tablemerge/pkg/plan"
	"github.com/agentstation/tablemerge/pkg/quality"
	"github.com/agentstation/tablemerge/pkg/schema"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// MappingsToTableData converts column mappings to table format.
func MappingsToTableData(mappings []match.Mapping, showReasoning bool) Data {
	headers := []string{"Left", "Right", "Unified", "Confidence", "Key"}
	if showReasoning {
		headers = append(headers, "Reasoning")
	}

	rows := make([][]string, 0, len(mappings))
	for _, m := range mappings {
		row := []string{
			m.LeftColumn,
			m.RightColumn,
			m.UnifiedName,
			strconv.Itoa(m.Confidence),
			Check(m.IsJoinKey),
		}
		if showReasoning {
			row = append(row, m.Reasoning)
		}
		rows = append(rows, row)
	}

	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignCenter}
	if showReasoning {
		align = append(align, AlignLeft)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// UnmatchedToTableData lists columns no mapping claimed, one side per column.
func UnmatchedToTableData(left, right []schema.Column) Data {
	n := max(len(left), len(right))
	rows := make([][]string, 0, n)
	for i := range n {
		row := []string{"", ""}
		if i < len(left) {
			row[0] = describeColumn(left[i])
		}
		if i < len(right) {
			row[1] = describeColumn(right[i])
		}
		rows = append(rows, row)
	}
	return Data{Headers: []string{"Unmatched Left", "Unmatched Right"}, Rows: rows}
}

func describeColumn(c schema.Column) string {
	declared := c.Declared
	if declared == "" {
		declared = c.Type.String()
	}
	return fmt.Sprintf("%s (%s)", c.Name, declared)
}

// ConflictsToTableData converts conflicts to table format.
func ConflictsToTableData(conflicts []conflict.Conflict) Data {
	rows := make([][]string, 0, len(conflicts))
	for _, c := range conflicts {
		rows = append(rows, []string{
			SeveritySymbol(c.Severity) + " " + c.Severity.String(),
			c.Kind.String(),
			Dash(c.LeftColumn),
			Dash(c.RightColumn),
			c.Description,
		})
	}
	return Data{
		Headers: []string{"Severity", "Kind", "Left", "Right", "Description"},
		Rows:    rows,
	}
}

// PlanToTableData lists the output columns of a merge plan.
func PlanToTableData(p *plan.MergePlan) Data {
	rows := make([][]string, 0, p.Width())
	for i, c := range p.Columns {
		declared := c.Declared
		if c.Cast {
			declared += " (cast)"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.Name,
			c.Origin.String(),
			Dash(c.Left),
			Dash(c.Right),
			declared,
		})
	}
	return Data{
		Headers:         []string{"#", "Column", "Origin", "Left", "Right", "Type"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
}

// RulesToTableData converts the semantic rule catalog to table format.
func RulesToTableData(catalog *match.Catalog) Data {
	rows := make([][]string, 0, len(catalog.Rules))
	for _, r := range catalog.Rules {
		rows = append(rows, []string{
			Dash(r.Name),
			strings.Join(r.Left, ", "),
			strings.Join(r.Right, ", "),
			r.Unified,
			strconv.Itoa(r.Confidence),
		})
	}
	return Data{
		Headers: []string{"Rule", "Left Patterns", "Right Patterns", "Unified", "Confidence"},
		Rows:    rows,
	}
}

// CountsToTableData shows the row counts of an executed merge.
func CountsToTableData(res *executor.Result) Data {
	c := res.Counts
	return Data{
		Headers: []string{"Target", "Left Rows", "Right Rows", "Output Rows", "Duration"},
		Rows: [][]string{{
			res.Target,
			FormatNumber(c.Left),
			FormatNumber(c.Right),
			FormatNumber(c.Output),
			res.Duration.Round(time.Microsecond).String(),
		}},
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight},
	}
}

// StatsToTableData shows dedupe statistics.
func StatsToTableData(s dedupe.Stats) Data {
	return Data{
		Headers: []string{"Before", "After", "Removed", "Removed %"},
		Rows: [][]string{{
			FormatNumber(s.Before),
			FormatNumber(s.After),
			FormatNumber(s.Removed),
			fmt.Sprintf("%.2f%%", s.Percentage),
		}},
		ColumnAlignment: []Align{AlignRight, AlignRight, AlignRight, AlignRight},
	}
}

// DuplicatesToTableData summarizes a duplicate report.
func DuplicatesToTableData(r *quality.DuplicateReport) Data {
	samples := make([]string, 0, len(r.Samples))
	for _, s := range r.Samples {
		samples = append(samples, fmt.Sprintf("%s×%d", s.Value, s.Count))
	}
	return Data{
		Headers: []string{"Key", "Rows", "Unique", "Duplicated", "Extra Rows", "Dup %", "Status", "Examples"},
		Rows: [][]string{{
			r.Key,
			FormatNumber(r.TotalRows),
			FormatNumber(r.UniqueKeys),
			FormatNumber(r.DuplicateKeys),
			FormatNumber(r.DuplicateRows),
			fmt.Sprintf("%.2f%%", r.Percentage),
			StatusSymbol(r.Status) + " " + r.Status.String(),
			Dash(strings.Join(samples, ", ")),
		}},
	}
}

// NullsToTableData lists per-column null counts.
func NullsToTableData(r *quality.NullReport) Data {
	rows := make([][]string, 0, len(r.Columns))
	for _, c := range r.Columns {
		rows = append(rows, []string{
			c.Column,
			FormatNumber(c.Nulls),
			fmt.Sprintf("%.2f%%", c.Percentage),
			StatusSymbol(c.Status) + " " + c.Status.String(),
		})
	}
	return Data{
		Headers:         []string{"Column", "Nulls", "Null %", "Status"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignLeft},
	}
}

// SeveritySymbol picks the CLI symbol for a severity.
func SeveritySymbol(s conflict.Severity) string {
	switch s {
	case conflict.SeverityCritical:
		return emoji.Stop
	case conflict.SeverityHigh, conflict.SeverityMedium:
		return emoji.Warning
	case conflict.SeverityLow:
		return emoji.Info
	default:
		return emoji.Unknown
	}
}

// StatusSymbol picks the CLI symbol for a quality status.
func StatusSymbol(s quality.Status) string {
	switch s {
	case quality.StatusPassed:
		return emoji.Success
	case quality.StatusWarning:
		return emoji.Warning
	case quality.StatusFailed:
		return emoji.Error
	default:
		return emoji.Unknown
	}
}

// Check renders a boolean as a check mark or a dash.
func Check(b bool) string {
	if b {
		return emoji.Success
	}
	return emoji.Optional
}

// Dash replaces an empty cell with "-".
func Dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// FormatNumber formats large numbers with comma separators.
func FormatNumber(n int) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	str := strconv.Itoa(n)
	if len(str) <= 3 {
		return str
	}

	var b strings.Builder
	for i, r := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
