package output

import (
	"fmt"
	"strings"

	"github.com/agentstation/tablemerge/internal/cmd/table"
	"github.com/agentstation/tablemerge/pkg/match"
	"github.com/agentstation/tablemerge/pkg/plan"
	"github.com/agentstation/tablemerge/pkg/quality"
	"github.com/agentstation/tablemerge/pkg/report"
	"github.com/agentstation/tablemerge/pkg/review"
)

// MatchDocument renders matcher output.
func MatchDocument(res match.Result, wide bool) Document {
	exact, semantic := res.Counts()
	doc := Document{
		Title: "Column Mappings",
		Summary: fmt.Sprintf("%d mappings (%d exact, %d semantic), %d unmatched left, %d unmatched right",
			len(res.Mappings), exact, semantic, len(res.UnmatchedLeft), len(res.UnmatchedRight)),
	}
	doc.Add("Mappings", table.MappingsToTableData(res.Mappings, wide))
	doc.Add("Unmatched", table.UnmatchedToTableData(res.UnmatchedLeft, res.UnmatchedRight))
	return doc
}

// ReviewDocument renders conflicts and the review decision.
func ReviewDocument(d review.Decision) Document {
	s := d.Summary
	doc := Document{
		Title: "Conflicts",
		Summary: fmt.Sprintf("%d conflicts: %d critical, %d high, %d medium, %d low",
			s.Total, s.Critical, s.High, s.Medium, s.Low),
	}
	doc.Add("Conflicts", table.ConflictsToTableData(d.Conflicts))
	doc.Add(fmt.Sprintf("Mappings below confidence %d", d.Threshold), table.MappingsToTableData(d.LowConfidence, true))
	doc.Note(reviewLine(d))
	return doc
}

func reviewLine(d review.Decision) string {
	if !d.RequiresReview {
		return "Review: not required"
	}
	return "Review: REQUIRED (" + strings.Join(d.Reasons, "; ") + ")"
}

// PlanDocument renders a merge plan and, when sql is set, its SQL.
func PlanDocument(p *plan.MergePlan, sql string) Document {
	doc := Document{
		Title: "Merge Plan",
		Summary: fmt.Sprintf("%s JOIN %s + %s on %s (%s = %s), %d output columns",
			p.JoinKind, p.Left, p.Right, p.JoinKey.UnifiedName, p.JoinKey.LeftColumn, p.JoinKey.RightColumn, p.Width()),
		Code:         sql,
		CodeLanguage: "sql",
	}
	doc.Add("Output Columns", table.PlanToTableData(p))
	return doc
}

// ProfileDocument renders quality profiles.
func ProfileDocument(profiles ...*quality.Profile) Document {
	doc := Document{Title: "Quality Profile"}
	for _, p := range profiles {
		if p.Duplicates != nil {
			doc.Add(p.Dataset+": duplicates", table.DuplicatesToTableData(p.Duplicates))
		}
		if p.Nulls != nil {
			doc.Add(fmt.Sprintf("%s: nulls (completeness %.2f%%)", p.Dataset, p.Nulls.Completeness),
				table.NullsToTableData(p.Nulls))
		}
		status := table.StatusSymbol(quality.StatusPassed) + " passed"
		if !p.Passed() {
			status = table.StatusSymbol(quality.StatusFailed) + " failed"
		}
		doc.Note(fmt.Sprintf("%s: quality checks %s", p.Dataset, status))
	}
	return doc
}

// ReportDocument renders a full reconciliation report.
func ReportDocument(r *report.Report, wide bool) Document {
	doc := Document{
		Title:   fmt.Sprintf("Merge Report: %s + %s", r.Left, r.Right),
		Summary: r.Summary(),
	}
	doc.Add("Mappings", table.MappingsToTableData(r.Mappings, wide))
	doc.Add("Conflicts", table.ConflictsToTableData(r.Conflicts))
	if r.Plan != nil {
		doc.Add("Output Columns", table.PlanToTableData(r.Plan))
	}
	if r.Execution != nil {
		doc.Add("Execution", table.CountsToTableData(r.Execution))
		doc.Code, doc.CodeLanguage = r.Execution.SQL, "sql"
	}
	if r.Dedupe != nil {
		doc.Add("Deduplication", table.StatsToTableData(*r.Dedupe))
	}
	doc.Sections = append(doc.Sections, ProfileDocument(r.Quality...).Sections...)
	doc.Note(reviewLine(r.Review))
	return doc
}
