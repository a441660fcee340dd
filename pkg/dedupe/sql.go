package dedupe

import (
	"fmt"
	"strings"

	"github.com/agentstation/tablemerge/pkg/plan"
)

// RowNumberColumn is the ranking column used by the rendered SQL.
const RowNumberColumn = "rn"

// RowOrdinal breaks exact ties in the rendered window so the first stored
// row wins, matching Select. ctid follows insertion order for tables built
// with CREATE TABLE AS and not updated since.
const RowOrdinal = "ctid"

// SQL renders the spec as a window query over source. When columns is
// empty the query selects *, which includes the ranking column.
func (s Spec) SQL(source string, columns []string) string {
	selectList := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = plan.QuoteIdent(c)
		}
		selectList = strings.Join(quoted, ", ")
	}

	over := "PARTITION BY " + plan.QuoteIdent(s.PartitionKey) + " ORDER BY "
	if s.TieBreakColumn != "" {
		over += fmt.Sprintf("%s %s NULLS LAST, ", plan.QuoteIdent(s.TieBreakColumn), s.direction())
	}
	over += RowOrdinal

	return fmt.Sprintf("SELECT %s FROM (SELECT *, ROW_NUMBER() OVER (%s) AS %s FROM %s) ranked WHERE %s = 1",
		selectList, over, RowNumberColumn, plan.QuoteQualified(source), RowNumberColumn)
}

// CreateTableSQL wraps SQL in a CREATE TABLE ... AS statement.
func (s Spec) CreateTableSQL(target, source string, columns []string) string {
	return "CREATE TABLE " + plan.QuoteQualified(target) + " AS " + s.SQL(source, columns)
}
