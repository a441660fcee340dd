package plan

import (
	"fmt"
	"strings"

	"github.com/agentstation/tablemerge/pkg/constants"
)

const (
	leftAlias  = "t1"
	rightAlias = "t2"
)

// QuoteIdent quotes a SQL identifier, doubling any embedded quote.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteQualified quotes each dot-separated part of a table reference.
func QuoteQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

func ref(alias, column string) string {
	return alias + "." + QuoteIdent(column)
}

func asText(expr string) string {
	return "CAST(" + expr + " AS TEXT)"
}

// SQL renders the plan as a single SELECT over the two source tables. The
// table names default to the dataset names recorded in the plan.
func (p *MergePlan) SQL(leftTable, rightTable string) string {
	if leftTable == "" {
		leftTable = p.Left
	}
	if rightTable == "" {
		rightTable = p.Right
	}

	lk, rk := ref(leftAlias, p.JoinKey.LeftColumn), ref(rightAlias, p.JoinKey.RightColumn)
	onLeft, onRight := lk, rk
	if p.keyNeedsCast() {
		onLeft, onRight = asText(lk), asText(rk)
	}

	exprs := make([]string, 0, len(p.Columns))
	for _, c := range p.Columns {
		var expr string
		switch c.Origin {
		case OriginCoalesced:
			l, r := ref(leftAlias, c.Left), ref(rightAlias, c.Right)
			if c.Cast {
				l, r = asText(l), asText(r)
			}
			expr = fmt.Sprintf("COALESCE(%s, %s)", l, r)
		case OriginLeftOnly:
			expr = ref(leftAlias, c.Left)
		case OriginRightOnly:
			expr = ref(rightAlias, c.Right)
		case OriginMetadata:
			expr = p.metadataExpr(c.Name, lk, rk)
		}
		exprs = append(exprs, expr+" AS "+QuoteIdent(c.Name))
	}

	var b strings.Builder
	b.WriteString("SELECT\n  ")
	b.WriteString(strings.Join(exprs, ",\n  "))
	fmt.Fprintf(&b, "\nFROM %s %s\n%s %s %s ON %s = %s",
		QuoteQualified(leftTable), leftAlias,
		p.JoinKind.SQL(), QuoteQualified(rightTable), rightAlias,
		onLeft, onRight)
	return b.String()
}

func (p *MergePlan) metadataExpr(name, lk, rk string) string {
	switch name {
	case constants.SourceTableColumn:
		return fmt.Sprintf("CASE WHEN %s IS NOT NULL AND %s IS NOT NULL THEN '%s' WHEN %s IS NOT NULL THEN '%s' ELSE '%s' END",
			lk, rk, ProvenanceBoth, lk, ProvenanceLeftOnly, ProvenanceRightOnly)
	case constants.MergeTimestampColumn:
		return "CURRENT_TIMESTAMP"
	}
	return "NULL"
}

func (p *MergePlan) keyNeedsCast() bool {
	for _, c := range p.Columns {
		if c.Origin == OriginCoalesced && strings.EqualFold(c.Left, p.JoinKey.LeftColumn) && strings.EqualFold(c.Right, p.JoinKey.RightColumn) {
			return c.Cast
		}
	}
	return false
}

// CreateTableSQL wraps SQL in a CREATE TABLE ... AS statement.
func (p *MergePlan) CreateTableSQL(target, leftTable, rightTable string) string {
	return "CREATE TABLE " + QuoteQualified(target) + " AS\n" + p.SQL(leftTable, rightTable)
}
