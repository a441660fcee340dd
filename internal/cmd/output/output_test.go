package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/internal/cmd/table"
	"github.com/agentstation/tablemerge/pkg/conflict"
	"github.com/agentstation/tablemerge/pkg/match"
	"github.com/agentstation/tablemerge/pkg/plan"
	"github.com/agentstation/tablemerge/pkg/review"
	"github.com/agentstation/tablemerge/pkg/schema"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", "", false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"wide", FormatWide, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func customersPlan(t *testing.T) *plan.MergePlan {
	t.Helper()
	left := schema.MustNew("customers", schema.NewColumn("id", "INT", false), schema.NewColumn("name", "VARCHAR", true))
	right := schema.MustNew("clients", schema.NewColumn("id", "INT", false), schema.NewColumn("fullname", "VARCHAR", true))
	res := match.Match(left, right)
	p, err := plan.Synthesize(res.Mappings, left, right, plan.JoinFullOuter)
	require.NoError(t, err)
	return p
}

func TestRenderMachineFormatsUseRaw(t *testing.T) {
	p := customersPlan(t)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, p, func() Document {
		t.Fatal("document built for json output")
		return Document{}
	}))
	assert.Contains(t, buf.String(), `"join_kind": "FULL_OUTER"`)

	buf.Reset()
	require.NoError(t, Render(&buf, FormatYAML, p, nil))
	assert.Contains(t, buf.String(), "join_kind: FULL_OUTER")
}

func TestRenderTableDocument(t *testing.T) {
	p := customersPlan(t)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatTable, p, func() Document {
		return PlanDocument(p, "SELECT 1")
	}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "FULL_OUTER JOIN customers + clients on id (id = id), 5 output columns"))
	assert.Contains(t, out, "Output Columns")
	assert.Contains(t, out, "ds_right_fullname")
	assert.Contains(t, out, "SELECT 1")
}

func TestRenderMarkdownDocument(t *testing.T) {
	d, err := review.Evaluate([]conflict.Conflict{{
		Kind:        conflict.KindMissingColumn,
		Severity:    conflict.SeverityCritical,
		RightColumn: "foo",
		Description: "missing",
	}}, nil, 70)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatMarkdown, d, func() Document { return ReviewDocument(d) }))
	out := buf.String()
	assert.Contains(t, out, "# Conflicts")
	assert.Contains(t, out, "## Conflicts")
	assert.Contains(t, out, "MISSING_COLUMN")
	assert.Contains(t, out, "Review: REQUIRED")
}

func TestTableFormatterSkipsEmptySections(t *testing.T) {
	doc := Document{Summary: "s"}
	doc.Add("Empty", table.Data{Headers: []string{"a"}})
	doc.Add("Full", table.Data{Headers: []string{"a"}, Rows: [][]string{{"x"}}})

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, doc))
	assert.NotContains(t, buf.String(), "Empty")
	assert.Contains(t, buf.String(), "Full")
}
