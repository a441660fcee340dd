package plan_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/match"
	"github.com/agentstation/tablemerge/pkg/plan"
	"github.com/agentstation/tablemerge/pkg/schema"
)

func customersAndClients(t *testing.T) (*schema.Schema, *schema.Schema) {
	t.Helper()
	left := schema.MustNew("customers",
		schema.NewColumn("id", "INTEGER", false),
		schema.NewColumn("name", "VARCHAR(100)", true),
	)
	right := schema.MustNew("clients",
		schema.NewColumn("id", "NUMBER", false),
		schema.NewColumn("fullname", "TEXT", true),
	)
	return left, right
}

func TestSynthesizePrefixesUnmatchedColumns(t *testing.T) {
	left, right := customersAndClients(t)
	res := match.Match(left, right)

	p, err := plan.Synthesize(res.Mappings, left, right, plan.JoinFullOuter)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "ds_left_name", "ds_right_fullname", "_SOURCE_TABLE", "_MERGE_TIMESTAMP"}, p.ColumnNames())
	assert.Equal(t, 5, p.Width())
	assert.Equal(t, "id", p.JoinKey.UnifiedName)
	assert.Equal(t, "customers", p.Left)
	assert.Equal(t, "clients", p.Right)

	origins := make([]plan.Origin, 0, p.Width())
	for _, c := range p.Columns {
		origins = append(origins, c.Origin)
	}
	assert.Equal(t, []plan.Origin{
		plan.OriginCoalesced, plan.OriginLeftOnly, plan.OriginRightOnly,
		plan.OriginMetadata, plan.OriginMetadata,
	}, origins)
	require.NoError(t, p.Check(left, right))
}

func TestSynthesizeLosslessForEveryJoinKind(t *testing.T) {
	left := schema.MustNew("l",
		schema.NewColumn("cust_id", "INT", false),
		schema.NewColumn("email", "VARCHAR", true),
		schema.NewColumn("dob", "DATE", true),
		schema.NewColumn("notes", "TEXT", true),
	)
	right := schema.MustNew("r",
		schema.NewColumn("client_id", "BIGINT", false),
		schema.NewColumn("mail", "VARCHAR", true),
		schema.NewColumn("birthdate", "TIMESTAMP", true),
		schema.NewColumn("segment", "VARCHAR", true),
		schema.NewColumn("score", "FLOAT", true),
	)
	res := match.Match(left, right)

	for _, kind := range plan.JoinKinds() {
		t.Run(kind.String(), func(t *testing.T) {
			p, err := plan.Synthesize(res.Mappings, left, right, kind)
			require.NoError(t, err)

			want := len(p.Mappings) + len(p.UnmappedLeft) + len(p.UnmappedRight) + 2
			assert.Equal(t, want, p.Width())
			assert.Len(t, p.UnmappedLeft, 1)
			assert.Len(t, p.UnmappedRight, 2)
			assert.Equal(t, kind, p.JoinKind)
			assert.NoError(t, p.Check(left, right))

			_, err = p.OutputSchema("merged")
			assert.NoError(t, err)
		})
	}
}

func TestSelectJoinKey(t *testing.T) {
	left := schema.MustNew("l",
		schema.NewColumn("a", "INT", true),
		schema.NewColumn("b", "INT", true),
		schema.NewColumn("c", "INT", true),
	)
	right := schema.MustNew("r",
		schema.NewColumn("a", "INT", true),
		schema.NewColumn("b", "INT", true),
		schema.NewColumn("c", "INT", true),
	)
	m := func(name string, conf int, key bool) match.Mapping {
		return match.Mapping{LeftColumn: name, RightColumn: name, UnifiedName: name, Confidence: conf, IsJoinKey: key}
	}

	tests := []struct {
		name     string
		mappings []match.Mapping
		want     string
	}{
		{"flagged key wins over order", []match.Mapping{m("a", 100, false), m("b", 80, true)}, "b"},
		{"first at or above 90", []match.Mapping{m("a", 70, false), m("b", 90, false), m("c", 95, false)}, "b"},
		{"highest confidence", []match.Mapping{m("a", 60, false), m("b", 85, false), m("c", 70, false)}, "b"},
		{"earliest wins ties", []match.Mapping{m("a", 50, false), m("b", 80, false), m("c", 80, false)}, "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := plan.Synthesize(tt.mappings, left, right, plan.JoinInner)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.JoinKey.UnifiedName)
		})
	}
}

func TestSynthesizeNoJoinKey(t *testing.T) {
	left := schema.MustNew("l", schema.NewColumn("x", "INT", true))
	right := schema.MustNew("r", schema.NewColumn("y", "INT", true))

	_, err := plan.Synthesize(nil, left, right, plan.JoinFullOuter)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNoJoinKey(err))

	var noKey *pkgerrors.NoJoinKeyError
	require.True(t, errors.As(err, &noKey))
	assert.Equal(t, "l", noKey.Left)
	assert.Equal(t, "r", noKey.Right)
}

func TestSynthesizeExplicitJoinKey(t *testing.T) {
	left, right := customersAndClients(t)
	mappings := []match.Mapping{
		{LeftColumn: "id", RightColumn: "id", UnifiedName: "id", Confidence: 100, IsJoinKey: true},
		{LeftColumn: "name", RightColumn: "fullname", UnifiedName: "full_name", Confidence: 60},
	}

	p, err := plan.Synthesize(mappings, left, right, plan.JoinLeft, plan.WithJoinKey("FULL_NAME"))
	require.NoError(t, err)
	assert.Equal(t, "fullname", p.JoinKey.RightColumn)

	p, err = plan.Synthesize(mappings, left, right, plan.JoinLeft, plan.WithJoinKey("name"))
	require.NoError(t, err)
	assert.Equal(t, "full_name", p.JoinKey.UnifiedName)

	_, err = plan.Synthesize(mappings, left, right, plan.JoinLeft, plan.WithJoinKey("email"))
	var noKey *pkgerrors.NoJoinKeyError
	require.True(t, errors.As(err, &noKey))
	assert.Equal(t, []string{"id", "full_name"}, noKey.Candidates)
}

func TestSynthesizeNameCollisions(t *testing.T) {
	t.Run("duplicate unified name", func(t *testing.T) {
		left := schema.MustNew("l", schema.NewColumn("a", "INT", true), schema.NewColumn("b", "INT", true))
		right := schema.MustNew("r", schema.NewColumn("c", "INT", true), schema.NewColumn("d", "INT", true))
		mappings := []match.Mapping{
			{LeftColumn: "a", RightColumn: "c", UnifiedName: "k", Confidence: 90},
			{LeftColumn: "b", RightColumn: "d", UnifiedName: "K", Confidence: 90},
		}
		p, err := plan.Synthesize(mappings, left, right, plan.JoinFullOuter)
		assert.Nil(t, p)
		assert.True(t, pkgerrors.IsInvalidSchema(err))
	})

	t.Run("prefixed name equals unified name", func(t *testing.T) {
		left := schema.MustNew("l", schema.NewColumn("id", "INT", true), schema.NewColumn("x", "INT", true))
		right := schema.MustNew("r", schema.NewColumn("id", "INT", true))
		mappings := []match.Mapping{
			{LeftColumn: "id", RightColumn: "id", UnifiedName: "ds_left_x", Confidence: 100},
		}
		_, err := plan.Synthesize(mappings, left, right, plan.JoinFullOuter)
		assert.True(t, pkgerrors.IsInvalidSchema(err))
	})

	t.Run("metadata name taken", func(t *testing.T) {
		left := schema.MustNew("l", schema.NewColumn("_source_table", "VARCHAR", true))
		right := schema.MustNew("r", schema.NewColumn("_SOURCE_TABLE", "VARCHAR", true))
		res := match.Match(left, right)
		_, err := plan.Synthesize(res.Mappings, left, right, plan.JoinFullOuter)
		assert.True(t, pkgerrors.IsInvalidSchema(err))
	})
}

func TestSynthesizeRejectsBadInput(t *testing.T) {
	left, right := customersAndClients(t)

	_, err := plan.Synthesize([]match.Mapping{{LeftColumn: "id", RightColumn: "foo", UnifiedName: "id", Confidence: 100}},
		left, right, plan.JoinFullOuter)
	assert.True(t, pkgerrors.IsMissingColumn(err))

	_, err = plan.Synthesize([]match.Mapping{
		{LeftColumn: "id", RightColumn: "id", UnifiedName: "id", Confidence: 100},
		{LeftColumn: "name", RightColumn: "id", UnifiedName: "other", Confidence: 50},
	}, left, right, plan.JoinFullOuter)
	assert.True(t, pkgerrors.IsValidationError(err))

	_, err = plan.Synthesize(match.Match(left, right).Mappings, left, right, plan.JoinKind("CROSS"))
	assert.True(t, pkgerrors.IsValidationError(err))

	_, err = plan.Synthesize(match.Match(left, right).Mappings, left, right, plan.JoinInner, plan.WithPrefixes("p_", "P_"))
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestSynthesizeCustomPrefixesAndCast(t *testing.T) {
	left := schema.MustNew("l",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("amount", "NUMBER", true),
		schema.NewColumn("extra", "TEXT", true),
	)
	right := schema.MustNew("r",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("amount", "VARCHAR", true),
	)
	p, err := plan.Synthesize(match.Match(left, right).Mappings, left, right, plan.JoinInner, plan.WithPrefixes("a_", "b_"))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "amount", "a_extra", "_SOURCE_TABLE", "_MERGE_TIMESTAMP"}, p.ColumnNames())
	assert.False(t, p.Columns[0].Cast)
	assert.True(t, p.Columns[1].Cast)
	assert.Equal(t, "VARCHAR", p.Columns[1].Declared)
}

func TestParseJoinKind(t *testing.T) {
	tests := map[string]plan.JoinKind{
		"full_outer":      plan.JoinFullOuter,
		"FULL OUTER JOIN": plan.JoinFullOuter,
		"full-outer":      plan.JoinFullOuter,
		"":                plan.JoinFullOuter,
		"inner":           plan.JoinInner,
		"Left":            plan.JoinLeft,
		"right_outer":     plan.JoinRight,
	}
	for in, want := range tests {
		got, err := plan.ParseJoinKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := plan.ParseJoinKind("cross")
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestProvenanceOf(t *testing.T) {
	assert.Equal(t, plan.ProvenanceBoth, plan.ProvenanceOf(true, true))
	assert.Equal(t, plan.ProvenanceLeftOnly, plan.ProvenanceOf(true, false))
	assert.Equal(t, plan.ProvenanceRightOnly, plan.ProvenanceOf(false, true))
}
