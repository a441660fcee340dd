package quality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/pkg/conflict"
	"github.com/agentstation/tablemerge/pkg/dataset"
	pkgerrors "github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/quality"
	"github.com/agentstation/tablemerge/pkg/schema"
)

func accounts(t *testing.T, rows ...dataset.Row) *dataset.Dataset {
	t.Helper()
	s := schema.MustNew("accounts",
		schema.NewColumn("account_id", "INT", true),
		schema.NewColumn("owner", "VARCHAR", true),
	)
	d, err := dataset.New(s, rows)
	require.NoError(t, err)
	return d
}

func TestDetectDuplicates(t *testing.T) {
	d := accounts(t,
		dataset.Row{1, "a"},
		dataset.Row{1, "b"},
		dataset.Row{1, "c"},
		dataset.Row{2, "d"},
		dataset.Row{2, "e"},
		dataset.Row{3, "f"},
		dataset.Row{nil, "g"},
		dataset.Row{nil, "h"},
	)

	r, err := quality.DetectDuplicates(d, "account_id", 1.0)
	require.NoError(t, err)

	assert.Equal(t, 8, r.TotalRows)
	assert.Equal(t, 3, r.UniqueKeys)
	assert.Equal(t, 2, r.DuplicateKeys)
	assert.Equal(t, 3, r.DuplicateRows)
	assert.Equal(t, 66.67, r.Percentage)
	assert.Equal(t, quality.StatusFailed, r.Status)
	assert.Equal(t, []quality.DuplicateKey{{Value: "1", Count: 3}, {Value: "2", Count: 2}}, r.Samples)

	c, ok := r.Conflict("left")
	require.True(t, ok)
	assert.Equal(t, conflict.KindDuplicateRisk, c.Kind)
	assert.Equal(t, conflict.SeverityMedium, c.Severity)
	assert.Equal(t, "account_id", c.LeftColumn)
}

func TestDetectDuplicatesUnique(t *testing.T) {
	d := accounts(t, dataset.Row{1, "a"}, dataset.Row{2, "b"})
	r, err := quality.DetectDuplicates(d, "ACCOUNT_ID", 1.0)
	require.NoError(t, err)
	assert.Equal(t, quality.StatusPassed, r.Status)
	assert.Zero(t, r.Percentage)

	_, ok := r.Conflict("right")
	assert.False(t, ok)

	_, err = quality.DetectDuplicates(d, "missing", 1.0)
	assert.True(t, pkgerrors.IsMissingColumn(err))
}

func TestCheckNulls(t *testing.T) {
	d := accounts(t,
		dataset.Row{1, nil},
		dataset.Row{2, "b"},
		dataset.Row{3, "c"},
		dataset.Row{4, "d"},
	)

	r := quality.CheckNulls(d, 5.0)
	require.Len(t, r.Columns, 2)
	assert.Equal(t, quality.ColumnNulls{Column: "account_id", Status: quality.StatusPassed}, r.Columns[0])
	assert.Equal(t, quality.ColumnNulls{Column: "owner", Nulls: 1, Percentage: 25, Status: quality.StatusFailed}, r.Columns[1])
	assert.Equal(t, []string{"owner"}, r.Failing)
	assert.Equal(t, 87.5, r.Completeness)
	assert.Equal(t, quality.StatusFailed, r.Status)

	lenient := quality.CheckNulls(d, 30)
	assert.Equal(t, quality.StatusWarning, lenient.Status)
	assert.True(t, lenient.Status.Passed())
}

func TestCheckNullsEmpty(t *testing.T) {
	r := quality.CheckNulls(accounts(t), 5.0)
	assert.Equal(t, quality.StatusWarning, r.Status)
	assert.Empty(t, r.Columns)
	assert.Equal(t, float64(100), r.Completeness)
}

func TestRun(t *testing.T) {
	d := accounts(t, dataset.Row{1, "a"}, dataset.Row{2, "b"})

	p, err := quality.Run(d)
	require.NoError(t, err)
	assert.Nil(t, p.Duplicates)
	assert.True(t, p.Passed())

	p, err = quality.Run(d, quality.WithKey("account_id"), quality.WithNullThreshold(0), quality.WithDuplicateThreshold(0))
	require.NoError(t, err)
	require.NotNil(t, p.Duplicates)
	assert.Equal(t, "accounts", p.Dataset)
	assert.True(t, p.Passed())

	_, err = quality.Run(d, quality.WithNullThreshold(101))
	assert.True(t, pkgerrors.IsValidationError(err))
}
