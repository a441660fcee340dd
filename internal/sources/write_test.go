package sources

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/pkg/dataset"
	"github.com/agentstation/tablemerge/pkg/schema"
)

func TestWriteCSVTypedHeader(t *testing.T) {
	s := schema.MustNew("people",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("name", "VARCHAR", true),
		schema.NewColumn("joined", "DATE", true),
	)
	d, err := dataset.New(s, []dataset.Row{
		{int64(1), "Ann, Jr.", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{int64(2), nil, nil},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, d))
	assert.Equal(t, "id:INT,name:VARCHAR,joined:DATE\n1,\"Ann, Jr.\",2024-01-02\n2,,\n", buf.String())

	back, err := ParseCSV("people", "people.csv", &buf, 0)
	require.NoError(t, err)
	assert.Equal(t, d.Rows, back.Rows)
	assert.Equal(t, "DATE", back.Schema.At(2).Declared)
}

func TestWriteCSVFile(t *testing.T) {
	s := schema.MustNew("t", schema.NewColumn("k", "TEXT", true))
	d, err := dataset.New(s, []dataset.Row{{"a"}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSVFile(path, d))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "k:TEXT\na\n", string(data))

	err = WriteCSVFile(filepath.Join(t.TempDir(), "missing", "out.csv"), d)
	assert.Error(t, err)
}
