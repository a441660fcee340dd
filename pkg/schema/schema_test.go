package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/schema"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		declared string
		want     schema.TypeTag
	}{
		{"NUMBER", schema.TypeNumeric},
		{"number(38,0)", schema.TypeNumeric},
		{"BIGINT", schema.TypeNumeric},
		{"double precision", schema.TypeNumeric},
		{"DECIMAL(10, 2)", schema.TypeNumeric},
		{"NUMERIC", schema.TypeNumeric},
		{"VARCHAR(255)", schema.TypeString},
		{"text", schema.TypeString},
		{"character varying", schema.TypeString},
		{"STRING", schema.TypeString},
		{"DATE", schema.TypeDate},
		{"TIMESTAMP_NTZ(9)", schema.TypeDate},
		{"timestamp with time zone", schema.TypeDate},
		{"BOOLEAN", schema.TypeOther},
		{"VARIANT", schema.TypeOther},
		{"", schema.TypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			assert.Equal(t, tt.want, schema.ParseType(tt.declared))
		})
	}
}

func TestBaseType(t *testing.T) {
	assert.Equal(t, "VARCHAR", schema.BaseType("varchar(255)"))
	assert.Equal(t, "DOUBLE PRECISION", schema.BaseType("  double   precision "))
	assert.Equal(t, "NUMBER", schema.BaseType("NUMBER(38,0)"))
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		name string
		a, b schema.Column
		want bool
	}{
		{"int and decimal", schema.NewColumn("a", "INT", true), schema.NewColumn("a", "DECIMAL(10,2)", true), true},
		{"char and text", schema.NewColumn("a", "CHAR(2)", true), schema.NewColumn("a", "TEXT", true), true},
		{"date and timestamp", schema.NewColumn("a", "DATE", true), schema.NewColumn("a", "TIMESTAMP_LTZ", true), true},
		{"number and varchar", schema.NewColumn("a", "NUMBER", true), schema.NewColumn("a", "VARCHAR", true), false},
		{"same other", schema.NewColumn("a", "BOOLEAN", true), schema.NewColumn("a", "boolean", true), true},
		{"different other", schema.NewColumn("a", "BOOLEAN", true), schema.NewColumn("a", "VARIANT", true), false},
		{"other and family", schema.NewColumn("a", "BOOLEAN", true), schema.NewColumn("a", "INT", true), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schema.Compatible(tt.a, tt.b))
			assert.Equal(t, tt.want, schema.Compatible(tt.b, tt.a))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("preserves order and case", func(t *testing.T) {
		s, err := schema.New("customers",
			schema.NewColumn("CustomerID", "NUMBER", false),
			schema.NewColumn("Email", "VARCHAR", true),
		)
		require.NoError(t, err)
		assert.Equal(t, "customers", s.Name())
		assert.Equal(t, []string{"CustomerID", "Email"}, s.Names())
		assert.Equal(t, 2, s.Len())

		col, ok := s.Lookup("customerid")
		require.True(t, ok)
		assert.Equal(t, "CustomerID", col.Name)
		assert.Equal(t, schema.TypeNumeric, col.Type)
		assert.Equal(t, 1, s.Index("EMAIL"))
		assert.Equal(t, -1, s.Index("phone"))
		assert.False(t, s.Has("phone"))
	})

	t.Run("empty schema is valid", func(t *testing.T) {
		s, err := schema.New("empty")
		require.NoError(t, err)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("tag or declared type is enough", func(t *testing.T) {
		s, err := schema.New("x",
			schema.Column{Name: "a", Type: "NUMBER"},
			schema.Column{Name: "b", Type: schema.TypeDate},
			schema.Column{Name: "c", Declared: "text"},
		)
		require.NoError(t, err)
		assert.Equal(t, schema.TypeNumeric, s.At(0).Type)
		assert.Equal(t, "NUMBER", s.At(0).Declared)
		assert.Equal(t, schema.TypeDate, s.At(1).Type)
		assert.Equal(t, schema.TypeString, s.At(2).Type)
	})

	invalid := []struct {
		name    string
		columns []schema.Column
	}{
		{"duplicate name", []schema.Column{schema.NewColumn("id", "INT", false), schema.NewColumn("ID", "INT", false)}},
		{"empty name", []schema.Column{schema.NewColumn(" ", "INT", false)}},
		{"empty type", []schema.Column{{Name: "a"}}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.New("bad", tt.columns...)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidSchema(err))
		})
	}
}

func TestColumnsReturnsCopy(t *testing.T) {
	s := schema.MustNew("x", schema.NewColumn("a", "INT", true))
	cols := s.Columns()
	cols[0].Name = "mutated"
	assert.Equal(t, "a", s.At(0).Name)
}

func TestSchemaEncoding(t *testing.T) {
	s := schema.MustNew("clients",
		schema.NewColumn("id", "NUMBER", false),
		schema.NewColumn("fullname", "VARCHAR(100)", true),
	)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"clients"`)
	assert.Contains(t, string(data), `"declared":"VARCHAR(100)"`)

	var decoded schema.Schema
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s.Names(), decoded.Names())
	assert.True(t, decoded.Has("FULLNAME"))

	var dup schema.Schema
	err = json.Unmarshal([]byte(`{"name":"d","columns":[{"name":"a","type":"INT"},{"name":"A","type":"INT"}]}`), &dup)
	assert.True(t, errors.IsInvalidSchema(err))

	out, err := yaml.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), "name: clients")
	assert.Contains(t, string(out), "fullname")
}
