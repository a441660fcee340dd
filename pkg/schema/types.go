package schema

import "strings"

// TypeTag is the normalized family of a declared column type.
type TypeTag string

const (
	// TypeNumeric covers integer, decimal and floating point types.
	TypeNumeric TypeTag = "NUMERIC"
	// TypeString covers char, varchar and text types.
	TypeString TypeTag = "STRING"
	// TypeDate covers date and timestamp variants.
	TypeDate TypeTag = "DATE"
	// TypeOther is any type outside the three families.
	TypeOther TypeTag = "OTHER"
)

// String returns the tag name.
func (t TypeTag) String() string {
	return string(t)
}

// IsFamily reports whether t is one of the mutually compatible families.
func (t TypeTag) IsFamily() bool {
	switch t {
	case TypeNumeric, TypeString, TypeDate:
		return true
	case TypeOther:
		return false
	}
	return false
}

var families = map[string]TypeTag{
	"NUMBER":           TypeNumeric,
	"NUMERIC":          TypeNumeric,
	"INT":              TypeNumeric,
	"INTEGER":          TypeNumeric,
	"BIGINT":           TypeNumeric,
	"SMALLINT":         TypeNumeric,
	"TINYINT":          TypeNumeric,
	"INT2":             TypeNumeric,
	"INT4":             TypeNumeric,
	"INT8":             TypeNumeric,
	"FLOAT":            TypeNumeric,
	"FLOAT4":           TypeNumeric,
	"FLOAT8":           TypeNumeric,
	"DOUBLE":           TypeNumeric,
	"DOUBLE PRECISION": TypeNumeric,
	"REAL":             TypeNumeric,
	"DECIMAL":          TypeNumeric,

	"STRING":            TypeString,
	"VARCHAR":           TypeString,
	"CHAR":              TypeString,
	"CHARACTER":         TypeString,
	"CHARACTER VARYING": TypeString,
	"TEXT":              TypeString,
	"NVARCHAR":          TypeString,
	"NCHAR":             TypeString,

	"DATE":                        TypeDate,
	"DATETIME":                    TypeDate,
	"TIMESTAMP":                   TypeDate,
	"TIMESTAMP_NTZ":               TypeDate,
	"TIMESTAMP_LTZ":               TypeDate,
	"TIMESTAMP_TZ":                TypeDate,
	"TIMESTAMPTZ":                 TypeDate,
	"TIMESTAMP WITHOUT TIME ZONE": TypeDate,
	"TIMESTAMP WITH TIME ZONE":    TypeDate,
}

// BaseType upper-cases a declared type and strips any precision suffix,
// so "varchar(255)" becomes "VARCHAR".
func BaseType(declared string) string {
	if i := strings.IndexByte(declared, '('); i >= 0 {
		declared = declared[:i]
	}
	return strings.Join(strings.Fields(strings.ToUpper(declared)), " ")
}

// ParseType returns the family tag of a declared type. The tag names
// themselves parse to their own family.
func ParseType(declared string) TypeTag {
	base := BaseType(declared)
	if tag, ok := families[base]; ok {
		return tag
	}
	return TypeOther
}

// Compatible reports whether two columns may be merged without a type conflict.
// Columns in the same family are compatible. Columns outside the families
// must declare the same base type.
func Compatible(a, b Column) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Type.IsFamily() {
		return true
	}
	return BaseType(a.Declared) == BaseType(b.Declared)
}
