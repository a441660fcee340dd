package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/match"
)

func TestDefaultCatalog(t *testing.T) {
	c := match.DefaultCatalog()
	require.NotNil(t, c)
	assert.Equal(t, 1, c.Version)
	require.Len(t, c.Rules, 7)

	unified := make([]string, len(c.Rules))
	for i, r := range c.Rules {
		unified[i] = r.Unified
	}
	assert.Equal(t, []string{
		"customer_id", "email", "first_name", "date_of_birth",
		"language", "phone_number", "customer_type",
	}, unified)
	assert.Same(t, c, match.DefaultCatalog())
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing version", "rules: []"},
		{"no left patterns", "version: 1\nrules:\n  - right: [a]\n    unified: a\n    confidence: 90\n"},
		{"no right patterns", "version: 1\nrules:\n  - left: [a]\n    unified: a\n    confidence: 90\n"},
		{"no unified name", "version: 1\nrules:\n  - left: [a]\n    right: [a]\n    confidence: 90\n"},
		{"confidence out of range", "version: 1\nrules:\n  - left: [a]\n    right: [a]\n    unified: a\n    confidence: 120\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := match.ParseCatalog([]byte(tt.yaml), "test.yaml")
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}

	_, err := match.ParseCatalog([]byte("version: ["), "broken.yaml")
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Customer_ID":     "customerid",
		"Date Of Birth":   "dateofbirth",
		"  e_mail ":       "email",
		"Prénom":          "prenom",
		"TELÉFONO_MÓVIL": "telefonomovil",
		"":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, match.Normalize(in), in)
	}
}
