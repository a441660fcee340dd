package sources_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/internal/sources"
	pkgerrors "github.com/agentstation/tablemerge/pkg/errors"
)

func TestOpenerOpen(t *testing.T) {
	opener := sources.NewOpener(sources.Config{SampleSize: 10}).
		WithS3Client(&fakeS3{}).
		WithQuerier(&fakeQuerier{})
	defer opener.Close()
	ctx := context.Background()

	tests := []struct {
		uri  string
		typ  sources.Type
		name string
	}{
		{"data/left.csv", sources.TypeCSV, "left"},
		{"file:///tmp/right.csv", sources.TypeCSV, "right"},
		{"s3://bucket/exports/clients.csv", sources.TypeS3, "clients"},
		{"pg:crm.customers", sources.TypePostgres, "crm.customers"},
		{"pg:customers", sources.TypePostgres, "public.customers"},
		{"postgres://user@localhost/db?table=sales.orders&sslmode=disable", sources.TypePostgres, "sales.orders"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			r, err := opener.Open(ctx, tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, r.Type())
			assert.Equal(t, tt.name, r.Name())
		})
	}
}

func TestOpenerOpenErrors(t *testing.T) {
	opener := sources.NewOpener(sources.Config{})
	ctx := context.Background()

	for _, uri := range []string{"", "ftp://host/x.csv", "s3://bucket", "pg:"} {
		_, err := opener.Open(ctx, uri)
		assert.True(t, pkgerrors.IsValidationError(err), uri)
	}

	_, err := opener.Open(ctx, "pg:customers")
	var cfgErr *pkgerrors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
