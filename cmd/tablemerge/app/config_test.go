package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// TestLoadConfigDefaults verifies the built-in policy.
func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultConfidenceThreshold, config.ConfidenceThreshold)
	assert.Equal(t, "full_outer", config.Join)
	assert.Equal(t, constants.DefaultLeftPrefix, config.LeftPrefix)
	assert.Equal(t, constants.DefaultRightPrefix, config.RightPrefix)
	assert.Equal(t, constants.DefaultSampleSize, config.SampleSize)
	assert.Equal(t, constants.ExecuteTimeout, config.ExecuteTimeout)
	assert.InDelta(t, constants.DefaultDuplicateThreshold, config.DuplicateThreshold, 1e-9)
	assert.InDelta(t, constants.DefaultNullThreshold, config.NullThreshold, 1e-9)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Empty(t, config.LogLevel, "empty LogLevel triggers the precedence logic")

	opts, err := config.EngineOptions()
	require.NoError(t, err)
	assert.NotEmpty(t, opts)
	assert.Len(t, config.QualityOptions(), 2)
}

// TestLoadConfigEnvironment verifies TABLEMERGE_* variables and fallbacks.
func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TABLEMERGE_CONFIDENCE_THRESHOLD", "85")
	t.Setenv("TABLEMERGE_JOIN", "inner")
	t.Setenv("TABLEMERGE_EXECUTE_TIMEOUT", "1h")
	t.Setenv("DATABASE_URL", "postgres://fallback/db")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 85, config.ConfidenceThreshold)
	assert.Equal(t, "inner", config.Join)
	assert.Equal(t, time.Hour, config.ExecuteTimeout)
	assert.Equal(t, "postgres://fallback/db", config.DatabaseURL)
	assert.Equal(t, "eu-west-1", config.AWSRegion)
	assert.Equal(t, "debug", config.EnvLogLevel)

	t.Setenv("TABLEMERGE_DATABASE_URL", "postgres://primary/db")
	config, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://primary/db", config.DatabaseURL)
}

// TestLoadConfigFile verifies an explicit YAML config file.
func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tablemerge.yaml")
	content := `confidence_threshold: 90
join: left
join_key: email
left_prefix: a_
right_prefix: b_
null_threshold: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, config.ConfigFile)
	assert.Equal(t, 90, config.ConfidenceThreshold)
	assert.Equal(t, "left", config.Join)
	assert.Equal(t, "email", config.JoinKey)
	assert.Equal(t, "a_", config.LeftPrefix)
	assert.Equal(t, "b_", config.RightPrefix)
	assert.InDelta(t, 10.0, config.NullThreshold, 1e-9)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))

	t.Setenv("HOME", t.TempDir())
	t.Setenv("TABLEMERGE_JOIN", "sideways")
	_, err = LoadConfig("")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestUpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", LogLevel: ""}

	config.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, config.Verbose)
	assert.True(t, config.NoColor)
	assert.Equal(t, "yaml", config.Format, "empty flag keeps the configured format")

	config.UpdateFromFlags(false, true, false, "json", "error")
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "error", config.LogLevel)
	assert.True(t, config.Quiet)
}
