package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/plan"
	"github.com/agentstation/tablemerge/pkg/quality"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Reconciliation policy
	ConfidenceThreshold int
	Join                string
	JoinKey             string
	LeftPrefix          string
	RightPrefix         string
	RulesFile           string
	Concurrency         int

	// Sources and storage
	DatabaseURL    string
	AWSRegion      string
	SampleSize     int
	ExecuteTimeout time.Duration

	// Quality thresholds
	DuplicateThreshold float64
	NullThreshold      float64

	// Logging configuration. LogLevel is set by --log-level only;
	// EnvLogLevel comes from LOG_LEVEL and loses to -v and -q.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables (TABLEMERGE_*, plus DATABASE_URL and AWS_REGION)
// 3. .env files
// 4. Config file (path, else ~/.tablemerge.yaml or ./.tablemerge.yaml)
// 5. Defaults
func LoadConfig(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TABLEMERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database_url", "TABLEMERGE_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("aws_region", "TABLEMERGE_AWS_REGION", "AWS_REGION")

	if path == "" {
		path = os.Getenv("TABLEMERGE_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+path, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".tablemerge")
		// A missing default config file is fine.
		_ = v.ReadInConfig()
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		ConfidenceThreshold: v.GetInt("confidence_threshold"),
		Join:                v.GetString("join"),
		JoinKey:             v.GetString("join_key"),
		LeftPrefix:          v.GetString("left_prefix"),
		RightPrefix:         v.GetString("right_prefix"),
		RulesFile:           v.GetString("rules_file"),
		Concurrency:         v.GetInt("concurrency"),

		DatabaseURL:    v.GetString("database_url"),
		AWSRegion:      v.GetString("aws_region"),
		SampleSize:     v.GetInt("sample_size"),
		ExecuteTimeout: v.GetDuration("execute_timeout"),

		DuplicateThreshold: v.GetFloat64("duplicate_threshold"),
		NullThreshold:      v.GetFloat64("null_threshold"),

		EnvLogLevel: os.Getenv("LOG_LEVEL"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if _, err := plan.ParseJoinKind(config.Join); err != nil {
		return nil, errors.NewConfigError("config", "invalid join", err)
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("confidence_threshold", constants.DefaultConfidenceThreshold)
	v.SetDefault("join", "full_outer")
	v.SetDefault("left_prefix", constants.DefaultLeftPrefix)
	v.SetDefault("right_prefix", constants.DefaultRightPrefix)
	v.SetDefault("concurrency", constants.MaxConcurrentPairs)
	v.SetDefault("sample_size", constants.DefaultSampleSize)
	v.SetDefault("execute_timeout", constants.ExecuteTimeout)
	v.SetDefault("duplicate_threshold", constants.DefaultDuplicateThreshold)
	v.SetDefault("null_threshold", constants.DefaultNullThreshold)
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// EngineOptions translates the policy settings into engine options.
func (c *Config) EngineOptions() ([]tablemerge.Option, error) {
	kind, err := plan.ParseJoinKind(c.Join)
	if err != nil {
		return nil, err
	}
	return []tablemerge.Option{
		tablemerge.WithConfidenceThreshold(c.ConfidenceThreshold),
		tablemerge.WithJoinKind(kind),
		tablemerge.WithJoinKey(c.JoinKey),
		tablemerge.WithPrefixes(c.LeftPrefix, c.RightPrefix),
		tablemerge.WithRulesFile(c.RulesFile),
		tablemerge.WithConcurrency(c.Concurrency),
		tablemerge.WithDuplicateThreshold(c.DuplicateThreshold),
	}, nil
}

// QualityOptions translates the quality thresholds into profile options.
func (c *Config) QualityOptions() []quality.Option {
	return []quality.Option{
		quality.WithDuplicateThreshold(c.DuplicateThreshold),
		quality.WithNullThreshold(c.NullThreshold),
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
