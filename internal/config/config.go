// Package config provides Viper-based configuration loading for the yields preview engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for the rule store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Rule database drivers.
const (
	DriverYAML     = "yaml"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// RuleDBConfig selects where the modifier/requirement tables are read from.
type RuleDBConfig struct {
	// Driver is one of "yaml", "sqlite", or "postgres".
	Driver string `mapstructure:"driver"`
	// Path is the YAML table directory or the sqlite database file.
	// Unused by the postgres driver, which reads the database section.
	Path string `mapstructure:"path"`
}

// PreviewConfig tunes how previews are computed.
type PreviewConfig struct {
	// ApplyBaselinePercent multiplies flat deltas by the player's standing
	// percent bonus at finalisation time.
	ApplyBaselinePercent bool `mapstructure:"apply_baseline_percent"`
	// Strict reports malformed rules through zap's DPanic level, which panics
	// under a development logger.
	Strict bool `mapstructure:"strict"`
	// MaxAttachDepth bounds EFFECT_ATTACH_MODIFIERS nesting.
	MaxAttachDepth int `mapstructure:"max_attach_depth"`
	// YieldTypes is the list of yield types always present in a result.
	YieldTypes []string `mapstructure:"yield_types"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	RuleDB   RuleDBConfig   `mapstructure:"ruledb"`
	Database DatabaseConfig `mapstructure:"database"`
	Preview  PreviewConfig  `mapstructure:"preview"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRuleDB(c.RuleDB); err != nil {
		errs = append(errs, err.Error())
	}
	if c.RuleDB.Driver == DriverPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validatePreview(c.Preview); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRuleDB(r RuleDBConfig) error {
	switch r.Driver {
	case DriverYAML, DriverSQLite:
		if r.Path == "" {
			return fmt.Errorf("ruledb.path must not be empty for driver %q", r.Driver)
		}
	case DriverPostgres:
	default:
		return fmt.Errorf("ruledb.driver must be one of [yaml, sqlite, postgres], got %q", r.Driver)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePreview(p PreviewConfig) error {
	var errs []string
	if p.MaxAttachDepth < 1 {
		errs = append(errs, fmt.Sprintf("preview.max_attach_depth must be >= 1, got %d", p.MaxAttachDepth))
	}
	if len(p.YieldTypes) == 0 {
		errs = append(errs, "preview.yield_types must not be empty")
	}
	for _, yt := range p.YieldTypes {
		if !strings.HasPrefix(yt, "YIELD_") {
			errs = append(errs, fmt.Sprintf("preview.yield_types entry %q must start with YIELD_", yt))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with YIELDS_ prefix
	v.SetEnvPrefix("YIELDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultYieldTypes lists the yields tracked by the base game.
var DefaultYieldTypes = []string{
	"YIELD_FOOD",
	"YIELD_PRODUCTION",
	"YIELD_GOLD",
	"YIELD_SCIENCE",
	"YIELD_CULTURE",
	"YIELD_HAPPINESS",
	"YIELD_DIPLOMACY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("ruledb.driver", DriverYAML)
	v.SetDefault("ruledb.path", "content/gameinfo")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "yields")
	v.SetDefault("database.password", "yields")
	v.SetDefault("database.name", "yields")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("preview.apply_baseline_percent", false)
	v.SetDefault("preview.strict", false)
	v.SetDefault("preview.max_attach_depth", 8)
	v.SetDefault("preview.yield_types", DefaultYieldTypes)
}
