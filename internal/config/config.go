// Package config provides Viper-based configuration loading for the Aviary engine.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
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

// StorageConfig selects and configures the save backend.
type StorageConfig struct {
	// Backend is one of "memory", "file", "sqlite" or "postgres".
	Backend string `mapstructure:"backend"`
	// Dir is the save directory of the file backend.
	Dir string `mapstructure:"dir"`
	// SQLitePath is the database file of the sqlite backend.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// GameConfig holds engine settings.
type GameConfig struct {
	// Slot is the save slot played by this process.
	Slot string `mapstructure:"slot"`
	// TickInterval is the idle tick period.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// ContentDir holds the species/ and scripts/ content directories.
	ContentDir string `mapstructure:"content_dir"`
	// BalanceFile optionally overrides the default balance tables.
	BalanceFile string `mapstructure:"balance_file"`
	// Starter is the species granted to an empty roster; empty disables it.
	Starter string `mapstructure:"starter"`
}

// AdvisorConfig selects the opponent move advisor.
type AdvisorConfig struct {
	// Kind is one of "random", "lua" or "claude".
	Kind string `mapstructure:"kind"`
	// Timeout bounds one advice request; the fallback move is used past it.
	Timeout time.Duration `mapstructure:"timeout"`
	// ScriptPath is a Lua file, or a directory whose *.lua files load in name order.
	ScriptPath string `mapstructure:"script_path"`
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	MaxTokens  int64  `mapstructure:"max_tokens"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
	Advisor  AdvisorConfig  `mapstructure:"advisor"`
}

var slotPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	add(validateLogging(c.Logging))
	add(validateStorage(c.Storage))
	if c.Storage.Backend == "postgres" {
		add(validateDatabase(c.Database))
	}
	add(validateGame(c.Game))
	add(validateAdvisor(c.Advisor))

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Backend {
	case "memory":
	case "file":
		if s.Dir == "" {
			return errors.New("storage.dir must not be empty for the file backend")
		}
	case "sqlite":
		if s.SQLitePath == "" {
			return errors.New("storage.sqlite_path must not be empty for the sqlite backend")
		}
	case "postgres":
	default:
		return fmt.Errorf("storage.backend must be one of [memory, file, sqlite, postgres], got %q", s.Backend)
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

func validateGame(g GameConfig) error {
	var errs []string
	if !slotPattern.MatchString(g.Slot) {
		errs = append(errs, fmt.Sprintf("game.slot must match %s, got %q", slotPattern, g.Slot))
	}
	if g.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("game.tick_interval must be > 0, got %s", g.TickInterval))
	}
	if g.ContentDir == "" {
		errs = append(errs, "game.content_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAdvisor(a AdvisorConfig) error {
	var errs []string
	switch a.Kind {
	case "random":
	case "lua":
		if a.ScriptPath == "" {
			errs = append(errs, "advisor.script_path must not be empty for the lua advisor")
		}
	case "claude":
		if a.APIKey == "" {
			errs = append(errs, "advisor.api_key must not be empty for the claude advisor")
		}
	default:
		errs = append(errs, fmt.Sprintf("advisor.kind must be one of [random, lua, claude], got %q", a.Kind))
	}
	if a.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("advisor.timeout must be > 0, got %s", a.Timeout))
	}
	if a.MaxTokens < 1 {
		errs = append(errs, fmt.Sprintf("advisor.max_tokens must be >= 1, got %d", a.MaxTokens))
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
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with AVIARY_ prefix
	v.SetEnvPrefix("AVIARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.dir", "saves")
	v.SetDefault("storage.sqlite_path", "aviary.db")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "aviary")
	v.SetDefault("database.password", "aviary")
	v.SetDefault("database.name", "aviary")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("game.slot", "main")
	v.SetDefault("game.tick_interval", "1s")
	v.SetDefault("game.content_dir", "content")
	v.SetDefault("game.balance_file", "")
	v.SetDefault("game.starter", "kestrel")

	v.SetDefault("advisor.kind", "lua")
	v.SetDefault("advisor.timeout", "2s")
	v.SetDefault("advisor.script_path", "content/scripts/opponent.lua")
	v.SetDefault("advisor.model", "claude-sonnet-4-5")
	v.SetDefault("advisor.api_key", "")
	v.SetDefault("advisor.max_tokens", 128)
}
