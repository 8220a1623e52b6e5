package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when neither --config nor CONFIG_FILE is set.
const DefaultPath = "playlist-manager.yaml"

var validLogLevels = map[string]bool{
	"DEBUG": true,
	"INFO":  true,
	"WARN":  true,
	"ERROR": true,
}

// Config holds the complete application configuration
type Config struct {
	// HTTP server settings
	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`

	// Log settings
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// Source cache and probe log database
	Cache struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"cache"`

	// Remote playlist fetching
	Fetch struct {
		Timeout       time.Duration `yaml:"timeout"`
		UserAgent     string        `yaml:"user_agent"`
		StaleFallback bool          `yaml:"stale_fallback"`
	} `yaml:"fetch"`

	// Reachability probing
	Probe struct {
		Timeout       time.Duration `yaml:"timeout"`
		BatchSize     int           `yaml:"batch_size"`
		SecureContext bool          `yaml:"secure_context"`
		LogRetention  time.Duration `yaml:"log_retention"`
	} `yaml:"probe"`

	// Undo history
	History struct {
		Size int `yaml:"size"`
	} `yaml:"history"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	cfg.HTTP.Port = "8080"
	cfg.Log.Level = "INFO"
	cfg.Cache.DBPath = "playlist-manager.db"

	cfg.Fetch.Timeout = 30 * time.Second
	cfg.Fetch.UserAgent = "playlist-manager/1.0"

	cfg.Probe.Timeout = 10 * time.Second
	cfg.Probe.BatchSize = 5
	cfg.Probe.SecureContext = false
	cfg.Probe.LogRetention = 7 * 24 * time.Hour

	cfg.History.Size = 10

	return cfg
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errs []string

	if c.HTTP.Port == "" {
		errs = append(errs, "HTTP port is required")
	}
	if !validLogLevels[strings.ToUpper(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log level %q must be one of DEBUG, INFO, WARN, ERROR", c.Log.Level))
	}
	if c.Cache.DBPath == "" {
		errs = append(errs, "cache database path is required")
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, "fetch timeout must be positive")
	}
	if c.Probe.Timeout <= 0 {
		errs = append(errs, "probe timeout must be positive")
	}
	if c.Probe.BatchSize <= 0 {
		errs = append(errs, "probe batch size must be positive")
	}
	if c.Probe.LogRetention <= 0 {
		errs = append(errs, "probe log retention must be positive")
	}
	if c.History.Size <= 0 {
		errs = append(errs, "history size must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// SlogLevel returns the configured log level for log/slog.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variable overrides, in that order.
//
// path comes from the --config flag; when empty, CONFIG_FILE is consulted and
// then DefaultPath. A missing file is an error only when it was named explicitly.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_FILE")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		cfg, err = LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	p := &envParser{}

	p.parseString("PORT", &cfg.HTTP.Port)
	p.parseEnum("LOG_LEVEL", &cfg.Log.Level, validLogLevels)
	p.parseString("CACHE_DB_PATH", &cfg.Cache.DBPath)
	p.parseDuration("FETCH_TIMEOUT", &cfg.Fetch.Timeout)
	p.parseString("USER_AGENT", &cfg.Fetch.UserAgent)
	p.parseBool("FETCH_STALE_FALLBACK", &cfg.Fetch.StaleFallback)
	p.parseDuration("PROBE_TIMEOUT", &cfg.Probe.Timeout)
	p.parseInt("PROBE_BATCH_SIZE", &cfg.Probe.BatchSize)
	p.parseBool("PROBE_SECURE_CONTEXT", &cfg.Probe.SecureContext)
	p.parseDuration("PROBE_LOG_RETENTION", &cfg.Probe.LogRetention)
	p.parseInt("HISTORY_SIZE", &cfg.History.Size)

	return p.err()
}

// Print writes the effective configuration to w
func (c *Config) Print(w io.Writer) {
	fmt.Fprintf(w, "httpPort: %v\n", c.HTTP.Port)
	fmt.Fprintf(w, "logLevel: %v\n", c.Log.Level)
	fmt.Fprintf(w, "cacheDBPath: %v\n", c.Cache.DBPath)
	fmt.Fprintf(w, "fetchTimeout: %v\n", c.Fetch.Timeout)
	fmt.Fprintf(w, "userAgent: %v\n", c.Fetch.UserAgent)
	fmt.Fprintf(w, "fetchStaleFallback: %v\n", c.Fetch.StaleFallback)
	fmt.Fprintf(w, "probeTimeout: %v\n", c.Probe.Timeout)
	fmt.Fprintf(w, "probeBatchSize: %v\n", c.Probe.BatchSize)
	fmt.Fprintf(w, "probeSecureContext: %v\n", c.Probe.SecureContext)
	fmt.Fprintf(w, "probeLogRetention: %v\n", c.Probe.LogRetention)
	fmt.Fprintf(w, "historySize: %v\n", c.History.Size)
}
