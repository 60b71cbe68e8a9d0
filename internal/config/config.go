package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the daybook CLI and its local API.
type Config struct {
	// DBPath is the SQLite database file. ":memory:" is accepted for throwaway runs.
	DBPath string
	// BusyTimeout is how long SQLite waits on a locked database before failing.
	BusyTimeout time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string

	// ListenAddr is the loopback address used by "daybook serve".
	ListenAddr string
	// MetricsFile, when set, receives a Prometheus text dump at exit.
	MetricsFile string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBPath = "daybook.db"
	c.BusyTimeout = 5 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.LogFile = ""
	c.ListenAddr = "127.0.0.1:8765"
	c.MetricsFile = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file at path (if non-empty) and DAYBOOK_* environment variables.
// Later sources take precedence; command-line flags are applied by the CLI on top.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays cfg with DAYBOOK_* variables found through lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"DAYBOOK_DB":           &cfg.DBPath,
		"DAYBOOK_LOG_LEVEL":    &cfg.LogLevel,
		"DAYBOOK_LOG_FORMAT":   &cfg.LogFormat,
		"DAYBOOK_LOG_FILE":     &cfg.LogFile,
		"DAYBOOK_LISTEN_ADDR":  &cfg.ListenAddr,
		"DAYBOOK_METRICS_FILE": &cfg.MetricsFile,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("DAYBOOK_BUSY_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DAYBOOK_BUSY_TIMEOUT: %w", err)
		}
		cfg.BusyTimeout = d
	}
	return nil
}
