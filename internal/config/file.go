package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/daybook/internal/timex"
)

// fileConfig is a DTO used exclusively for JSON/TOML decoding. Pointer
// fields distinguish "absent" from "empty" so missing keys keep earlier values.
type fileConfig struct {
	DBPath      *string         `json:"db_path" toml:"db_path"`
	BusyTimeout *timex.Duration `json:"busy_timeout" toml:"busy_timeout"`
	LogLevel    *string         `json:"log_level" toml:"log_level"`
	LogFormat   *string         `json:"log_format" toml:"log_format"`
	LogFile     *string         `json:"log_file" toml:"log_file"`
	ListenAddr  *string         `json:"listen_addr" toml:"listen_addr"`
	MetricsFile *string         `json:"metrics_file" toml:"metrics_file"`
}

// LoadFile overlays cfg with values from a JSON or TOML file, selected by
// extension (".toml" is TOML, anything else is JSON).
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set(&cfg.DBPath, fc.DBPath)
	set(&cfg.LogLevel, fc.LogLevel)
	set(&cfg.LogFormat, fc.LogFormat)
	set(&cfg.LogFile, fc.LogFile)
	set(&cfg.ListenAddr, fc.ListenAddr)
	set(&cfg.MetricsFile, fc.MetricsFile)
	if fc.BusyTimeout != nil {
		cfg.BusyTimeout = fc.BusyTimeout.Duration
	}
	return nil
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
