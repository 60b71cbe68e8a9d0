// Package config loads runtime configuration for the daybook CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c/--config. Files ending in
//     ".toml" are decoded as TOML, everything else as JSON.
//  3. DAYBOOK_* environment variables.
//  4. Command-line flags, applied by internal/cli on top of the result.
//
// # File schema
//
// Durations accept strings like "5s" (and integer nanoseconds in JSON):
//
//	{
//	  "db_path": "/home/me/.daybook/daybook.db",
//	  "busy_timeout": "5s",
//	  "log_level": "info",
//	  "log_format": "json",
//	  "log_file": "/home/me/.daybook/daybook.log",
//	  "listen_addr": "127.0.0.1:8765",
//	  "metrics_file": ""
//	}
//
// Environment variables: DAYBOOK_DB, DAYBOOK_BUSY_TIMEOUT, DAYBOOK_LOG_LEVEL,
// DAYBOOK_LOG_FORMAT, DAYBOOK_LOG_FILE, DAYBOOK_LISTEN_ADDR, DAYBOOK_METRICS_FILE.
package config
