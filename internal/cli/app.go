// Package cli implements the daybook command line on top of cobra.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/daybook/internal/config"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/metrics"
	"github.com/dmitrijs2005/daybook/internal/repositories/entries"
	"github.com/dmitrijs2005/daybook/internal/repositories/settings"
	"github.com/dmitrijs2005/daybook/internal/services"
	"github.com/dmitrijs2005/daybook/internal/snapshot"
	"github.com/dmitrijs2005/daybook/internal/storage"
)

// App owns the process-wide resources shared by every command: the
// configuration, logger, storage engine and metrics registry.
type App struct {
	cfg       *config.Config
	log       logging.Logger
	logCloser interface{ Close() error }

	eng       *storage.Engine
	registry  *prometheus.Registry
	collector *metrics.Collector

	entries  services.EntryService
	settings services.SettingsService
	codec    *snapshot.Codec

	stdin *bufio.Reader

	// flags bound on the root command
	configPath  string
	dbPath      string
	logLevel    string
	logFormat   string
	logFile     string
	metricsFile string
}

func NewApp() *App {
	return &App{log: logging.Nop()}
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	a := NewApp()
	root := a.Command()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := a.Close(); cerr != nil {
		fmt.Fprintln(os.Stderr, "Error:", cerr)
		if err == nil {
			return 1
		}
	}
	if err != nil {
		return 1
	}
	return 0
}

// setup loads the configuration and builds the logger.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = a.dbPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if flags.Changed("log-file") {
		cfg.LogFile = a.logFile
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = a.metricsFile
	}
	a.cfg = cfg

	log, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return err
	}
	a.log, a.logCloser = log, closer
	return nil
}

// open starts the storage engine and wires the repositories, services and
// snapshot codec to it.
func (a *App) open(ctx context.Context) error {
	a.registry = prometheus.NewRegistry()
	a.collector = metrics.NewCollector(a.registry)

	eng, err := storage.Open(ctx, storage.Options{
		Path:        a.cfg.DBPath,
		BusyTimeout: a.cfg.BusyTimeout,
		Logger:      a.log.With("component", "storage"),
		Observer:    a.collector,
	})
	if err != nil {
		return err
	}
	a.eng = eng

	entryRepo := entries.NewSQLiteRepository(eng.DB(), a.collector)
	settingsRepo := settings.NewSQLiteRepository(eng.DB(), a.log, a.collector)

	a.entries = services.NewEntryService(entryRepo, services.WithLogger(a.log))
	a.settings = services.NewSettingsService(settingsRepo, services.WithLogger(a.log))
	a.codec = snapshot.New(eng.DB(), entryRepo,
		snapshot.WithLogger(a.log.With("component", "snapshot")),
		snapshot.WithImportCounter(a.collector.ImportedRecords()),
	)
	return nil
}

// Close dumps metrics when configured and releases the engine and log file.
func (a *App) Close() error {
	var errs []error
	if a.eng != nil {
		if a.cfg.MetricsFile != "" {
			if err := metrics.WriteTextfile(a.cfg.MetricsFile, a.registry); err != nil {
				errs = append(errs, fmt.Errorf("write metrics: %w", err))
			}
		}
		if err := a.eng.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
		a.eng = nil
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
	return errors.Join(errs...)
}
