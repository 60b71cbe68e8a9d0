package cli

import (
	"github.com/spf13/cobra"
)

// Command annotations read by the root pre-run hook.
const (
	// annNoStore marks commands that never touch the database.
	annNoStore = "daybook/no-store"
	// annGated marks commands that need the PIN while the diary is locked.
	annGated = "daybook/gated"
)

// Command builds the root command with every subcommand attached.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "daybook",
		Short: "A private, local diary",
		Long: `daybook keeps dated diary entries with mood, category, tags and media
in a local SQLite database, and can export or import the whole diary as JSON.

Run 'daybook add --title "..." --content "..."' to write an entry and
'daybook serve' to expose a loopback JSON API for local UIs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annNoStore] != "" {
				return nil
			}
			if err := a.setup(cmd); err != nil {
				return err
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			if cmd.Annotations[annGated] != "" {
				return a.requireUnlocked(cmd)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (.json or .toml)")
	pf.StringVarP(&a.dbPath, "db", "d", "", "database file (default daybook.db)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: text|json")
	pf.StringVar(&a.logFile, "log-file", "", "write logs to a rotated file instead of stderr")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this file at exit")

	root.AddCommand(
		a.newListCmd(),
		a.newShowCmd(),
		a.newAddCmd(),
		a.newEditCmd(),
		a.newFavCmd(),
		a.newRmCmd(),
		a.newCalendarCmd(),
		a.newStatsCmd(),
		a.newSettingsCmd(),
		a.newPinCmd(),
		a.newUnlockCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
		a.newServeCmd(),
		a.newVersionCmd(),
	)
	return root
}

func gated() map[string]string {
	return map[string]string{annGated: "true"}
}
