package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/daybook/internal/models"
)

func (a *App) newCalendarCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:         "calendar",
		Short:       "Show the entries of a month grouped by day",
		Args:        cobra.NoArgs,
		Annotations: gated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := time.Now()
			if month != "" {
				var err error
				if m, err = time.ParseInLocation("2006-01", month, time.Local); err != nil {
					return fmt.Errorf("--month must be YYYY-MM: %w", err)
				}
			}

			days, err := a.entries.ByDay(cmd.Context(), m.Year(), m.Month())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, m.Format("January 2006"))
			if len(days) == 0 {
				fmt.Fprintln(out, "  no entries")
				return nil
			}
			for _, d := range days {
				fmt.Fprintf(out, "%3d  ", d.Day)
				for i, e := range d.Entries {
					if i > 0 {
						fmt.Fprint(out, "     ")
					}
					fmt.Fprintf(out, "%s  %-5s  %s\n", e.ID, e.Mood.Label(), headline(e))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current)")
	return cmd
}

func (a *App) newStatsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:         "stats",
		Short:       "Show diary statistics",
		Args:        cobra.NoArgs,
		Annotations: gated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.entries.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, st)
			}
			fmt.Fprintf(out, "Entries:      %d\n", st.Total)
			fmt.Fprintf(out, "Favorites:    %d\n", st.Favorites)
			fmt.Fprintf(out, "Average mood: %.2f\n", st.AverageMood)
			fmt.Fprintf(out, "Streak:       %d days\n", st.Streak)
			fmt.Fprintln(out, "Moods:")
			for _, m := range models.Moods {
				fmt.Fprintf(out, "  %-6s %d\n", m.Label(), st.ByMood[m])
			}
			fmt.Fprintln(out, "Categories:")
			for _, c := range models.Categories {
				fmt.Fprintf(out, "  %-9s %d\n", c, st.ByCategory[c])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	return cmd
}
