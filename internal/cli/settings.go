package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/services"
)

func (a *App) newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings.Load(cmd.Context())
			pin := "not set"
			if s.HasPIN() {
				pin = "set"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "theme:          %s\n", s.Theme)
			fmt.Fprintf(out, "view:           %s\n", s.ViewMode)
			fmt.Fprintf(out, "security:       %t\n", s.SecurityEnabled)
			fmt.Fprintf(out, "pin:            %s\n", pin)
			fmt.Fprintf(out, "biometrics:     %t\n", s.BiometricsEnabled)
			fmt.Fprintf(out, "daily reminder: %t at %s\n", s.DailyReminder, s.ReminderTime)
			return nil
		},
	}

	var (
		theme, view, reminderTime string
		reminder, biometrics      bool
	)
	set := &cobra.Command{
		Use:         "set",
		Short:       "Change preferences; only the given flags are applied",
		Args:        cobra.NoArgs,
		Annotations: gated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p services.SettingsPatch
			fl := cmd.Flags()
			if fl.Changed("theme") {
				t := models.Theme(theme)
				p.Theme = &t
			}
			if fl.Changed("view") {
				v := models.ViewMode(view)
				p.ViewMode = &v
			}
			if fl.Changed("reminder") {
				p.DailyReminder = &reminder
			}
			if fl.Changed("reminder-time") {
				p.ReminderTime = &reminderTime
			}
			if fl.Changed("biometrics") {
				p.BiometricsEnabled = &biometrics
			}
			if _, err := a.settings.Update(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "settings saved")
			return nil
		},
	}
	fl := set.Flags()
	fl.StringVar(&theme, "theme", "", "light|dark")
	fl.StringVar(&view, "view", "", "list|grid|calendar")
	fl.BoolVar(&reminder, "reminder", false, "enable the daily reminder")
	fl.StringVar(&reminderTime, "reminder-time", "", "reminder time as HH:MM")
	fl.BoolVar(&biometrics, "biometrics", false, "allow biometric unlock in UIs")

	cmd.AddCommand(show, set)
	return cmd
}

func (a *App) newPinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "Manage the PIN that locks the diary",
	}

	set := &cobra.Command{
		Use:         "set",
		Short:       "Set or change the PIN and enable security",
		Args:        cobra.NoArgs,
		Annotations: gated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := a.readPIN(cmd, "New PIN (4-6 digits): ")
			if err != nil {
				return err
			}
			again, err := a.readPIN(cmd, "Repeat PIN: ")
			if err != nil {
				return err
			}
			if pin != again {
				return fmt.Errorf("%w: PINs do not match", common.ErrValidation)
			}
			if err := a.settings.SetPIN(cmd.Context(), pin); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PIN set; the diary is now locked")
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:         "clear",
		Short:       "Remove the PIN and disable security",
		Args:        cobra.NoArgs,
		Annotations: gated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.settings.ClearPIN(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PIN cleared")
			return nil
		},
	}

	cmd.AddCommand(set, clearCmd)
	return cmd
}

func (a *App) newUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Check the PIN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if !a.settings.Locked(ctx) {
				fmt.Fprintln(out, "security is disabled")
				return nil
			}
			pin, err := a.readPIN(cmd, "PIN: ")
			if err != nil {
				return err
			}
			if err := a.settings.Unlock(ctx, pin); err != nil {
				if errors.Is(err, common.ErrLocked) {
					return fmt.Errorf("%w: wrong PIN", err)
				}
				return err
			}
			fmt.Fprintln(out, "PIN accepted")
			return nil
		},
	}
}
