package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func (a *App) newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:         "export",
		Short:       "Write every entry as a JSON snapshot",
		Args:        cobra.NoArgs,
		Annotations: gated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" || output == "-" {
				return a.codec.ExportTo(cmd.Context(), cmd.OutOrStdout())
			}
			data, err := a.codec.Export(cmd.Context())
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, append(data, '\n'), 0o600); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (a *App) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a JSON snapshot into the diary",
		Long: `import applies every entry of the snapshot in one transaction. Entries
with the same id are overwritten; all other entries are kept. Use "-" to
read the snapshot from stdin.`,
		Args:        cobra.ExactArgs(1),
		Annotations: gated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				n   int
				err error
			)
			if args[0] == "-" {
				n, err = a.codec.ImportFrom(cmd.Context(), a.input(cmd))
			} else {
				f, oerr := os.Open(args[0])
				if oerr != nil {
					return fmt.Errorf("open snapshot: %w", oerr)
				}
				defer f.Close()
				n, err = a.codec.ImportFrom(cmd.Context(), f)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", n)
			return nil
		},
	}
}
