package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func printCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "print <id>",
		Short: "Write the printable HTML view of an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			documents := app.Services().Documents
			if out == "" {
				return documents.PrintInvoice(cmd.Context(), args[0], cmd.OutOrStdout())
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			err = documents.PrintInvoice(cmd.Context(), args[0], f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				_ = os.Remove(out)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output .html file (default stdout)")
	return cmd
}
