package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func numberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "number",
		Short: "Print a fresh invoice number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), app.Services().Invoices.NextInvoiceNumber())
			return nil
		},
	}
}
