package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func togglePaidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-paid <id>",
		Short: "Mark an invoice Paid, or a paid invoice Pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := app.Services().Invoices.TogglePaid(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", inv.InvoiceNumber, inv.Status)
			return nil
		},
	}
}
