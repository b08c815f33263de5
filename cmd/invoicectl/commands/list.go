package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/niiboye001/genesis-invoice/internal/domain/invoice"
)

func listCmd() *cobra.Command {
	var (
		status, search, sortBy, order string
		asJSON                        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := invoice.ParseListQuery(status, search, sortBy, order)
			if err != nil {
				return err
			}

			views, err := app.Services().Invoices.List(cmd.Context(), query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}

			currency := invoice.NewCurrencyFormatter(app.Config().Invoice.CurrencySymbol)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNUMBER\tCLIENT\tDUE\tSTATUS\tTOTAL")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					v.ID, v.InvoiceNumber, v.ClientName, v.DueDate, v.DerivedStatus, currency.Format(v.Totals.Total))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status: all, Draft, Pending, Paid, Overdue")
	cmd.Flags().StringVar(&search, "search", "", "match number, client name or email")
	cmd.Flags().StringVar(&sortBy, "sort", "date", "sort by date or amount")
	cmd.Flags().StringVar(&order, "order", "desc", "asc or desc")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
