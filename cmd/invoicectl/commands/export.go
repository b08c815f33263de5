package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/niiboye001/genesis-invoice/internal/domain/invoice"
)

func exportCmd() *cobra.Command {
	var (
		id, out                       string
		status, search, sortBy, order string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export invoices to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}

			documents := app.Services().Documents
			if id != "" {
				err = documents.ExportInvoice(cmd.Context(), id, f)
			} else {
				var query invoice.ListQuery
				query, err = invoice.ParseListQuery(status, search, sortBy, order)
				if err == nil {
					err = documents.ExportInvoices(cmd.Context(), query, f)
				}
			}

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

	cmd.Flags().StringVar(&id, "id", "", "export a single invoice with its line items")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output .xlsx file")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&search, "search", "", "match number, client name or email")
	cmd.Flags().StringVar(&sortBy, "sort", "date", "sort by date or amount")
	cmd.Flags().StringVar(&order, "order", "desc", "asc or desc")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
