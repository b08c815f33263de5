// Package commands defines the invoicectl CLI for working with the invoice store
// directly, without the HTTP server.
//
// Commands
//
//   - list         List invoices with derived status and totals
//   - show         Print one invoice as JSON
//   - delete       Remove an invoice
//   - toggle-paid  Flip an invoice between Paid and Pending
//   - export       Write invoices to an XLSX workbook
//   - print        Write the printable HTML view of an invoice
//   - number       Print a fresh invoice number
//
// The root command loads configuration and starts the container before any
// subcommand runs, and closes it afterwards.
package commands
