package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/niiboye001/genesis-invoice/internal/container"
	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
)

// seed stores invoices in a file store under dir and returns their ids
func seed(t *testing.T, dir string, invoices ...*entity.Invoice) []string {
	t.Helper()

	cfg := container.DefaultConfig()
	cfg.Store.Dir = dir
	c, err := container.NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	ids := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		saved, err := c.Services().Invoices.Upsert(context.Background(), inv)
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}
	return ids
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("store:\n  driver: file\n"), 0644))

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", configFile, "--data-dir", dir}, args...))

	err := root.Execute()
	require.NoError(t, closeApp())
	return out.String(), err
}

func sampleInvoices() []*entity.Invoice {
	return []*entity.Invoice{
		{
			InvoiceNumber: "INV-100-1", ClientName: "Ama Mensah", ClientEmail: "ama@example.com",
			DueDate: "10/03/2020", Status: entity.StatusPending,
			LineItems: []entity.LineItem{{Description: "Design", Quantity: "2", Price: "150"}},
		},
		{
			InvoiceNumber: "INV-200-2", ClientName: "Kofi Boateng",
			DueDate: "20/03/2020", Status: entity.StatusPaid,
			LineItems: []entity.LineItem{{Description: "Audit", Quantity: "1", Price: "50"}},
		},
	}
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, sampleInvoices()...)

	out, err := run(t, dir, "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NUMBER")
	assert.Contains(t, lines[1], "INV-200-2", "due date descending")
	assert.Contains(t, lines[2], "Overdue")
	assert.Contains(t, lines[2], "GH₵300.00")

	out, err = run(t, dir, "list", "--status", "paid")
	require.NoError(t, err)
	assert.NotContains(t, out, "INV-100-1")
	assert.Contains(t, out, "INV-200-2")

	out, err = run(t, dir, "list", "--json", "--search", "ama")
	require.NoError(t, err)
	assert.Contains(t, out, `"calculatedStatus": "Overdue"`)

	_, err = run(t, dir, "list", "--sort", "client")
	assert.Error(t, err)
}

func TestShowAndToggleCommands(t *testing.T) {
	dir := t.TempDir()
	ids := seed(t, dir, sampleInvoices()...)

	out, err := run(t, dir, "show", ids[0])
	require.NoError(t, err)
	assert.Contains(t, out, `"invoiceNumber": "INV-100-1"`)
	assert.Contains(t, out, `"total": "300.00"`)

	out, err = run(t, dir, "toggle-paid", ids[0])
	require.NoError(t, err)
	assert.Equal(t, "INV-100-1 is now Paid\n", out)

	_, err = run(t, dir, "show", "missing")
	assert.Error(t, err)

	_, err = run(t, dir, "show")
	assert.Error(t, err, "id argument is required")
}

func TestDeleteCommand(t *testing.T) {
	dir := t.TempDir()
	ids := seed(t, dir, sampleInvoices()...)

	out, err := run(t, dir, "delete", ids[1])
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted")

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "INV-200-2")

	_, err = run(t, dir, "delete", "missing")
	assert.NoError(t, err)
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	ids := seed(t, dir, sampleInvoices()...)
	target := filepath.Join(t.TempDir(), "out.xlsx")

	_, err := run(t, dir, "export", "--out", target)
	require.NoError(t, err)

	f, err := excelize.OpenFile(target)
	require.NoError(t, err)
	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	require.NoError(t, f.Close())

	_, err = run(t, dir, "export", "--id", ids[0], "--out", target)
	require.NoError(t, err)
	f, err = excelize.OpenFile(target)
	require.NoError(t, err)
	assert.Len(t, f.GetSheetList(), 2)
	require.NoError(t, f.Close())

	missing := filepath.Join(t.TempDir(), "missing.xlsx")
	_, err = run(t, dir, "export", "--id", "nope", "--out", missing)
	assert.Error(t, err)
	assert.NoFileExists(t, missing)
}

func TestPrintCommand(t *testing.T) {
	dir := t.TempDir()
	ids := seed(t, dir, sampleInvoices()...)

	out, err := run(t, dir, "print", ids[0])
	require.NoError(t, err)
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "INV-100-1")

	target := filepath.Join(t.TempDir(), "invoice.html")
	_, err = run(t, dir, "print", ids[0], "--out", target)
	require.NoError(t, err)
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Ama Mensah")
}

func TestNumberCommand(t *testing.T) {
	out, err := run(t, t.TempDir(), "number")
	require.NoError(t, err)
	assert.Regexp(t, `^INV-\d+-\d{1,3}\n$`, out)
}
