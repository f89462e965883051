package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_WritesReport(t *testing.T) {
	dir := t.TempDir()
	orders := filepath.Join(dir, "order_products.csv")
	products := filepath.Join(dir, "products.csv")
	out := filepath.Join(dir, "output", "report.csv")
	require.NoError(t, os.WriteFile(orders, []byte("order_id,product_id,add_to_cart_order,reordered\n1,1,1,0\n1,1,2,1\n2,2,1,0\n"), 0o644))
	require.NoError(t, os.WriteFile(products, []byte("product_id,product_name,aisle_id,department_id\n1,a,1,10\n2,b,2,20\n"), 0o644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{orders, products, out, "--log-level", "error"})
	require.NoError(t, cmd.Execute())

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "department_id,number_of_orders,number_of_first_orders,percentage\n10,2,1,0.50\n20,1,1,1.00\n", string(got))
}

func TestExecute_WrongArgCountPrintsUsage(t *testing.T) {
	var stderr bytes.Buffer
	code := execute([]string{"only-one.csv"}, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "accepts 3 arg(s), received 1")
	assert.Contains(t, stderr.String(), "Usage: purchase-analytics <order_products.csv> <products.csv> <report.csv>")
}

func TestExecute_UnknownFlagIsReported(t *testing.T) {
	var stderr bytes.Buffer
	code := execute([]string{"--nope", "a.csv", "b.csv", "c.csv"}, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unknown flag: --nope")
}

func TestExecute_MissingInputIsReported(t *testing.T) {
	dir := t.TempDir()
	var stderr bytes.Buffer
	code := execute([]string{
		filepath.Join(dir, "absent.csv"), filepath.Join(dir, "products.csv"), filepath.Join(dir, "report.csv"),
		"--log-level", "error",
	}, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Erreur : ")
	assert.NoFileExists(t, filepath.Join(dir, "report.csv"))
}

func TestNewRootCmd_FlagsBoundToConfig(t *testing.T) {
	assert.NotPanics(t, func() { newRootCmd() })
}
