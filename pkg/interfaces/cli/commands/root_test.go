package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDataset drops a minimal but complete dataset: a template assembly with
// one variant, a fastener BOM line, stock, and one open order of each kind.
func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"parts.csv": "id,name,is_template,trackable,assembly,variant_of,pack_size,minimum_stock,default_location_id,category_id\n" +
			"100,Widget,1,0,1,,,,,\n" +
			"101,Widget Mk1,0,1,1,100,,,,\n" +
			"200,Fastener,0,0,0,,,,,\n",
		"stock.csv": "id,part_id,location_id,quantity,serial,batch,belongs_to,status\n" +
			"400,200,,50,,,,ok\n",
		"bom.csv": "id,assembly_part_id,sub_part_id,quantity,reference,inherited,allow_variants,optional,consumable,validated,substitutes\n" +
			"500,100,200,4,F1,1,0,0,0,0,\n",
		"builds.csv": "id,reference,part_id,quantity,completed,status,target_date\n" +
			"600,BO-1,101,10,0,pending,2026-09-15\n",
		"sales_orders.csv": "id,reference,status,target_date\n" +
			"800,SO-1,pending,2026-10-01\n",
		"sales_order_lines.csv": "id,order_id,part_id,quantity,shipped,target_date\n" +
			"801,800,200,5,0,\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(nil, "")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestForecastCommand(t *testing.T) {
	dir := writeDataset(t)

	out, err := runCommand(t, "forecast", "200", "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Outgoing Sales Order")
	assert.Contains(t, out, "Stock required for Build Order")
	assert.Contains(t, out, "2026-10-01")
}

func TestRequirementsCommand(t *testing.T) {
	dir := writeDataset(t)

	out, err := runCommand(t, "requirements", "200", "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Requirements for part 200")
	assert.Contains(t, out, "Available stock:          50")
}

func TestBomShowCommand(t *testing.T) {
	dir := writeDataset(t)

	out, err := runCommand(t, "bom", "show", "101", "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Effective BOM for assembly 101")
	assert.Contains(t, out, "200")
}

func TestBomValidateCommand(t *testing.T) {
	dir := writeDataset(t)

	out, err := runCommand(t, "bom", "validate", "100", "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Assembly 100: STALE")
}

func TestAllocateBuildCommand(t *testing.T) {
	dir := writeDataset(t)

	out, err := runCommand(t, "allocate", "build", "600", "500", "400", "4", "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Allocated 4 of stock item 400 to build 600")
}

func TestAllocateAvailableCommand(t *testing.T) {
	dir := writeDataset(t)

	out, err := runCommand(t, "allocate", "available", "400", "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Stock item 400 available: 50")
}

func TestSerialsExtractCommandNeedsNoDataset(t *testing.T) {
	out, err := runCommand(t, "serials", "extract", "1-3", "--quantity", "3")
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestMissingDatasetDirectory(t *testing.T) {
	_, err := runCommand(t, "forecast", "200")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STOCKCORE_DATA")
}

func TestUnknownFormatRejected(t *testing.T) {
	dir := writeDataset(t)

	_, err := runCommand(t, "forecast", "200", "--data", dir, "--format", "xml")
	require.Error(t, err)
}

func TestInvalidPartIDRejected(t *testing.T) {
	_, err := runCommand(t, "forecast", "abc")
	require.Error(t, err)
}
