package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const records = `[{"id":"E1","product_line":"pl_sea_import_lcl","origin_port_code":"CNSHA","origin_port_name":"Shanghai",
"destination_port_code":"INMAA","destination_port_name":"Chennai ICD","incoterm":"FOB","cargo_weight_kg":null,
"cargo_cbm":1.5,"is_dangerous":false}]`

func TestEvaluateCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.json")
	require.NoError(t, os.WriteFile(path, []byte(records), 0o600))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-p", path, "-t", path, "--min-accuracy", "99"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "100.00%")
	assert.Contains(t, out.String(), "EXCEPTIONAL")
}

func TestEvaluateCommand_BelowThreshold(t *testing.T) {
	dir := t.TempDir()
	truth := filepath.Join(dir, "truth.json")
	preds := filepath.Join(dir, "preds.json")
	require.NoError(t, os.WriteFile(truth, []byte(records), 0o600))
	require.NoError(t, os.WriteFile(preds, []byte(`[]`), 0o600))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-p", preds, "-t", truth, "--min-accuracy", "50"})

	assert.ErrorContains(t, cmd.Execute(), "below 50.00%")
}
