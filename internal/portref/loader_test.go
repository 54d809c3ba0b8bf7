package portref_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"freightx/internal/domain"
	"freightx/internal/portref"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_JSONWithDefaultOverrides(t *testing.T) {
	path := writeFile(t, "ports.json", `[
		{"code": "INMAA", "name": "Chennai"},
		{"code": "INMAA", "name": "Chennai ICD"},
		{"code": "DEHAM", "name": "Hamburg Port"}
	]`)

	table, err := portref.Load(path, "")
	require.NoError(t, err)

	name, _ := table.Resolve("INMAA")
	assert.Equal(t, "Chennai ICD", name)
	name, _ = table.Resolve("DEHAM")
	assert.Equal(t, "Hamburg", name)
}

func TestLoad_OverridesFileWins(t *testing.T) {
	path := writeFile(t, "ports.json", `[{"code": "INMAA", "name": "Chennai"}]`)
	overrides := writeFile(t, "overrides.json", `{"INMAA": "Madras"}`)

	table, err := portref.Load(path, overrides)
	require.NoError(t, err)

	name, _ := table.Resolve("INMAA")
	assert.Equal(t, "Madras", name)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeFile(t, "ports.json", `{"not": "an array"`)
	_, err := portref.Load(path, "")
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := portref.Load(filepath.Join(t.TempDir(), "nope.json"), "")
	assert.Error(t, err)
}

func TestReadEntries_XLSXWithHeader(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Country", "Name", "Code"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"India", "Chennai", "INMAA"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Singapore", "Singapore", "SGSIN"}))
	path := filepath.Join(t.TempDir(), "ports.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	entries, err := portref.ReadEntries(path)
	require.NoError(t, err)
	assert.Equal(t, []portref.Entry{
		{Code: "INMAA", Name: "Chennai"},
		{Code: "SGSIN", Name: "Singapore"},
	}, entries)
}
