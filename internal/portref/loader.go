package portref

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"freightx/internal/domain"
)

// Load reads the reference file at path (JSON array or .xlsx sheet) and an
// optional JSON overrides file mapping code to canonical name. The built-in
// DefaultOverrides apply first; file overrides replace them per code.
func Load(path, overridesPath string) (*Table, error) {
	entries, err := ReadEntries(path)
	if err != nil {
		return nil, err
	}

	overrides := make(map[string]string, len(DefaultOverrides))
	for code, name := range DefaultOverrides {
		overrides[code] = name
	}
	if overridesPath != "" {
		extra, err := readOverrides(overridesPath)
		if err != nil {
			return nil, err
		}
		for code, name := range extra {
			overrides[code] = name
		}
	}

	return New(entries, overrides)
}

// ReadEntries decodes raw reference rows from a JSON or XLSX file.
func ReadEntries(path string) ([]Entry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	default:
		return readJSON(path)
	}
}

func readJSON(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading port reference: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", domain.ErrInvalidReference, path, err)
	}
	return entries, nil
}

// readXLSX reads the first sheet. A header row naming "code" and "name"
// columns is honoured; without one, columns A and B are used.
func readXLSX(path string) ([]Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening port reference workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet: %v", domain.ErrInvalidReference, err)
	}

	codeCol, nameCol, start := 0, 1, 0
	if len(rows) > 0 {
		for i, cell := range rows[0] {
			switch strings.ToLower(strings.TrimSpace(cell)) {
			case "code", "port_code", "locode":
				codeCol, start = i, 1
			case "name", "port_name":
				nameCol, start = i, 1
			}
		}
	}

	var entries []Entry
	for _, row := range rows[start:] {
		if len(row) <= codeCol || len(row) <= nameCol {
			continue
		}
		entries = append(entries, Entry{Code: row[codeCol], Name: row[nameCol]})
	}
	return entries, nil
}

func readOverrides(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading port overrides: %w", err)
	}
	var overrides map[string]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("%w: decoding overrides %s: %v", domain.ErrInvalidReference, path, err)
	}
	return overrides, nil
}
