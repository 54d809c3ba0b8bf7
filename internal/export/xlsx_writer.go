package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"freightx/internal/domain"
)

// SheetName is the worksheet the XLSX export writes to.
const SheetName = "Shipments"

// WriteXLSX writes records to a single-sheet workbook. Numeric columns are
// stored as numbers and nulls as empty cells.
func WriteXLSX(w io.Writer, records []domain.ShipmentRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := recordToCells(&records[i])
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func recordToCells(r *domain.ShipmentRecord) []interface{} {
	cells := make([]interface{}, len(Columns))
	for i, s := range recordToRow(r) {
		cells[i] = s
	}
	if r.CargoWeightKg != nil {
		cells[7] = *r.CargoWeightKg
	}
	if r.CargoCBM != nil {
		cells[8] = *r.CargoCBM
	}
	cells[9] = r.IsDangerous
	return cells
}
