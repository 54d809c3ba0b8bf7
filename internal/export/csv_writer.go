package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"freightx/internal/domain"
)

// BOM is the UTF-8 byte order mark written ahead of CSV output so spreadsheet
// tools detect the encoding.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns is the header row shared by the CSV and XLSX exports. Names match
// the JSON field names.
var Columns = []string{
	"id",
	"product_line",
	"origin_port_code",
	"origin_port_name",
	"destination_port_code",
	"destination_port_name",
	"incoterm",
	"cargo_weight_kg",
	"cargo_cbm",
	"is_dangerous",
}

// Writer wraps csv.Writer for exporting shipment records.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteRecords converts records to CSV rows and writes them.
func (w *Writer) WriteRecords(records []domain.ShipmentRecord) error {
	for i := range records {
		if err := w.csv.Write(recordToRow(&records[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes a BOM, the header and every record to w.
func WriteCSV(w io.Writer, records []domain.ShipmentRecord) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	if err := cw.WriteRecords(records); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// recordToRow renders one record; null fields become empty cells.
func recordToRow(r *domain.ShipmentRecord) []string {
	row := make([]string, len(Columns))
	row[0] = r.EmailID
	if r.ProductLine != nil {
		row[1] = string(*r.ProductLine)
	}
	row[2] = formatString(r.OriginPortCode)
	row[3] = formatString(r.OriginPortName)
	row[4] = formatString(r.DestinationPortCode)
	row[5] = formatString(r.DestinationPortName)
	row[6] = r.Incoterm
	row[7] = formatFloat(r.CargoWeightKg)
	row[8] = formatFloat(r.CargoCBM)
	row[9] = strconv.FormatBool(r.IsDangerous)
	return row
}

func formatString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
