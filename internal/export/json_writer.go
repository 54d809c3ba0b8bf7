package export

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"freightx/internal/domain"
)

// WriteJSON writes records as an indented JSON array. Null fields are kept as
// explicit nulls and an empty run yields "[]".
func WriteJSON(w io.Writer, records []domain.ShipmentRecord) error {
	if records == nil {
		records = []domain.ShipmentRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	return nil
}
