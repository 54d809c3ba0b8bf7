// Package dataset loads the JSON inputs of the pipeline: emails to extract
// and ground-truth records to evaluate against.
package dataset

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"freightx/internal/domain"
)

// LoadEmails reads a JSON array of {"id", "subject", "body"} objects. Every
// email must carry a non-empty id.
func LoadEmails(path string) ([]domain.Email, error) {
	var emails []domain.Email
	if err := readJSON(path, &emails); err != nil {
		return nil, err
	}
	for i, e := range emails {
		if strings.TrimSpace(e.ID) == "" {
			return nil, fmt.Errorf("email %d in %s has no id", i, path)
		}
	}
	return emails, nil
}

// LoadRecords reads a JSON array of shipment records, such as a previous
// output file or a ground-truth set.
func LoadRecords(path string) ([]domain.ShipmentRecord, error) {
	var records []domain.ShipmentRecord
	if err := readJSON(path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
