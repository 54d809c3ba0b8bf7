package domain

import (
	"time"
)

// Email is a single unstructured pricing request to extract from.
type Email struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Text returns subject and body joined for whole-email rule scans.
func (e Email) Text() string {
	return e.Subject + "\n" + e.Body
}

// ShipmentRecord is the canonical output unit: one per input email.
type ShipmentRecord struct {
	EmailID             string       `json:"id" db:"email_id"`
	ProductLine         *ProductLine `json:"product_line"`
	OriginPortCode      *string      `json:"origin_port_code"`
	OriginPortName      *string      `json:"origin_port_name"`
	DestinationPortCode *string      `json:"destination_port_code"`
	DestinationPortName *string      `json:"destination_port_name"`
	Incoterm            string       `json:"incoterm"`
	CargoWeightKg       *float64     `json:"cargo_weight_kg"`
	CargoCBM            *float64     `json:"cargo_cbm"`
	IsDangerous         bool         `json:"is_dangerous"`
}

// CheckpointEntry records the terminal outcome of one processed email.
type CheckpointEntry struct {
	EmailID     string           `json:"email_id" db:"email_id"`
	Status      ExtractionStatus `json:"status" db:"status"`
	Stage       Stage            `json:"stage" db:"stage"`
	Error       string           `json:"error,omitempty" db:"error"`
	Record      ShipmentRecord   `json:"record"`
	ProcessedAt time.Time        `json:"processed_at" db:"processed_at"`
}

// RunSummary reports what a pipeline run did.
type RunSummary struct {
	RunID      string        `json:"run_id"`
	RunName    string        `json:"run_name"`
	Total      int           `json:"total"`
	Processed  int           `json:"processed"`
	Skipped    int           `json:"skipped"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	FailedIDs  []string      `json:"failed_ids,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Elapsed    time.Duration `json:"elapsed"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 { return &f }
