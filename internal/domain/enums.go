package domain

// ProductLine classifies a shipment's direction relative to India.
type ProductLine string

const (
	ProductLineSeaImportLCL ProductLine = "pl_sea_import_lcl"
	ProductLineSeaExportLCL ProductLine = "pl_sea_export_lcl"
)

// ValidProductLines is the closed set accepted in output records.
var ValidProductLines = map[ProductLine]bool{
	ProductLineSeaImportLCL: true,
	ProductLineSeaExportLCL: true,
}

// ExtractionStatus is the terminal state recorded for an email.
type ExtractionStatus string

const (
	ExtractionStatusDone   ExtractionStatus = "done"
	ExtractionStatusFailed ExtractionStatus = "failed"
)

// Stage names a step of the per-email extraction state machine.
type Stage string

const (
	StagePending     Stage = "pending"
	StagePrompting   Stage = "prompting"
	StageAwaitingLLM Stage = "awaiting_llm"
	StageParsing     Stage = "parsing"
	StageNormalizing Stage = "normalizing"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// DefaultIncoterm is applied whenever an email carries no usable incoterm.
const DefaultIncoterm = "FOB"

// KnownIncoterms lists the trade terms recognized in email text, in prompt order.
var KnownIncoterms = []string{"FOB", "CIF", "CFR", "EXW", "DDP", "DAP", "FCA", "CPT", "CIP", "DPU"}

// IsKnownIncoterm reports whether term (already uppercased) is a recognized incoterm.
func IsKnownIncoterm(term string) bool {
	for _, t := range KnownIncoterms {
		if t == term {
			return true
		}
	}
	return false
}
