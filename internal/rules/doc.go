// Package rules holds the deterministic business rules applied on top of LLM
// output: product line classification, incoterm precedence, unit conversion,
// dangerous-goods detection and first-shipment / route selection.
//
// Every function is pure and safe for concurrent use.
package rules
