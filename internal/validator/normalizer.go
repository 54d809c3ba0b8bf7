package validator

import (
	"freightx/internal/domain"
	"freightx/internal/parser"
)

// Normalizer turns a loosely typed LLM candidate into a ShipmentRecord that
// satisfies every output invariant.
type Normalizer struct {
	registry *Registry
}

// NewNormalizer builds a Normalizer with the default validators.
func NewNormalizer(ports PortResolver) *Normalizer {
	return &Normalizer{registry: DefaultRegistry(ports)}
}

// NewNormalizerWithRegistry builds a Normalizer over a custom registry.
func NewNormalizerWithRegistry(r *Registry) *Normalizer {
	return &Normalizer{registry: r}
}

// Normalize always returns a record for email; anomalies describe every value
// that was dropped or corrected along the way. A nil candidate is treated as
// an empty object, so the result is driven by the email text alone.
func (n *Normalizer) Normalize(c *parser.Candidate, email domain.Email) (domain.ShipmentRecord, []Anomaly) {
	rec := Degraded(email.ID)
	in := &Input{Candidate: c, Email: email, Record: &rec}

	var anomalies []Anomaly
	for _, v := range n.registry.All() {
		anomalies = append(anomalies, v.Apply(in)...)
	}
	return rec, anomalies
}

// Degraded is the null-filled record emitted when extraction fails.
func Degraded(emailID string) domain.ShipmentRecord {
	return domain.ShipmentRecord{
		EmailID:  emailID,
		Incoterm: domain.DefaultIncoterm,
	}
}
