package validator

import (
	"fmt"
	"strings"

	"freightx/internal/domain"
	"freightx/internal/parser"
	"freightx/internal/portref"
	"freightx/internal/rules"
)

// Validator normalizes one group of record fields from an LLM candidate and
// the source email. Validators run in registration order and may read fields
// set by earlier ones.
type Validator interface {
	Apply(in *Input) []Anomaly
	RuleKey() string
}

// PortResolver is the subset of the port reference the normalizer needs.
type PortResolver interface {
	Lookup(code string) (portref.Port, bool)
	CodeForName(name string) (string, bool)
}

// Anomaly records a value that was rejected, corrected or defaulted.
type Anomaly struct {
	Field  string
	Value  string
	Reason string
}

func (a Anomaly) Error() string {
	if a.Value == "" {
		return fmt.Sprintf("%s: %s", a.Field, a.Reason)
	}
	return fmt.Sprintf("%s: %s (%q)", a.Field, a.Reason, a.Value)
}

// Input is the shared state for one normalization pass.
type Input struct {
	Candidate *parser.Candidate
	Email     domain.Email
	Record    *domain.ShipmentRecord

	route *rules.Route
}

// Shipment returns the first-shipment slice of the email body.
func (in *Input) Shipment() string {
	return rules.FirstShipment(in.Email.Body)
}

// ShipmentText is the subject plus the first shipment of the body, the scope
// for whole-email keyword rules.
func (in *Input) ShipmentText() string {
	return in.Email.Subject + "\n" + in.Shipment()
}

// HasText reports whether the email carries any text to apply rules to.
func (in *Input) HasText() bool {
	return strings.TrimSpace(in.Email.Subject) != "" || strings.TrimSpace(in.Email.Body) != ""
}

// Route returns the route named in the body, completed from the subject.
func (in *Input) Route() rules.Route {
	if in.route != nil {
		return *in.route
	}
	r, _ := rules.ParseRoute(in.Email.Body)
	if r.Origin == "" || r.Destination == "" {
		s, _ := rules.ParseRoute(in.Email.Subject)
		if r.Origin == "" {
			r.Origin = s.Origin
		}
		if r.Destination == "" {
			r.Destination = s.Destination
		}
		r.Via = append(r.Via, s.Via...)
	}
	in.route = &r
	return r
}

func (in *Input) text(field string) (string, bool) {
	if in.Candidate == nil {
		return "", false
	}
	return in.Candidate.Field(field).Text()
}

func (in *Input) loose(field string) parser.Loose {
	if in.Candidate == nil {
		return parser.Loose{}
	}
	return in.Candidate.Field(field)
}
