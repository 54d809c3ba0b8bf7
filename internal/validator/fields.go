package validator

import (
	"errors"
	"strconv"

	"freightx/internal/domain"
	"freightx/internal/parser"
	"freightx/internal/rules"
)

type productLineValidator struct{}

func (productLineValidator) RuleKey() string { return "product_line" }

// Apply derives the product line from the resolved codes. Whatever the model
// proposed is only compared, never used.
func (productLineValidator) Apply(in *Input) []Anomaly {
	rec := in.Record
	rec.ProductLine = nil

	var origin, dest string
	if rec.OriginPortCode != nil {
		origin = *rec.OriginPortCode
	}
	if rec.DestinationPortCode != nil {
		dest = *rec.DestinationPortCode
	}
	pl, ok := rules.ClassifyProductLine(origin, dest)
	if ok {
		rec.ProductLine = &pl
	}

	proposed, has := in.text("product_line")
	if !has || proposed == "" {
		return nil
	}
	if !ok || string(pl) != proposed {
		return []Anomaly{{Field: "product_line", Value: proposed, Reason: "overridden by port codes"}}
	}
	return nil
}

type incotermValidator struct{}

func (incotermValidator) RuleKey() string { return "incoterm" }

// Apply resolves the incoterm from the email text. The model's term is only
// used when there is no text to read.
func (incotermValidator) Apply(in *Input) []Anomaly {
	proposed, has := in.text("incoterm")

	if !in.HasText() {
		term, ok := rules.NormalizeIncoterm(proposed)
		in.Record.Incoterm = term
		if has && proposed != "" && !ok {
			return []Anomaly{{Field: "incoterm", Value: proposed, Reason: "unknown incoterm"}}
		}
		return nil
	}

	term, source := rules.ResolveIncoterm(in.Email.Subject, in.Email.Body)
	in.Record.Incoterm = term

	if !has || proposed == "" {
		return nil
	}
	if norm, _ := rules.NormalizeIncoterm(proposed); norm != term {
		return []Anomaly{{Field: "incoterm", Value: proposed, Reason: "overridden by email text (" + string(source) + ")"}}
	}
	return nil
}

type dangerousValidator struct{}

func (dangerousValidator) RuleKey() string { return "is_dangerous" }

// Apply decides is_dangerous from keywords in the subject and first shipment.
// Without any email text the model's boolean is accepted.
func (dangerousValidator) Apply(in *Input) []Anomaly {
	proposed, has := in.loose("is_dangerous").Bool()

	if !in.HasText() {
		in.Record.IsDangerous = has && proposed
		return nil
	}

	finding := rules.AssessDangerous(in.ShipmentText())
	in.Record.IsDangerous = finding.Dangerous
	if has && proposed != finding.Dangerous {
		return []Anomaly{{Field: "is_dangerous", Value: strconv.FormatBool(proposed), Reason: "overridden by email keywords"}}
	}
	return nil
}

// measureValidator normalizes one numeric quantity field.
type measureValidator struct {
	field   string
	parse   func(string) (rules.Measurement, bool)
	extract func(string) (rules.Measurement, bool)
	assign  func(*domain.ShipmentRecord, *float64)
}

func weightValidator() measureValidator {
	return measureValidator{
		field:   "cargo_weight_kg",
		parse:   rules.ParseWeight,
		extract: rules.ExtractWeight,
		assign:  func(r *domain.ShipmentRecord, v *float64) { r.CargoWeightKg = v },
	}
}

func volumeValidator() measureValidator {
	return measureValidator{
		field:   "cargo_cbm",
		parse:   rules.ParseVolume,
		extract: rules.ExtractVolume,
		assign:  func(r *domain.ShipmentRecord, v *float64) { r.CargoCBM = v },
	}
}

func (m measureValidator) RuleKey() string { return m.field }

// Apply accepts the model's value when it is a non-negative number, correcting
// it when the model echoed an unconverted lbs or tonnes figure from the text.
// A missing or malformed value falls back to the first mention in the email;
// an explicit "TBD" there yields null.
func (m measureValidator) Apply(in *Input) []Anomaly {
	var anomalies []Anomaly
	mention, found := m.mention(in)

	value, ok, a := m.candidate(in)
	anomalies = append(anomalies, a...)
	if ok {
		switch {
		case value == nil:
		case found && mention.Value == nil:
			anomalies = append(anomalies, Anomaly{Field: m.field, Value: formatFloat(*value), Reason: "email states the value is unknown"})
			value = nil
		case found && mention.Value != nil && (mention.Unit == rules.UnitPound || mention.Unit == rules.UnitTonne) &&
			rules.Round2(mention.Raw) == *value && *mention.Value != *value:
			anomalies = append(anomalies, Anomaly{Field: m.field, Value: formatFloat(*value), Reason: "unconverted " + string(mention.Unit) + " value"})
			value = mention.Value
		}
		m.assign(in.Record, value)
		return anomalies
	}

	if found {
		m.assign(in.Record, mention.Value)
	}
	return anomalies
}

// candidate reads the model's value. ok is false when the field is absent,
// null or unusable; a nil value with ok true is an explicit "TBD".
func (m measureValidator) candidate(in *Input) (*float64, bool, []Anomaly) {
	l := in.loose(m.field)
	if l.IsNull() {
		return nil, false, nil
	}
	f, err := l.Number()
	switch {
	case err == nil:
		if f < 0 {
			return nil, false, []Anomaly{{Field: m.field, Value: formatFloat(f), Reason: "negative quantity"}}
		}
		v := rules.Round2(f)
		return &v, true, nil
	case errors.Is(err, parser.ErrBadNumber):
		return nil, false, []Anomaly{{Field: m.field, Value: looseText(l), Reason: "unparseable quantity"}}
	}
	if s, ok := l.Text(); ok {
		if meas, ok := m.parse(s); ok {
			if meas.Value == nil {
				return nil, true, nil
			}
			if *meas.Value >= 0 {
				return meas.Value, true, nil
			}
		}
		return nil, false, []Anomaly{{Field: m.field, Value: s, Reason: "unparseable quantity"}}
	}
	return nil, false, []Anomaly{{Field: m.field, Value: string(l.Raw), Reason: "unparseable quantity"}}
}

func (m measureValidator) mention(in *Input) (rules.Measurement, bool) {
	if meas, ok := m.extract(in.Shipment()); ok {
		return meas, true
	}
	return m.extract(in.Email.Subject)
}

func looseText(l parser.Loose) string {
	if s, ok := l.Text(); ok {
		return s
	}
	return string(l.Raw)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
