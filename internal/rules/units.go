package rules

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Conversion factors to kilograms.
const (
	PoundsToKg = 0.453592
	TonnesToKg = 1000.0
)

// Unit is a normalized measurement unit.
type Unit string

const (
	UnitKg    Unit = "kg"
	UnitPound Unit = "lb"
	UnitTonne Unit = "mt"
	UnitCBM   Unit = "cbm"
	UnitNone  Unit = ""
)

const (
	numberPattern    = `\d[\d,]*(?:\.\d+)?|\.\d+`
	qualifierPattern = `\b(?:approximately|approx|appx|about|roughly|around|circa|ca|estimated|est|nearly|almost)\b\.?\s*|~\s*`
	unknownPattern   = `\b(?:tbd|tba|tbc|n/a|na|nil|unknown|pending|to be (?:confirmed|advised|determined|informed))\b`
)

var (
	qualifierRe = regexp.MustCompile(`(?i)` + qualifierPattern)
	nullTokenRe = regexp.MustCompile(`(?i)` + unknownPattern + `|^\s*-+\s*$`)
	numberRe    = regexp.MustCompile(numberPattern)
	unitRe      = regexp.MustCompile(`(?i)^\s*(m³|(?:kilograms?|kilos?|kgs?|lbs?|pounds?|metric\s+tons?|tonnes?|tons?|mts?|cbm|m3|cubic\s+met(?:er|re)s?|rt)\b)`)
)

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseUnit maps a free-text unit token to a Unit.
func ParseUnit(token string) (Unit, bool) {
	t := strings.ToLower(strings.Join(strings.Fields(token), " "))
	switch {
	case t == "":
		return UnitNone, true
	case t == "kg" || t == "kgs" || strings.HasPrefix(t, "kilo"):
		return UnitKg, true
	case t == "lb" || t == "lbs" || strings.HasPrefix(t, "pound"):
		return UnitPound, true
	case t == "mt" || t == "mts" || strings.HasPrefix(t, "tonne") || t == "ton" || t == "tons" || strings.HasPrefix(t, "metric ton"):
		return UnitTonne, true
	case t == "cbm" || t == "m3" || t == "m³" || t == "rt" || strings.HasPrefix(t, "cubic met"):
		return UnitCBM, true
	}
	return UnitNone, false
}

// ConvertWeight converts value in unit to kilograms, rounded to two places.
// Converting a value already in kg (or with no unit) only rounds it.
func ConvertWeight(value float64, unit Unit) (float64, bool) {
	switch unit {
	case UnitKg, UnitNone:
		return Round2(value), true
	case UnitPound:
		return Round2(value * PoundsToKg), true
	case UnitTonne:
		return Round2(value * TonnesToKg), true
	}
	return 0, false
}

// Measurement is a quantity read from free text.
type Measurement struct {
	// Value is nil for explicit unknowns such as "TBD".
	Value *float64
	// Raw is the number as written, before conversion.
	Raw  float64
	Unit Unit
}

// ParseWeight reads a weight such as "approx 1,500 lbs" and returns kilograms
// rounded to two places. ok is false when s holds neither a number nor an
// explicit unknown token; a nil Value with ok true means "TBD" and the like.
func ParseWeight(s string) (Measurement, bool) {
	m, ok := parseQuantity(s)
	if !ok || m.Value == nil {
		return m, ok
	}
	kg, ok := ConvertWeight(*m.Value, m.Unit)
	if !ok {
		return Measurement{}, false
	}
	m.Value = &kg
	return m, true
}

// ParseVolume reads a volume in cubic metres ("3.8 CBM", "2.4 RT"). Weight
// units are rejected.
func ParseVolume(s string) (Measurement, bool) {
	m, ok := parseQuantity(s)
	if !ok || m.Value == nil {
		return m, ok
	}
	if m.Unit != UnitCBM && m.Unit != UnitNone {
		return Measurement{}, false
	}
	v := Round2(*m.Value)
	m.Value = &v
	return m, true
}

func parseQuantity(s string) (Measurement, bool) {
	cleaned := strings.TrimSpace(qualifierRe.ReplaceAllString(s, ""))
	loc := numberRe.FindStringIndex(cleaned)
	if loc == nil {
		if nullTokenRe.MatchString(cleaned) {
			return Measurement{}, true
		}
		return Measurement{}, false
	}

	raw, err := strconv.ParseFloat(strings.ReplaceAll(cleaned[loc[0]:loc[1]], ",", ""), 64)
	if err != nil || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return Measurement{}, false
	}

	unit := UnitNone
	if um := unitRe.FindStringSubmatch(cleaned[loc[1]:]); um != nil {
		u, ok := ParseUnit(um[1])
		if !ok {
			return Measurement{}, false
		}
		unit = u
	}

	v := raw
	return Measurement{Value: &v, Raw: raw, Unit: unit}, true
}
