package rules

import (
	"regexp"
)

const (
	weightUnitPattern = `(?:kilograms?|kilos?|kgs?|lbs?|pounds?|metric\s+tons?|tonnes?|tons?|mts?)\b`
	volumeUnitPattern = `(?:m³|(?:cbm|m3|cubic\s+met(?:er|re)s?|rt)\b)`
)

var (
	weightMentionRe = regexp.MustCompile(`(?i)(?:` + qualifierPattern + `)?(?:` + numberPattern + `)\s*` + weightUnitPattern)
	volumeMentionRe = regexp.MustCompile(`(?i)(?:` + qualifierPattern + `)?(?:` + numberPattern + `)\s*` + volumeUnitPattern)
	weightUnknownRe = regexp.MustCompile(`(?i)\b(?:gross\s+)?(?:weight|wt)\b\.?\s*[:\-]?\s*(?:is\s+)?` + unknownPattern)
	volumeUnknownRe = regexp.MustCompile(`(?i)\b(?:volume|vol|cbm)\b\.?\s*[:\-]?\s*(?:is\s+)?` + unknownPattern)
)

// ExtractWeight finds the first weight mentioned in text ("1,980 KGS",
// "approx 500 lbs", "weight TBD") and converts it to kilograms. Callers pass
// FirstShipment(text) to honour the first-shipment policy.
func ExtractWeight(text string) (Measurement, bool) {
	return extractFirst(text, weightMentionRe, weightUnknownRe, ParseWeight)
}

// ExtractVolume finds the first volume mentioned in text. Dimensions such as
// "120x80x100 cm" are never multiplied out.
func ExtractVolume(text string) (Measurement, bool) {
	return extractFirst(text, volumeMentionRe, volumeUnknownRe, ParseVolume)
}

func extractFirst(text string, mention, unknown *regexp.Regexp, parse func(string) (Measurement, bool)) (Measurement, bool) {
	m := mention.FindStringIndex(text)
	u := unknown.FindStringIndex(text)

	switch {
	case m == nil && u == nil:
		return Measurement{}, false
	case m == nil || (u != nil && u[0] < m[0]):
		return Measurement{}, true
	}
	return parse(text[m[0]:m[1]])
}
