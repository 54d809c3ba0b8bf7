package rules

import (
	"regexp"
)

var dgPositive = []*regexp.Regexp{
	regexp.MustCompile(`\bDG\b`),
	regexp.MustCompile(`\bIMO\b`),
	regexp.MustCompile(`(?i)\bIMDG\b`),
	regexp.MustCompile(`(?i)\bdangerous\s+(?:goods|cargo)\b`),
	regexp.MustCompile(`(?i)\bhazardous\b`),
	regexp.MustCompile(`(?i)\bhazmat\b`),
	regexp.MustCompile(`(?i)\bUN\s?-?\d{4}\b`),
	regexp.MustCompile(`(?i)\bclass\s+\d(?:\.\d)?\b`),
	regexp.MustCompile(`(?i)\b(?:flammable|corrosive|toxic|explosive)\b`),
}

var dgNegative = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bnon[\s-]?(?:dg|imo|haz|hazardous|hazmat|dangerous)\b`),
	regexp.MustCompile(`(?i)\bnot\s+(?:dangerous|hazardous|dg|classified\s+as\s+(?:dangerous|hazardous))\b`),
	regexp.MustCompile(`(?i)\bno\s+(?:dg|dangerous\s+goods|hazardous)\b`),
}

// DangerousFinding explains a dangerous-goods decision.
type DangerousFinding struct {
	Dangerous bool
	Positive  []string
	Negations []string
}

// AssessDangerous scans text for DG keywords and negations. A negation always
// overrides a positive match; with no keyword the result is false.
func AssessDangerous(text string) DangerousFinding {
	var f DangerousFinding
	for _, re := range dgPositive {
		if m := re.FindString(text); m != "" {
			f.Positive = append(f.Positive, m)
		}
	}
	for _, re := range dgNegative {
		if m := re.FindString(text); m != "" {
			f.Negations = append(f.Negations, m)
		}
	}
	f.Dangerous = len(f.Positive) > 0 && len(f.Negations) == 0
	return f
}

// IsDangerous is AssessDangerous(text).Dangerous.
func IsDangerous(text string) bool {
	return AssessDangerous(text).Dangerous
}
