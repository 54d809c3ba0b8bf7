package rules

import (
	"regexp"
	"strings"

	"freightx/internal/domain"
)

const incotermAlt = `FOB|CIF|CFR|EXW|DDP|DAP|FCA|CPT|CIP|DPU`

var (
	incotermRe = regexp.MustCompile(`(?i)\b(` + incotermAlt + `)\b`)
	// "FOB or CIF", "FOB/CIF", "FOB and/or CIF" offered as alternatives in one clause.
	incotermAlternativesRe = regexp.MustCompile(`(?i)\b(` + incotermAlt + `)\b\s*(?:or|/|and/or)\s*\b(` + incotermAlt + `)\b`)
)

// IncotermSource tells which rule produced a resolved incoterm.
type IncotermSource string

const (
	IncotermFromBody      IncotermSource = "body"
	IncotermFromSubject   IncotermSource = "subject"
	IncotermDefaulted     IncotermSource = "default"
	IncotermAmbiguousText IncotermSource = "ambiguous"
)

// FirstIncoterm returns the first known incoterm token in text, uppercased.
func FirstIncoterm(text string) (string, bool) {
	m := incotermRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// HasAlternativeIncoterms reports whether text offers two different terms as
// acceptable alternatives in one clause ("FOB or CIF terms").
func HasAlternativeIncoterms(text string) bool {
	for _, m := range incotermAlternativesRe.FindAllStringSubmatch(text, -1) {
		if !strings.EqualFold(m[1], m[2]) {
			return true
		}
	}
	return false
}

// ResolveIncoterm applies two separate policies. Alternatives offered in one
// clause resolve to the default. Otherwise the body is scanned before the
// subject, so a body term beats a different subject term. No term at all
// resolves to the default.
func ResolveIncoterm(subject, body string) (string, IncotermSource) {
	for _, part := range []struct {
		text   string
		source IncotermSource
	}{
		{body, IncotermFromBody},
		{subject, IncotermFromSubject},
	} {
		if HasAlternativeIncoterms(part.text) {
			return domain.DefaultIncoterm, IncotermAmbiguousText
		}
		if term, ok := FirstIncoterm(part.text); ok {
			return term, part.source
		}
	}
	return domain.DefaultIncoterm, IncotermDefaulted
}

// NormalizeIncoterm uppercases and validates a term proposed elsewhere (e.g.
// by the LLM). Unknown or empty terms yield the default and false.
func NormalizeIncoterm(term string) (string, bool) {
	term = strings.ToUpper(strings.TrimSpace(term))
	if domain.IsKnownIncoterm(term) {
		return term, true
	}
	return domain.DefaultIncoterm, false
}
