package rules

import (
	"regexp"
	"strings"
)

var (
	shipmentMarkerRe = regexp.MustCompile(`(?i)\bshipment\s*#?\s*(\d+)\b|(?:^|[\s;:,])\(?(\d)[).]\s`)
	alternativeSepRe = regexp.MustCompile(`(?i)\s+or\s+|\s*/\s*`)
	viaRe            = regexp.MustCompile(`(?i)[\s,(]*\b(?:via|transship(?:ment|ped)?\s+(?:at|via|through)|t/s\s+(?:at|via))\s+([A-Za-z][A-Za-z .'-]*?)\s*(?:[,.;:\n)]|\s+(?:to|from|with|and|for)\b|$)`)
	labeledOriginRe  = regexp.MustCompile(`(?im)\b(?:POL|port\s+of\s+loading|origin(?:\s+port)?)\s*[:\-]\s*([^\n,;]+)`)
	labeledDestRe    = regexp.MustCompile(`(?im)\b(?:POD|port\s+of\s+discharge|destination(?:\s+port)?)\s*[:\-]\s*([^\n,;]+)`)
	fromToRe         = regexp.MustCompile(`(?i)\bfrom\s+(.+?)\s+to\s+(.+?)(?:[,.;:\n(]|\s+(?:with|for|on|at|by)\s|\s+-\s|$)`)
	arrowRe          = regexp.MustCompile(`(?i)([A-Za-z][A-Za-z .'/-]*?)\s*(?:\s+to\s+|→|->|–|—)\s*([A-Za-z][A-Za-z .'/-]*?)(?:[,.;:\n(]|\s+(?:with|for|on|at|by)\s|\s+-\s|$)`)
)

// FirstShipment returns the part of text describing the first shipment when
// the email enumerates several ("1) ... 2) ...", "Shipment 1 ... Shipment 2").
// Any preamble before the first marker is kept. Without a second shipment
// marker the text is returned unchanged.
func FirstShipment(text string) string {
	firstAt := -1
	for _, loc := range shipmentMarkerRe.FindAllStringSubmatchIndex(text, -1) {
		n := markerNumber(text, loc)
		switch {
		case n == "1" && firstAt < 0:
			firstAt = loc[0]
		case n == "2" && firstAt >= 0:
			return strings.TrimSpace(text[:loc[0]])
		}
	}
	return text
}

func markerNumber(text string, loc []int) string {
	for g := 1; g*2+1 < len(loc); g++ {
		if loc[g*2] >= 0 {
			return text[loc[g*2]:loc[g*2+1]]
		}
	}
	return ""
}

// FirstAlternative picks the first-listed option from a disjunction such as
// "Shenzhen or Guangzhou" or "Shenzhen/Guangzhou".
func FirstAlternative(phrase string) string {
	for _, part := range alternativeSepRe.Split(phrase, -1) {
		if p := strings.TrimSpace(part); p != "" {
			return p
		}
	}
	return strings.TrimSpace(phrase)
}

// StripVia removes transshipment clauses ("via Singapore") from text and
// returns the via-port phrases it removed.
func StripVia(text string) (string, []string) {
	var via []string
	var b strings.Builder
	last := 0
	for _, loc := range viaRe.FindAllStringSubmatchIndex(text, -1) {
		via = append(via, strings.TrimSpace(text[loc[2]:loc[3]]))
		b.WriteString(text[last:loc[0]])
		last = loc[3]
	}
	b.WriteString(text[last:])
	return b.String(), via
}

// Route is the direct origin/destination pair named in text.
type Route struct {
	Origin      string
	Destination string
	Via         []string
}

// ParseRoute reads the first shipment's endpoints from text. Labeled fields
// (POL/POD) win over "from X to Y", which wins over "X to Y". Via ports are
// excluded and disjunctions resolve to their first alternative. Phrases are
// returned raw; resolving them to codes is the caller's job.
func ParseRoute(text string) (Route, bool) {
	stripped, via := StripVia(FirstShipment(text))
	r := Route{Via: via}

	if m := labeledOriginRe.FindStringSubmatch(stripped); m != nil {
		r.Origin = FirstAlternative(m[1])
	}
	if m := labeledDestRe.FindStringSubmatch(stripped); m != nil {
		r.Destination = FirstAlternative(m[1])
	}
	if r.Origin != "" && r.Destination != "" {
		return r, true
	}

	for _, re := range []*regexp.Regexp{fromToRe, arrowRe} {
		if m := re.FindStringSubmatch(stripped); m != nil {
			if r.Origin == "" {
				r.Origin = FirstAlternative(m[1])
			}
			if r.Destination == "" {
				r.Destination = FirstAlternative(m[2])
			}
			break
		}
	}
	return r, r.Origin != "" || r.Destination != ""
}
