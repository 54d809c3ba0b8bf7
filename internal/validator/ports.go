package validator

import (
	"strings"

	"freightx/internal/portref"
)

const maxWindowWords = 4

// Words that decorate a port name in prose without being part of it.
var fillerWords = map[string]bool{
	"port": true, "icd": true, "cfs": true, "terminal": true,
	"seaport": true, "harbour": true, "harbor": true, "city": true,
}

type portValidator struct {
	ports PortResolver
}

func (portValidator) RuleKey() string { return "ports" }

func (v portValidator) Apply(in *Input) []Anomaly {
	var anomalies []Anomaly
	route := in.Route()

	origin, ok, a := v.endpoint(in, "origin", route.Origin, suffixWindows)
	anomalies = append(anomalies, a...)
	if !ok {
		origin = portref.Port{}
	}
	dest, ok, a := v.endpoint(in, "destination", route.Destination, prefixWindows)
	anomalies = append(anomalies, a...)
	if !ok {
		dest = portref.Port{}
	}

	// A transshipment port is never an endpoint when the route names another.
	via := v.viaCodes(route.Via)
	if origin.Code != "" && via[origin.Code] {
		if p, ok := v.phrase(route.Origin, suffixWindows); ok && p.Code != origin.Code {
			anomalies = append(anomalies, Anomaly{Field: "origin_port_code", Value: origin.Code, Reason: "via port replaced by route origin"})
			origin = p
		}
	}
	if dest.Code != "" && via[dest.Code] {
		if p, ok := v.phrase(route.Destination, prefixWindows); ok && p.Code != dest.Code {
			anomalies = append(anomalies, Anomaly{Field: "destination_port_code", Value: dest.Code, Reason: "via port replaced by route destination"})
			dest = p
		}
	}

	setPort(&in.Record.OriginPortCode, &in.Record.OriginPortName, origin)
	setPort(&in.Record.DestinationPortCode, &in.Record.DestinationPortName, dest)
	return anomalies
}

// endpoint resolves one side of the route. A code from the model is final:
// when it is not in the reference the whole pair is null. Only when the model
// gave no code are its name and then the phrase found in the email tried.
func (v portValidator) endpoint(in *Input, side, phrase string, windows func([]string) [][]string) (portref.Port, bool, []Anomaly) {
	codeField, nameField := side+"_port_code", side+"_port_name"

	if code, ok := in.text(codeField); ok && strings.TrimSpace(code) != "" {
		if p, ok := v.ports.Lookup(code); ok {
			return p, true, nil
		}
		return portref.Port{}, false, []Anomaly{{Field: codeField, Value: code, Reason: "not in port reference"}}
	}
	if name, ok := in.text(nameField); ok && strings.TrimSpace(name) != "" {
		if p, ok := v.byName(name); ok {
			return p, true, nil
		}
	}
	if p, ok := v.phrase(phrase, windows); ok {
		return p, true, nil
	}
	return portref.Port{}, false, nil
}

func (v portValidator) byName(name string) (portref.Port, bool) {
	code, ok := v.ports.CodeForName(name)
	if !ok {
		return portref.Port{}, false
	}
	return v.ports.Lookup(code)
}

// phrase resolves free text such as "LCL Nhava Sheva" by trying word windows
// longest first, with and without filler words like "port" or "ICD".
func (v portValidator) phrase(text string, windows func([]string) [][]string) (portref.Port, bool) {
	words := tokenize(text)
	if len(words) == 0 {
		return portref.Port{}, false
	}
	for _, w := range windows(words) {
		if p, ok := v.byName(strings.Join(w, " ")); ok {
			return p, true
		}
		if trimmed := trimFiller(w); len(trimmed) > 0 && len(trimmed) < len(w) {
			if p, ok := v.byName(strings.Join(trimmed, " ")); ok {
				return p, true
			}
		}
	}
	return portref.Port{}, false
}

func (v portValidator) viaCodes(phrases []string) map[string]bool {
	out := make(map[string]bool, len(phrases))
	for _, ph := range phrases {
		if p, ok := v.phrase(ph, prefixWindows); ok {
			out[p.Code] = true
		}
	}
	return out
}

func setPort(code, name **string, p portref.Port) {
	if p.Code == "" || p.Name == "" {
		*code, *name = nil, nil
		return
	}
	c, n := p.Code, p.Name
	*code, *name = &c, &n
}

func tokenize(text string) []string {
	var out []string
	for _, f := range strings.Fields(text) {
		f = strings.Trim(f, `.,;:!?"'()[]{}`)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// suffixWindows lists the trailing word runs of words, longest first. An
// origin phrase often carries leading prose ("Please quote LCL Shanghai").
func suffixWindows(words []string) [][]string {
	var out [][]string
	for n := min(len(words), maxWindowWords); n > 0; n-- {
		out = append(out, words[len(words)-n:])
	}
	return out
}

// prefixWindows lists the leading word runs of words, longest first. A
// destination phrase often carries trailing prose ("Chennai please advise").
func prefixWindows(words []string) [][]string {
	var out [][]string
	for n := min(len(words), maxWindowWords); n > 0; n-- {
		out = append(out, words[:n])
	}
	return out
}

func trimFiller(words []string) []string {
	start, end := 0, len(words)
	for start < end && fillerWords[strings.ToLower(words[start])] {
		start++
	}
	for end > start && fillerWords[strings.ToLower(words[end-1])] {
		end--
	}
	return words[start:end]
}
