// Package parser turns raw model output into a loosely typed Candidate.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"freightx/internal/domain"
)

var fenceRe = regexp.MustCompile("(?m)^\\s*```[A-Za-z0-9_-]*\\s*$|```[A-Za-z]*")

var smartQuotes = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'")

// ParseFailure carries the raw model output that could not be parsed.
type ParseFailure struct {
	Raw string
	Err error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("parse failure: %v (raw: %s)", e.Err, truncate(e.Raw, 200))
}

func (e *ParseFailure) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, domain.ErrParseFailure) hold for every ParseFailure.
func (e *ParseFailure) Is(target error) bool {
	return target == domain.ErrParseFailure
}

// Parse extracts the first JSON object from raw. Code fences and any prose
// around the object are ignored; an array yields its first object. When the
// object is not valid JSON a few forgiving repairs are tried (trailing commas,
// single quotes, unquoted keys, Python literals, typographic quotes) before
// giving up with a *ParseFailure.
func Parse(raw string) (*Candidate, error) {
	text := strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))
	if text == "" {
		return nil, &ParseFailure{Raw: raw, Err: errors.New("empty response")}
	}

	if c, ok := decode(text); ok {
		return c, nil
	}

	objects := balancedObjects(text)
	for _, obj := range objects {
		if c, ok := decode(obj); ok {
			return c, nil
		}
	}
	for _, obj := range objects {
		if c, ok := decode(repair(obj)); ok {
			return c, nil
		}
	}
	if c, ok := decode(repair(text)); ok {
		return c, nil
	}

	if len(objects) == 0 {
		return nil, &ParseFailure{Raw: raw, Err: errors.New("no JSON object found")}
	}
	return nil, &ParseFailure{Raw: raw, Err: errors.New("JSON object is malformed beyond repair")}
}

func decode(s string) (*Candidate, bool) {
	b := bytes.TrimSpace([]byte(s))
	if len(b) == 0 {
		return nil, false
	}
	switch b[0] {
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(b, &fields); err != nil {
			return nil, false
		}
		return NewCandidate(fields), true
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return nil, false
		}
		for _, item := range items {
			if c, ok := decode(string(item)); ok {
				return c, true
			}
		}
	}
	return nil, false
}

// balancedObjects returns every top-level {...} span in s, in order. Braces
// inside quoted strings are ignored.
func balancedObjects(s string) []string {
	var out []string
	depth, start := 0, -1
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			if depth > 0 {
				quote = c
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				out = append(out, s[start:i+1])
			}
		}
	}
	return out
}

// repair rewrites common near-JSON into JSON.
func repair(s string) string {
	s = smartQuotes.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case c == '\\' && i+1 < len(s):
				if quote == '\'' && s[i+1] == '\'' {
					b.WriteByte('\'')
				} else {
					b.WriteByte(c)
					b.WriteByte(s[i+1])
				}
				i++
			case c == quote:
				b.WriteByte('"')
				quote = 0
			case c == '"':
				b.WriteString(`\"`)
			case c == '\n':
				b.WriteString(`\n`)
			default:
				b.WriteByte(c)
			}
			continue
		}

		switch {
		case c == '"' || c == '\'':
			quote = c
			b.WriteByte('"')
		case c == ',':
			j := skipSpace(s, i+1)
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
			b.WriteByte(c)
		case c == '-' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < len(s) && strings.IndexByte("0123456789.eE+-", s[j]) >= 0 {
				j++
			}
			b.WriteString(s[i:j])
			i = j - 1
		case isIdentStart(c):
			j := i
			for j < len(s) && isIdent(s[j]) {
				j++
			}
			word := s[i:j]
			if k := skipSpace(s, j); k < len(s) && s[k] == ':' {
				b.WriteString(`"` + word + `"`)
			} else {
				b.WriteString(literal(word))
			}
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func literal(word string) string {
	switch word {
	case "None", "NULL", "Null", "nil", "undefined":
		return "null"
	case "True", "TRUE":
		return "true"
	case "False", "FALSE":
		return "false"
	case "null", "true", "false":
		return word
	}
	return `"` + word + `"`
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
