package parser

import (
	"bytes"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Loose is one untrusted field value exactly as the model wrote it. Callers
// coerce it through the typed accessors; nothing is assumed about its shape.
type Loose struct {
	Raw json.RawMessage
}

// IsNull reports whether the field is absent or JSON null.
func (l Loose) IsNull() bool {
	t := bytes.TrimSpace(l.Raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// Text returns a string value, or the literal text of a number or boolean.
// Objects, arrays and null yield false.
func (l Loose) Text() (string, bool) {
	t := bytes.TrimSpace(l.Raw)
	if l.IsNull() {
		return "", false
	}
	switch t[0] {
	case '"':
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	case '{', '[':
		return "", false
	}
	return string(t), true
}

var (
	// ErrNotNumber means the value is not written as a number at all.
	ErrNotNumber = errors.New("not a number")
	// ErrBadNumber means the value reads as a number but is NaN, infinite or
	// out of float64 range.
	ErrBadNumber = errors.New("number is not finite")
)

// Number returns a JSON number, or a string that is entirely a number
// ("1,980", " 3.5 "). Units and words are left to the caller.
func (l Loose) Number() (float64, error) {
	t := bytes.TrimSpace(l.Raw)
	if l.IsNull() {
		return 0, ErrNotNumber
	}
	var s string
	switch t[0] {
	case '"':
		if err := json.Unmarshal(t, &s); err != nil {
			return 0, ErrNotNumber
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	case '{', '[', 't', 'f':
		return 0, ErrNotNumber
	default:
		s = string(t)
	}
	f, err := strconv.ParseFloat(s, 64)
	if errors.Is(err, strconv.ErrRange) {
		return 0, ErrBadNumber
	}
	if err != nil {
		return 0, ErrNotNumber
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrBadNumber
	}
	return f, nil
}

// Float is Number reporting only whether a finite number was found.
func (l Loose) Float() (float64, bool) {
	f, err := l.Number()
	return f, err == nil
}

// Bool accepts true/false, 1/0 and the usual yes/no spellings.
func (l Loose) Bool() (value bool, ok bool) {
	text, ok := l.Text()
	if !ok {
		return false, false
	}
	switch strings.ToLower(text) {
	case "true", "yes", "y", "1":
		return true, true
	case "false", "no", "n", "0":
		return false, true
	}
	return false, false
}

// Candidate is the loosely typed object the model returned. Keys are matched
// case-insensitively with spaces and hyphens folded to underscores.
type Candidate struct {
	fields map[string]Loose
}

// NewCandidate builds a Candidate from raw field values. When several keys
// fold to the same name, a key already in folded form wins, then the
// lexically smallest.
func NewCandidate(fields map[string]json.RawMessage) *Candidate {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ei, ej := keys[i] == normalizeKey(keys[i]), keys[j] == normalizeKey(keys[j])
		if ei != ej {
			return ei
		}
		return keys[i] < keys[j]
	})

	c := &Candidate{fields: make(map[string]Loose, len(fields))}
	for _, k := range keys {
		key := normalizeKey(k)
		if _, dup := c.fields[key]; dup {
			continue
		}
		c.fields[key] = Loose{Raw: fields[k]}
	}
	return c
}

// Field returns the value under key; a missing key is a null Loose.
func (c *Candidate) Field(key string) Loose {
	if c == nil {
		return Loose{}
	}
	return c.fields[normalizeKey(key)]
}

// Has reports whether key was present at all, even as null.
func (c *Candidate) Has(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c.fields[normalizeKey(key)]
	return ok
}

// Len is the number of fields.
func (c *Candidate) Len() int {
	if c == nil {
		return 0
	}
	return len(c.fields)
}

func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(k)
}
