// Package portref holds the immutable UN/LOCODE reference table used to
// validate and name every port in an output record.
package portref

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"freightx/internal/domain"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{5}$`)

// Entry is one raw row of the reference file. A code may appear many times.
type Entry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Port is a resolved code with its canonical display name.
type Port struct {
	Code string
	Name string
}

// Table is built once at startup and is read-only afterwards; it is safe to
// share between goroutines.
type Table struct {
	canonical  map[string]string
	candidates map[string][]string
	byName     map[string]string
	codes      []string
	skipped    int
}

// New merges raw entries into a table. For each code the first listed name
// wins unless overrides holds a name for that code, which wins unconditionally.
func New(entries []Entry, overrides map[string]string) (*Table, error) {
	t := &Table{
		canonical:  make(map[string]string),
		candidates: make(map[string][]string),
		byName:     make(map[string]string),
	}

	normOverrides := make(map[string]string, len(overrides))
	for code, name := range overrides {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		normOverrides[NormalizeCode(code)] = name
	}

	for _, e := range entries {
		code := NormalizeCode(e.Code)
		name := strings.TrimSpace(e.Name)
		if !ValidCode(code) || name == "" {
			t.skipped++
			continue
		}
		if _, seen := t.canonical[code]; !seen {
			t.canonical[code] = name
			t.codes = append(t.codes, code)
		}
		t.candidates[code] = append(t.candidates[code], name)
	}

	if len(t.codes) == 0 {
		return nil, fmt.Errorf("%w: no valid entries", domain.ErrInvalidReference)
	}

	for code := range t.canonical {
		if name, ok := normOverrides[code]; ok {
			t.canonical[code] = name
		}
	}
	sort.Strings(t.codes)

	// Canonical names index first so an override name beats a raw alias
	// shared by two codes.
	for _, code := range t.codes {
		t.indexName(t.canonical[code], code)
	}
	for _, code := range t.codes {
		for _, name := range t.candidates[code] {
			t.indexName(name, code)
		}
	}

	return t, nil
}

func (t *Table) indexName(name, code string) {
	key := nameKey(name)
	if key == "" {
		return
	}
	if _, exists := t.byName[key]; !exists {
		t.byName[key] = code
	}
}

// NormalizeCode uppercases a code and strips whitespace and hyphens, so
// " in-maa " becomes "INMAA". It does not validate.
func NormalizeCode(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		switch r {
		case ' ', '\t', '\n', '\r', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidCode reports whether code is exactly five uppercase alphanumerics.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// Resolve returns the canonical name for code. Matching is exact first, then
// case-insensitive and whitespace-trimmed on the code only.
func (t *Table) Resolve(code string) (string, bool) {
	if name, ok := t.canonical[code]; ok {
		return name, true
	}
	name, ok := t.canonical[NormalizeCode(code)]
	return name, ok
}

// Lookup is Resolve plus a partial-code fallback: a 4 to 6 character code that
// is contained in, or contains, exactly one reference code resolves to it.
// The returned Port carries the reference code, which may differ from the input.
func (t *Table) Lookup(code string) (Port, bool) {
	norm := NormalizeCode(code)
	if name, ok := t.canonical[norm]; ok {
		return Port{Code: norm, Name: name}, true
	}
	if len(norm) < 4 || len(norm) > 6 || !isAlnum(norm) {
		return Port{}, false
	}

	match := ""
	for _, ref := range t.codes {
		if strings.Contains(ref, norm) || strings.Contains(norm, ref) {
			if match != "" {
				return Port{}, false
			}
			match = ref
		}
	}
	if match == "" {
		return Port{}, false
	}
	return Port{Code: match, Name: t.canonical[match]}, true
}

// CodeForName maps an exact (case-insensitive) canonical or candidate name
// back to its code. There is no fuzzy matching.
func (t *Table) CodeForName(name string) (string, bool) {
	code, ok := t.byName[nameKey(name)]
	return code, ok
}

// Candidates returns every raw name listed for code, in file order.
func (t *Table) Candidates(code string) []string {
	names := t.candidates[NormalizeCode(code)]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Ports returns all codes with canonical names, sorted by code.
func (t *Table) Ports() []Port {
	out := make([]Port, 0, len(t.codes))
	for _, code := range t.codes {
		out = append(out, Port{Code: code, Name: t.canonical[code]})
	}
	return out
}

// Len returns the number of distinct codes.
func (t *Table) Len() int { return len(t.codes) }

// Skipped returns how many raw entries were rejected during the build.
func (t *Table) Skipped() int { return t.skipped }

func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
