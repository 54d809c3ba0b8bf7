// Package evaluate scores extracted records against ground truth field by
// field.
package evaluate

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"freightx/internal/domain"
	"freightx/internal/rules"
)

// Fields lists the scored fields in report order. The email id is the join
// key and is not scored.
var Fields = []string{
	"product_line",
	"origin_port_code",
	"origin_port_name",
	"destination_port_code",
	"destination_port_name",
	"incoterm",
	"cargo_weight_kg",
	"cargo_cbm",
	"is_dangerous",
}

// FieldScore is the accuracy of one field across all ground-truth records.
type FieldScore struct {
	Field    string
	Correct  int
	Total    int
	Accuracy float64
}

// Mismatch is one field where the prediction disagrees with the truth.
type Mismatch struct {
	EmailID   string
	Field     string
	Predicted string
	Truth     string
}

// Report is the outcome of an evaluation.
type Report struct {
	Fields     []FieldScore
	Overall    float64
	Mismatches []Mismatch
	// Missing lists ground-truth ids with no prediction; all their fields
	// count as wrong.
	Missing []string
}

// Evaluate compares predictions to truth, joined on email id. Floats match at
// two decimals, strings case-insensitively after trimming, and booleans
// exactly. Two nulls match; a null against a value does not.
func Evaluate(predictions, truth []domain.ShipmentRecord) Report {
	byID := make(map[string]domain.ShipmentRecord, len(predictions))
	for _, p := range predictions {
		if _, dup := byID[p.EmailID]; !dup {
			byID[p.EmailID] = p
		}
	}

	correct := make(map[string]int, len(Fields))
	var report Report
	for _, t := range truth {
		p, ok := byID[t.EmailID]
		if !ok {
			report.Missing = append(report.Missing, t.EmailID)
			continue
		}
		pv, tv := fieldValues(p), fieldValues(t)
		for _, f := range Fields {
			if pv[f].equal(tv[f]) {
				correct[f]++
				continue
			}
			report.Mismatches = append(report.Mismatches, Mismatch{
				EmailID:   t.EmailID,
				Field:     f,
				Predicted: pv[f].String(),
				Truth:     tv[f].String(),
			})
		}
	}

	var totalCorrect, totalFields int
	for _, f := range Fields {
		score := FieldScore{Field: f, Correct: correct[f], Total: len(truth)}
		if score.Total > 0 {
			score.Accuracy = float64(score.Correct) / float64(score.Total) * 100
		}
		report.Fields = append(report.Fields, score)
		totalCorrect += score.Correct
		totalFields += score.Total
	}
	if totalFields > 0 {
		report.Overall = float64(totalCorrect) / float64(totalFields) * 100
	}
	return report
}

// Rating buckets an overall accuracy percentage.
func Rating(overall float64) string {
	switch {
	case overall >= 90:
		return "EXCEPTIONAL"
	case overall >= 80:
		return "STRONG"
	case overall >= 70:
		return "ACCEPTABLE"
	}
	return "NEEDS IMPROVEMENT"
}

// WriteText prints the per-field table, the overall score and at most topN
// mismatches.
func (r Report) WriteText(w io.Writer, topN int) error {
	var b strings.Builder
	line := strings.Repeat("=", 70)
	fmt.Fprintf(&b, "%s\n%sEXTRACTION ACCURACY METRICS\n%s\n", line, strings.Repeat(" ", 20), line)
	for _, s := range r.Fields {
		mark := "~"
		switch {
		case s.Accuracy >= 85:
			mark = "+"
		case s.Accuracy < 70:
			mark = "x"
		}
		fmt.Fprintf(&b, "%s %-28s: %6.2f%%  (%d/%d)\n", mark, s.Field, s.Accuracy, s.Correct, s.Total)
	}
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 70))
	fmt.Fprintf(&b, "%-30s: %6.2f%%\n", "OVERALL ACCURACY", r.Overall)
	fmt.Fprintf(&b, "%-30s: %s\n%s\n", "RATING", Rating(r.Overall), line)

	for _, id := range r.Missing {
		fmt.Fprintf(&b, "missing prediction: %s\n", id)
	}

	if len(r.Mismatches) == 0 {
		b.WriteString("no mismatches\n")
	} else if topN > 0 {
		n := min(topN, len(r.Mismatches))
		fmt.Fprintf(&b, "\nTOP %d MISMATCHES\n", n)
		for i, m := range r.Mismatches[:n] {
			fmt.Fprintf(&b, "\n%d. Email: %s | Field: %s\n   Predicted: %s\n   Truth:     %s\n",
				i+1, m.EmailID, m.Field, m.Predicted, m.Truth)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// value is one field rendered for comparison.
type value struct {
	null bool
	kind byte // 's' string, 'f' float, 'b' bool
	s    string
	f    float64
	b    bool
}

func (v value) equal(o value) bool {
	if v.null || o.null {
		return v.null && o.null
	}
	switch v.kind {
	case 'f':
		return rules.Round2(v.f) == rules.Round2(o.f)
	case 'b':
		return v.b == o.b
	}
	return strings.EqualFold(strings.TrimSpace(v.s), strings.TrimSpace(o.s))
}

func (v value) String() string {
	switch {
	case v.null:
		return "null"
	case v.kind == 'f':
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case v.kind == 'b':
		return strconv.FormatBool(v.b)
	}
	return v.s
}

func str(s *string) value {
	if s == nil {
		return value{null: true}
	}
	return value{kind: 's', s: *s}
}

func num(f *float64) value {
	if f == nil {
		return value{null: true}
	}
	return value{kind: 'f', f: *f}
}

func fieldValues(r domain.ShipmentRecord) map[string]value {
	pl := value{null: true}
	if r.ProductLine != nil {
		pl = value{kind: 's', s: string(*r.ProductLine)}
	}
	return map[string]value{
		"product_line":          pl,
		"origin_port_code":      str(r.OriginPortCode),
		"origin_port_name":      str(r.OriginPortName),
		"destination_port_code": str(r.DestinationPortCode),
		"destination_port_name": str(r.DestinationPortName),
		"incoterm":              {kind: 's', s: r.Incoterm},
		"cargo_weight_kg":       num(r.CargoWeightKg),
		"cargo_cbm":             num(r.CargoCBM),
		"is_dangerous":          {kind: 'b', b: r.IsDangerous},
	}
}
