// Package prompt renders the per-email extraction instructions sent to the LLM.
package prompt

import (
	"embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler-sommer/stick"

	"freightx/internal/domain"
	"freightx/internal/portref"
	"freightx/internal/rules"
)

//go:embed templates/*.twig
var templateFS embed.FS

// DefaultTemplate is the name of the built-in extraction template.
const DefaultTemplate = "extraction"

// PortLister exposes the reference ports embedded into every prompt.
type PortLister interface {
	Ports() []portref.Port
}

// Option configures a Builder.
type Option func(*Builder) error

// WithTemplate replaces the built-in template source.
func WithTemplate(src string) Option {
	return func(b *Builder) error {
		if strings.TrimSpace(src) == "" {
			return fmt.Errorf("prompt: empty template")
		}
		b.template = src
		return nil
	}
}

// WithMaxPorts caps how many reference ports are embedded. Zero means all.
func WithMaxPorts(n int) Option {
	return func(b *Builder) error {
		if n < 0 {
			return fmt.Errorf("prompt: max ports must be >= 0, got %d", n)
		}
		b.maxPorts = n
		return nil
	}
}

// Builder renders one self-contained prompt per email. It holds no per-call
// state; the same email always renders the same text.
type Builder struct {
	env      *stick.Env
	template string
	maxPorts int
	ports    string
}

// NewBuilder prepares a Builder over the given reference table.
func NewBuilder(table PortLister, opts ...Option) (*Builder, error) {
	src, err := templateFS.ReadFile("templates/" + DefaultTemplate + ".twig")
	if err != nil {
		return nil, fmt.Errorf("prompt: reading built-in template: %w", err)
	}
	b := &Builder{
		env:      stick.New(nil),
		template: string(src),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.ports = PortContext(table.Ports(), b.maxPorts)
	return b, nil
}

// Build renders the prompt for one email.
func (b *Builder) Build(email domain.Email) (string, error) {
	ctx := map[string]stick.Value{
		"subject":          email.Subject,
		"body":             email.Body,
		"ports":            b.ports,
		"india_prefix":     rules.IndiaPrefix,
		"import_line":      string(domain.ProductLineSeaImportLCL),
		"export_line":      string(domain.ProductLineSeaExportLCL),
		"incoterms":        strings.Join(domain.KnownIncoterms, ", "),
		"default_incoterm": domain.DefaultIncoterm,
		"pounds_to_kg":     strconv.FormatFloat(rules.PoundsToKg, 'f', -1, 64),
		"tonnes_to_kg":     strconv.FormatFloat(rules.TonnesToKg, 'f', -1, 64),
	}

	var out strings.Builder
	if err := b.env.Execute(b.template, &out, ctx); err != nil {
		return "", fmt.Errorf("prompt: rendering email %s: %w", email.ID, err)
	}
	return out.String(), nil
}

// PortContext renders ports in compact CODE=Name lines, at most max of them
// when max > 0.
func PortContext(ports []portref.Port, max int) string {
	if max > 0 && len(ports) > max {
		ports = ports[:max]
	}
	var sb strings.Builder
	for i, p := range ports {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(p.Code)
		sb.WriteByte('=')
		sb.WriteString(p.Name)
	}
	return sb.String()
}
