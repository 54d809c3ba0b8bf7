package validator

// Registry holds validators keyed by rule key, in registration order.
type Registry struct {
	validators map[string]Validator
	order      []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[string]Validator)}
}

// Register adds a validator. Re-registering a key replaces the validator but
// keeps its original position.
func (r *Registry) Register(v Validator) {
	key := v.RuleKey()
	if _, ok := r.validators[key]; !ok {
		r.order = append(r.order, key)
	}
	r.validators[key] = v
}

// Get returns the validator for a given rule key, or nil if not found.
func (r *Registry) Get(key string) Validator {
	return r.validators[key]
}

// All returns all registered validators in registration order.
func (r *Registry) All() []Validator {
	out := make([]Validator, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.validators[key])
	}
	return out
}

// DefaultRegistry wires the built-in field validators. Ports must run before
// the product line, which is derived from the resolved codes.
func DefaultRegistry(ports PortResolver) *Registry {
	r := NewRegistry()
	r.Register(portValidator{ports: ports})
	r.Register(productLineValidator{})
	r.Register(incotermValidator{})
	r.Register(weightValidator())
	r.Register(volumeValidator())
	r.Register(dangerousValidator{})
	return r
}
