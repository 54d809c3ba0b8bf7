package llm

import (
	"fmt"

	"freightx/internal/config"
	"freightx/internal/domain"
	"freightx/internal/port"
)

// ProviderFactory is a function that creates an LLMClient from a provider config.
type ProviderFactory func(cfg *config.LLMProviderConfig) (port.LLMClient, error)

// registry of provider factories, populated explicitly via RegisterProvider
// by the binaries that know which providers they ship.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewClient creates an LLMClient from a provider config using the registered factory.
func NewClient(cfg *config.LLMProviderConfig) (port.LLMClient, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, cfg.Provider)
	}
	return factory(cfg)
}

// NewChain builds one client per configured provider, in fallback order.
// A single provider is returned as is.
func NewChain(cfgs []*config.LLMProviderConfig, opts ...FallbackOption) (port.LLMClient, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", domain.ErrUnknownProvider)
	}
	clients := make([]port.LLMClient, 0, len(cfgs))
	names := make([]string, 0, len(cfgs))
	for _, cfg := range cfgs {
		c, err := NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating %s client: %w", cfg.Provider, err)
		}
		clients = append(clients, c)
		names = append(names, cfg.Provider)
	}
	if len(clients) == 1 {
		return clients[0], nil
	}
	return NewFallbackClient(clients, names, opts...), nil
}
