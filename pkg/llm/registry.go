package llm

import (
	"fmt"
	"sort"
	"strings"
)

// Registry holds named LLM backends. Lookup order in Resolve:
// exact key, then the configured default, then the first registered
// provider by sorted name. An empty registry is a configuration error.
type Registry struct {
	providers    map[string]LLMProvider
	defaultModel string
}

func NewRegistry(defaultModel string) *Registry {
	return &Registry{
		providers:    make(map[string]LLMProvider),
		defaultModel: strings.ToLower(defaultModel),
	}
}

// Register adds a backend under a logical model name (e.g. "deepseek").
func (r *Registry) Register(name string, provider LLMProvider) {
	r.providers[strings.ToLower(name)] = provider
}

// Resolve returns the backend for the requested model key along with the
// key it actually resolved to. Unknown keys silently fall back to the
// default, then to any available provider, so a bad client-supplied model
// name never fails a request. Only an empty registry errors.
func (r *Registry) Resolve(model string) (LLMProvider, string, error) {
	if len(r.providers) == 0 {
		return nil, "", fmt.Errorf("no llm providers registered")
	}

	key := strings.ToLower(model)
	if key == "" {
		key = r.defaultModel
	}

	if provider, ok := r.providers[key]; ok {
		return provider, key, nil
	}
	if provider, ok := r.providers[r.defaultModel]; ok {
		return provider, r.defaultModel, nil
	}

	// Deterministic "first available" fallback.
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return r.providers[names[0]], names[0], nil
}

// Names returns the registered model keys, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
