// Package adapters holds the accounting-provider integrations and the
// registry that selects one by configured name at submission time.
package adapters

import (
	"strings"

	"github.com/motodesk/motodesk/internal/invoicing/domain"
)

type Registry struct {
	adapters map[string]domain.ProviderAdapter
}

func NewRegistry(adapters ...domain.ProviderAdapter) *Registry {
	m := make(map[string]domain.ProviderAdapter, len(adapters))
	for _, a := range adapters {
		m[strings.ToLower(a.Name())] = a
	}
	return &Registry{adapters: m}
}

// Resolve looks up an adapter by name, case-insensitively. Called per
// submission so a configuration change takes effect without restart.
func (r *Registry) Resolve(name string) (domain.ProviderAdapter, error) {
	a, ok := r.adapters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, domain.ErrUnknownProvider
	}
	return a, nil
}
