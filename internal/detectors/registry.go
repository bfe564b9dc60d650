// Package detectors provides heading detection strategies and the merge
// stage that unions their candidates.
package detectors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// BuilderFunc creates a HeadingDetector from heading settings.
type BuilderFunc func(cfg domain.HeadingSettings) (driven.HeadingDetector, error)

// Registry maps detector names to their builders.
// It allows the detector set to be chosen from configuration.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates a new detector registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a detector builder to the registry.
// Name should be unique and match the detector's Name() return value.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates a detector by name.
func (r *Registry) Build(name string, cfg domain.HeadingSettings) (driven.HeadingDetector, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("detector %q: %w", name, domain.ErrUnsupportedType)
	}
	return builder(cfg)
}

// BuildMerger creates a Merger running cfg.Strategies in order.
func (r *Registry) BuildMerger(cfg domain.HeadingSettings) (*Merger, error) {
	if len(cfg.Strategies) == 0 {
		return nil, fmt.Errorf("no heading strategies configured: %w", domain.ErrInvalidInput)
	}
	m := NewMerger()
	for _, name := range cfg.Strategies {
		d, err := r.Build(name, cfg)
		if err != nil {
			return nil, err
		}
		m.Add(d)
	}
	return m, nil
}

// Has returns true if a detector with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered detector names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
