package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Manager keeps named filter presets. It is built once at startup and only read afterwards.
type Manager struct {
	filters map[string]CompiledFilter
}

// NewManager creates a new filter manager
func NewManager() *Manager {
	return &Manager{
		filters: make(map[string]CompiledFilter),
	}
}

// RegisterFilters registers multiple filters at once. Nothing is registered
// unless every expression compiles.
func (m *Manager) RegisterFilters(filters map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(filters))

	for _, name := range slices.Sorted(maps.Keys(filters)) {
		filter, err := Compile(filters[name])
		if err != nil {
			return fmt.Errorf("failed to compile preset '%s': %w", name, err)
		}
		compiled[name] = filter
	}

	maps.Copy(m.filters, compiled)
	return nil
}

// GetFilter returns a compiled filter by name
func (m *Manager) GetFilter(name string) (CompiledFilter, bool) {
	filter, exists := m.filters[name]
	return filter, exists
}

// ListFilters returns all registered filter names, sorted
func (m *Manager) ListFilters() []string {
	return slices.Sorted(maps.Keys(m.filters))
}

// Resolve picks the filter for a run.
// Priority: ad-hoc expression > named preset > configured default.
// It returns nil when none is set.
func (m *Manager) Resolve(expression, preset, fallback string) (CompiledFilter, error) {
	if strings.TrimSpace(expression) != "" {
		return Compile(expression)
	}

	if preset != "" {
		if filter, ok := m.GetFilter(preset); ok {
			return filter, nil
		}
		return nil, fmt.Errorf("preset '%s' not found in config", preset)
	}

	if strings.TrimSpace(fallback) != "" {
		return Compile(fallback)
	}

	return nil, nil
}
