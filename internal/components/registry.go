package components

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/roach88/tally/internal/progress"
)

// Registry resolves component type names to plugins. Built-in types are
// always present; others are added with Register. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	dynamic map[string]Plugin
}

// NewRegistry returns a registry holding only the built-in types.
func NewRegistry() *Registry {
	return &Registry{dynamic: make(map[string]Plugin)}
}

// Register adds a plugin for a type the built-in set does not cover.
func (r *Registry) Register(typeName string, p Plugin) error {
	if typeName == "" {
		return fmt.Errorf("register component type: empty type name")
	}
	if _, ok := builtin(Type(typeName)); ok {
		return fmt.Errorf("register component type %q: built-in types cannot be replaced", typeName)
	}
	if p.Initializer == nil {
		return fmt.Errorf("register component type %q: initializer is required", typeName)
	}
	if err := progress.ValidateSchema(p.Fields); err != nil {
		return fmt.Errorf("register component type %q: %w", typeName, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.dynamic[typeName]; exists {
		return fmt.Errorf("register component type %q: already registered", typeName)
	}
	r.dynamic[typeName] = Plugin{
		Validator:   p.Validator,
		Initializer: p.Initializer,
		Fields:      slices.Clone(p.Fields),
	}
	return nil
}

// Lookup returns the plugin for a type name.
func (r *Registry) Lookup(typeName string) (Plugin, bool) {
	if p, ok := builtin(Type(typeName)); ok {
		return p, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.dynamic[typeName]
	return p, ok
}

// Validator returns the validator for a type, or nil when the type is
// unknown or declares none.
func (r *Registry) Validator(typeName string) Validator {
	p, _ := r.Lookup(typeName)
	return p.Validator
}

// Initializer returns the initializer for a type, or nil when unknown.
func (r *Registry) Initializer(typeName string) Initializer {
	p, _ := r.Lookup(typeName)
	return p.Initializer
}

// Types returns every resolvable type name, built-ins first.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(BuiltinTypes))
	for _, t := range BuiltinTypes {
		out = append(out, string(t))
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append(out, slices.Sorted(maps.Keys(r.dynamic))...)
}
