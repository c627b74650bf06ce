package fixture

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

type compiledDefinition struct {
	deps  []string
	setup func(ctx context.Context, deps Values) (any, CleanupFunc, error)
}

// Registry stores all registered fixture definitions by name.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]compiledDefinition
}

func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]compiledDefinition),
	}
}

// Register registers one fixture definition with generics.
func Register[Out any](r *Registry, name string, def Definition[Out]) error {
	if r == nil {
		return fmt.Errorf("register fixture: registry is nil")
	}
	if name == "" {
		return fmt.Errorf("register fixture: name is empty")
	}
	if def.Setup == nil {
		return fmt.Errorf("register fixture: setup func is nil for %q", name)
	}

	deps := make([]string, 0, len(def.Deps))
	seen := make(map[string]struct{}, len(def.Deps))
	for _, dep := range def.Deps {
		if dep == "" {
			return fmt.Errorf("register fixture: empty dependency name for %q", name)
		}
		if _, dup := seen[dep]; dup {
			continue
		}
		seen[dep] = struct{}{}
		deps = append(deps, dep)
	}

	compiled := compiledDefinition{
		deps: deps,
		setup: func(ctx context.Context, values Values) (any, CleanupFunc, error) {
			res, err := def.Setup(ctx, values)
			if err != nil {
				return nil, nil, err
			}
			return res.Value, cleanupFor(res), nil
		},
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[name]; exists {
		return fmt.Errorf("register fixture: duplicate definition for %q", name)
	}
	r.defs[name] = compiled
	return nil
}

// MustRegister panics on registration error; intended for package-level test setup.
func MustRegister[Out any](r *Registry, name string, def Definition[Out]) {
	if err := Register(r, name, def); err != nil {
		panic(err)
	}
}

// Names returns all registered fixture names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) get(name string) (compiledDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

func cleanupFor[Out any](res Result[Out]) CleanupFunc {
	if res.Cleanup != nil {
		return res.Cleanup
	}
	if closer, ok := any(res.Value).(io.Closer); ok {
		return func(context.Context) error {
			return closer.Close()
		}
	}
	return func(context.Context) error { return nil }
}
