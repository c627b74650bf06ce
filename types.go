package fixture

import (
	"context"
	"sort"
)

// CleanupFunc releases a resource created by a fixture setup.
type CleanupFunc func(ctx context.Context) error

// Result is what a fixture setup produces: the resource value and its cleanup.
// Cleanup may be nil. In that case Close is used when Value implements io.Closer.
type Result[Out any] struct {
	Value   Out
	Cleanup CleanupFunc
}

// Definition describes one fixture.
//
// Deps lists the names of fixtures that must be set up first. Their values are
// passed to Setup. Duplicate names are ignored; order is kept for iteration.
// Setup constructs the resource and must be provided.
type Definition[Out any] struct {
	Deps  []string
	Setup func(ctx context.Context, deps Values) (Result[Out], error)
}

// Values is a read-only view of resolved fixture values keyed by fixture name.
type Values map[string]any

// Lookup returns the raw value for name.
func (v Values) Lookup(name string) (any, bool) {
	out, ok := v[name]
	return out, ok
}

// Names returns the fixture names in the view, sorted.
func (v Values) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (v Values) restrict(names []string) Values {
	out := make(Values, len(names))
	for _, name := range names {
		if value, ok := v[name]; ok {
			out[name] = value
		}
	}
	return out
}
