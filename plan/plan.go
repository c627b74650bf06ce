// Package plan loads YAML plan files that name fixture suites and, optionally,
// declare fixture dependencies without code.
package plan

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/chenyanchen/fixture"
)

// Declaration is the code-free shape of a fixture: only its dependencies.
type Declaration struct {
	Deps []string `yaml:"deps"`
}

// Suite is a named group of requested fixtures.
type Suite struct {
	Fixtures []string `yaml:"fixtures"`
}

// Plan is the decoded form of a plan file.
type Plan struct {
	Fixtures map[string]Declaration `yaml:"fixtures"`
	Suites   map[string]Suite       `yaml:"suites"`
}

// UnknownSuiteError means a suite name is not present in the plan.
type UnknownSuiteError struct {
	Name string
}

func (e UnknownSuiteError) Error() string {
	return fmt.Sprintf("suite not found in plan: %q", e.Name)
}

// Load reads and parses a plan file.
func Load(path string) (Plan, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, err
	}
	p, err := Parse(payload)
	if err != nil {
		return Plan{}, fmt.Errorf("parse plan %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes plan YAML.
func Parse(payload []byte) (Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(payload, &p); err != nil {
		return Plan{}, err
	}
	for name, suite := range p.Suites {
		for _, f := range suite.Fixtures {
			if f == "" {
				return Plan{}, fmt.Errorf("suite %q: empty fixture name", name)
			}
		}
	}
	return p, nil
}

// SuiteNames returns the suite names, sorted.
func (p Plan) SuiteNames() []string {
	names := make([]string, 0, len(p.Suites))
	for name := range p.Suites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Requested returns the fixtures requested by suite.
func (p Plan) Requested(suite string) ([]string, error) {
	s, ok := p.Suites[suite]
	if !ok {
		return nil, UnknownSuiteError{Name: suite}
	}
	return append([]string(nil), s.Fixtures...), nil
}

// Registry builds a registry from the declarations. Setups of declared
// fixtures do nothing and produce nil values; use it for planning only.
func (p Plan) Registry() (*fixture.Registry, error) {
	reg := fixture.NewRegistry()
	names := make([]string, 0, len(p.Fixtures))
	for name := range p.Fixtures {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		err := fixture.Register(reg, name, fixture.Definition[any]{
			Deps: p.Fixtures[name].Deps,
			Setup: func(context.Context, fixture.Values) (fixture.Result[any], error) {
				return fixture.Result[any]{}, nil
			},
		})
		if err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Set creates a fixture set for suite over registry.
func (p Plan) Set(registry *fixture.Registry, suite string, opts ...fixture.Option) (*fixture.Set, error) {
	requested, err := p.Requested(suite)
	if err != nil {
		return nil, err
	}
	return fixture.New(registry, requested, opts...)
}

// Graph plans suite over registry without running any fixture.
func (p Plan) Graph(registry *fixture.Registry, suite string) (fixture.Graph, error) {
	requested, err := p.Requested(suite)
	if err != nil {
		return fixture.Graph{}, err
	}
	return fixture.Plan(registry, requested...)
}
