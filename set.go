package fixture

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/sirupsen/logrus"
)

// Set is the runtime holder for one group of requested fixtures.
// It provides:
// 1) dependency closure discovery and ordering on Setup
// 2) reverse-order rollback when a setup fails
// 3) reverse-order teardown that attempts every cleanup
//
// A Set is meant for one logical caller: Setup, Get and Teardown must not be
// called concurrently. Independent Sets over the same Registry share no state.
type Set struct {
	registry  *Registry
	requested []string

	logger   logrus.FieldLogger
	observer Observer

	state instanceState
}

// New creates a Set for requested over registry. Names are validated on Setup.
func New(registry *Registry, requested []string, opts ...Option) (*Set, error) {
	if registry == nil {
		return nil, fmt.Errorf("new fixture set: registry is nil")
	}
	s := &Set{
		registry:  registry,
		requested: append([]string(nil), requested...),
		logger:    discardLogger(),
		observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Requested returns the fixture names this set was created with.
func (s *Set) Requested() []string {
	return append([]string(nil), s.requested...)
}

// Order returns the setup order of the live fixtures, or nil when not initialized.
func (s *Set) Order() []string {
	if !s.state.initialized() {
		return nil
	}
	return append([]string(nil), s.state.order...)
}

// Setup sets up every requested fixture and its dependencies in dependency order.
// When a fixture fails, the fixtures already set up are cleaned up in reverse
// order, errors from those cleanups are logged and dropped, and the setup error
// is returned.
func (s *Set) Setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.state.initialized() {
		return ErrAlreadyInitialized
	}

	nodes, edges, err := buildGraph(s.registry, s.requested)
	if err != nil {
		return fmt.Errorf("plan fixtures: %w", err)
	}
	order, err := topoSort(nodes, edges)
	if err != nil {
		return fmt.Errorf("plan fixtures: %w", err)
	}

	values := make(Values, len(order))
	cleanups := make([]pendingCleanup, 0, len(order))
	for _, name := range order {
		def, _ := s.registry.get(name)
		log := s.logger.WithField("fixture", name)
		log.Debug("setting up fixture")

		start := time.Now()
		value, cleanup, err := runSetup(ctx, def, values.restrict(def.deps))
		s.observer.ObserveSetup(name, time.Since(start), err)
		if err != nil {
			log.WithError(err).Debug("fixture setup failed, rolling back")
			s.rollback(ctx, cleanups)
			s.state.reset()
			return &SetupError{Name: name, Err: err}
		}

		cleanups = append(cleanups, pendingCleanup{name: name, cleanup: cleanup})
		values[name] = value
	}

	s.state = instanceState{
		values:   values,
		cleanups: cleanups,
		order:    order,
	}
	s.logger.WithField("fixtures", len(order)).Debug("fixtures set up")
	return nil
}

// Teardown runs every pending cleanup in reverse setup order. All cleanups are
// attempted; the first failure is returned as a *TeardownError. The set is
// uninitialized afterwards even on failure, so a second Teardown is a no-op.
func (s *Set) Teardown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cleanups := s.state.cleanups
	defer s.state.reset()

	var first error
	for i := len(cleanups) - 1; i >= 0; i-- {
		c := cleanups[i]
		if err := s.runCleanup(ctx, c); err != nil {
			s.logger.WithField("fixture", c.name).WithError(err).Error("fixture cleanup failed")
			if first == nil {
				first = &TeardownError{Name: c.name, Err: err}
			}
		}
	}
	return first
}

// Get returns the values of the requested fixtures. Dependencies that were
// not requested are not included.
func (s *Set) Get() (Values, error) {
	if !s.state.initialized() {
		return nil, ErrNotInitialized
	}
	return s.state.values.restrict(s.requested), nil
}

// runSetup converts a panic in a fixture setup into an error so the regular
// rollback path still runs.
func runSetup(ctx context.Context, def compiledDefinition, deps Values) (value any, cleanup CleanupFunc, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("panic: %w", e)
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return def.setup(ctx, deps)
}

func (s *Set) rollback(ctx context.Context, cleanups []pendingCleanup) {
	for i := len(cleanups) - 1; i >= 0; i-- {
		c := cleanups[i]
		if err := s.runCleanup(ctx, c); err != nil {
			s.logger.WithField("fixture", c.name).WithError(err).Warn("ignoring cleanup failure during rollback")
		}
	}
}

func (s *Set) runCleanup(ctx context.Context, c pendingCleanup) error {
	start := time.Now()
	err := c.cleanup(ctx)
	s.observer.ObserveCleanup(c.name, time.Since(start), err)
	return err
}

// ValueAs returns the value of name cast to T.
func ValueAs[T any](values Values, name string) (T, error) {
	var zero T
	v, ok := values[name]
	if !ok {
		return zero, MissingValueError{Name: name}
	}
	typed, ok := v.(T)
	if !ok {
		return zero, TypeMismatchError{
			Name:     name,
			Expected: reflect.TypeOf((*T)(nil)).Elem().String(),
			Actual:   fmt.Sprintf("%T", v),
		}
	}
	return typed, nil
}

// MustValue is like ValueAs but panics on error. Intended for fixture setups
// reading their declared dependencies: Setup turns the panic into a
// *SetupError and rolls back.
func MustValue[T any](values Values, name string) T {
	v, err := ValueAs[T](values, name)
	if err != nil {
		panic(err)
	}
	return v
}
