package fixturetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/singleflight"

	"github.com/chenyanchen/fixture"
)

// Use creates a Set for requested, sets it up and registers its teardown with
// t.Cleanup. The test fails immediately when setup fails.
func Use(t testing.TB, registry *fixture.Registry, requested []string, opts ...fixture.Option) fixture.Values {
	t.Helper()

	set, err := fixture.New(registry, requested, opts...)
	require.NoError(t, err)
	require.NoError(t, set.Setup(context.Background()), "setup fixtures %v", requested)
	t.Cleanup(func() {
		if err := set.Teardown(context.Background()); err != nil {
			t.Errorf("teardown fixtures %v: %v", requested, err)
		}
	})

	values, err := set.Get()
	require.NoError(t, err)
	return values
}

// Value is a typed shortcut around fixture.ValueAs that fails the test on error.
func Value[T any](t testing.TB, values fixture.Values, name string) T {
	t.Helper()
	v, err := fixture.ValueAs[T](values, name)
	require.NoError(t, err)
	return v
}

// Shared sets up one Set lazily on first use and hands the same values to
// every caller until Close. Concurrent first callers wait for a single setup;
// a failed setup is retried by the next caller.
type Shared struct {
	set *fixture.Set

	sf singleflight.Group

	mu     sync.RWMutex
	values fixture.Values
}

// NewShared creates a Shared over a new Set for requested.
func NewShared(registry *fixture.Registry, requested []string, opts ...fixture.Option) (*Shared, error) {
	set, err := fixture.New(registry, requested, opts...)
	if err != nil {
		return nil, fmt.Errorf("new shared fixtures: %w", err)
	}
	return &Shared{set: set}, nil
}

// Values returns the shared values, setting the set up on first use.
// The setup keeps the values of ctx but not its cancellation: concurrent
// callers wait on the same setup, so one caller giving up must not fail the others.
func (s *Shared) Values(ctx context.Context) (fixture.Values, error) {
	setupCtx := context.WithoutCancel(ctx)
	s.mu.RLock()
	cached := s.values
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := s.sf.Do("setup", func() (any, error) {
		s.mu.RLock()
		cachedAgain := s.values
		s.mu.RUnlock()
		if cachedAgain != nil {
			return cachedAgain, nil
		}

		if err := s.set.Setup(setupCtx); err != nil {
			return nil, err
		}
		values, err := s.set.Get()
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.values = values
		s.mu.Unlock()
		return values, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(fixture.Values), nil
}

// Use is Values for a test: it fails t when setup fails.
func (s *Shared) Use(t testing.TB) fixture.Values {
	t.Helper()
	values, err := s.Values(context.Background())
	require.NoError(t, err, "setup shared fixtures %v", s.set.Requested())
	return values
}

// Close tears the shared set down. It must run after every user is done,
// typically in TestMain after m.Run returns.
func (s *Shared) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		return nil
	}
	s.values = nil
	return s.set.Teardown(ctx)
}
