package fixture

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRecorder records setup and cleanup calls in order.
type testRecorder struct {
	setups   []string
	cleanups []string
}

func (r *testRecorder) register(t *testing.T, reg *Registry, name string, deps []string, setupErr, cleanupErr error) {
	t.Helper()
	require.NoError(t, Register(reg, name, Definition[string]{
		Deps: deps,
		Setup: func(_ context.Context, values Values) (Result[string], error) {
			r.setups = append(r.setups, name)
			if setupErr != nil {
				return Result[string]{}, setupErr
			}
			return Result[string]{
				Value: name,
				Cleanup: func(context.Context) error {
					r.cleanups = append(r.cleanups, name)
					return cleanupErr
				},
			}, nil
		},
	}))
}

type testCloser struct {
	closed bool
}

func (c *testCloser) Close() error {
	c.closed = true
	return nil
}

type testObserver struct {
	setups   []string
	cleanups []string
	failed   []string
}

func (o *testObserver) ObserveSetup(name string, _ time.Duration, err error) {
	o.setups = append(o.setups, name)
	if err != nil {
		o.failed = append(o.failed, name)
	}
}

func (o *testObserver) ObserveCleanup(name string, _ time.Duration, err error) {
	o.cleanups = append(o.cleanups, name)
	if err != nil {
		o.failed = append(o.failed, name)
	}
}

func TestSetSingleFixture(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, Register(reg, "foo", Definition[string]{
		Setup: func(context.Context, Values) (Result[string], error) {
			return Result[string]{Value: "test-value"}, nil
		},
	}))

	s, err := New(reg, []string{"foo"})
	require.NoError(t, err)
	require.NoError(t, s.Setup(context.Background()))

	values, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, Values{"foo": "test-value"}, values)
	require.NoError(t, s.Teardown(context.Background()))
}

func TestSetDependencyValues(t *testing.T) {
	reg := NewRegistry()
	var order []string
	MustRegister(reg, "db", Definition[string]{
		Setup: func(context.Context, Values) (Result[string], error) {
			order = append(order, "db")
			return Result[string]{Value: "db-instance"}, nil
		},
	})
	MustRegister(reg, "client", Definition[string]{
		Deps: []string{"db"},
		Setup: func(_ context.Context, deps Values) (Result[string], error) {
			order = append(order, "client")
			db, err := ValueAs[string](deps, "db")
			if err != nil {
				return Result[string]{}, err
			}
			return Result[string]{Value: "client-with-" + db}, nil
		},
	})

	s, err := New(reg, []string{"client"})
	require.NoError(t, err)
	require.NoError(t, s.Setup(context.Background()))

	assert.Equal(t, []string{"db", "client"}, order)
	assert.Equal(t, []string{"db", "client"}, s.Order())
	values, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, Values{"client": "client-with-db-instance"}, values)
}

func TestSetLinearChain(t *testing.T) {
	reg := NewRegistry()
	MustRegister(reg, "a", Definition[string]{
		Setup: func(context.Context, Values) (Result[string], error) {
			return Result[string]{Value: "a"}, nil
		},
	})
	chain := [][2]string{{"b", "a"}, {"c", "b"}, {"d", "c"}}
	for _, link := range chain {
		name, dep := link[0], link[1]
		MustRegister(reg, name, Definition[string]{
			Deps: []string{dep},
			Setup: func(_ context.Context, deps Values) (Result[string], error) {
				return Result[string]{Value: name + "-" + MustValue[string](deps, dep)}, nil
			},
		})
	}

	s, err := New(reg, []string{"d"})
	require.NoError(t, err)
	require.NoError(t, s.Setup(context.Background()))

	assert.Equal(t, []string{"a", "b", "c", "d"}, s.Order())
	values, err := s.Get()
	require.NoError(t, err)
	d, err := ValueAs[string](values, "d")
	require.NoError(t, err)
	assert.Equal(t, "d-c-b-a", d)
}

func TestSetDiamondDeduplicatesAndReverses(t *testing.T) {
	reg := NewRegistry()
	rec := &testRecorder{}
	rec.register(t, reg, "shared", nil, nil, nil)
	rec.register(t, reg, "foo", []string{"shared"}, nil, nil)
	rec.register(t, reg, "bar", []string{"shared", "shared"}, nil, nil)

	s, err := New(reg, []string{"foo", "bar"})
	require.NoError(t, err)
	require.NoError(t, s.Setup(context.Background()))
	assert.Equal(t, []string{"shared", "foo", "bar"}, rec.setups)

	values, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"bar", "foo"}, values.Names())

	require.NoError(t, s.Teardown(context.Background()))
	assert.Equal(t, []string{"bar", "foo", "shared"}, rec.cleanups)
}

func TestSetRollbackOnSetupFailure(t *testing.T) {
	reg := NewRegistry()
	rec := &testRecorder{}
	boom := errors.New("boom")
	rec.register(t, reg, "a", nil, nil, errors.New("cleanup a failed"))
	rec.register(t, reg, "b", []string{"a"}, nil, nil)
	rec.register(t, reg, "c", []string{"b"}, boom, nil)
	rec.register(t, reg, "d", []string{"c"}, nil, nil)

	logger, hook := logtest.NewNullLogger()
	s, err := New(reg, []string{"d"}, WithLogger(logger))
	require.NoError(t, err)

	err = s.Setup(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var setupErr *SetupError
	require.True(t, errors.As(err, &setupErr))
	assert.Equal(t, "c", setupErr.Name)

	assert.Equal(t, []string{"a", "b", "c"}, rec.setups)
	assert.Equal(t, []string{"b", "a"}, rec.cleanups)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "a", hook.LastEntry().Data["fixture"])

	_, err = s.Get()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Nil(t, s.Order())

	require.NoError(t, s.Teardown(context.Background()))
	assert.Equal(t, []string{"b", "a"}, rec.cleanups)
}

func TestSetTeardownAttemptsAllAndReturnsFirstError(t *testing.T) {
	reg := NewRegistry()
	rec := &testRecorder{}
	errB := errors.New("cleanup b")
	errA := errors.New("cleanup a")
	rec.register(t, reg, "a", nil, nil, errA)
	rec.register(t, reg, "b", []string{"a"}, nil, errB)
	rec.register(t, reg, "c", []string{"b"}, nil, nil)

	s, err := New(reg, []string{"c"})
	require.NoError(t, err)
	require.NoError(t, s.Setup(context.Background()))

	err = s.Teardown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errB)
	assert.NotErrorIs(t, err, errA)
	var teardownErr *TeardownError
	require.True(t, errors.As(err, &teardownErr))
	assert.Equal(t, "b", teardownErr.Name)
	assert.Equal(t, []string{"c", "b", "a"}, rec.cleanups)

	_, err = s.Get()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestSetTeardownIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	rec := &testRecorder{}
	rec.register(t, reg, "a", nil, nil, nil)

	s, err := New(reg, []string{"a"})
	require.NoError(t, err)
	require.NoError(t, s.Teardown(context.Background()))
	require.NoError(t, s.Setup(context.Background()))
	require.NoError(t, s.Teardown(context.Background()))
	require.NoError(t, s.Teardown(context.Background()))
	assert.Equal(t, []string{"a"}, rec.cleanups)
}

func TestSetSetupTwiceWithoutTeardown(t *testing.T) {
	reg := NewRegistry()
	rec := &testRecorder{}
	rec.register(t, reg, "a", nil, nil, nil)

	s, err := New(reg, []string{"a"})
	require.NoError(t, err)
	require.NoError(t, s.Setup(context.Background()))
	assert.ErrorIs(t, s.Setup(context.Background()), ErrAlreadyInitialized)
	assert.Equal(t, []string{"a"}, rec.setups)

	require.NoError(t, s.Teardown(context.Background()))
	require.NoError(t, s.Setup(context.Background()))
	assert.Equal(t, []string{"a", "a"}, rec.setups)
}

func TestSetGetBeforeSetup(t *testing.T) {
	s, err := New(NewRegistry(), []string{"a"})
	require.NoError(t, err)
	_, err = s.Get()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestSetCircularDependency(t *testing.T) {
	reg := NewRegistry()
	rec := &testRecorder{}
	rec.register(t, reg, "a", []string{"b"}, nil, nil)
	rec.register(t, reg, "b", []string{"a"}, nil, nil)

	s, err := New(reg, []string{"a"})
	require.NoError(t, err)
	err = s.Setup(context.Background())
	require.Error(t, err)

	var cycleErr CircularDependencyError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, "a", cycleErr.Name)
	assert.Equal(t, []string{"a", "b", "a"}, cycleErr.Path)
	assert.Empty(t, rec.setups)
}

func TestSetMissingFixture(t *testing.T) {
	reg := NewRegistry()
	rec := &testRecorder{}
	rec.register(t, reg, "a", []string{"ghost"}, nil, nil)

	s, err := New(reg, []string{"a"})
	require.NoError(t, err)
	err = s.Setup(context.Background())
	var missing MissingFixtureError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "ghost", missing.Name)
	assert.Equal(t, "a", missing.RequiredBy)
	assert.Empty(t, rec.setups)

	s, err = New(reg, []string{"nope"})
	require.NoError(t, err)
	err = s.Setup(context.Background())
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "nope", missing.Name)
	assert.Empty(t, missing.RequiredBy)
}

func TestSetCloserFallbackAndObserver(t *testing.T) {
	reg := NewRegistry()
	closer := &testCloser{}
	MustRegister(reg, "conn", Definition[*testCloser]{
		Setup: func(context.Context, Values) (Result[*testCloser], error) {
			return Result[*testCloser]{Value: closer}, nil
		},
	})
	MustRegister(reg, "broken", Definition[int]{
		Deps: []string{"conn"},
		Setup: func(context.Context, Values) (Result[int], error) {
			return Result[int]{}, fmt.Errorf("no luck")
		},
	})

	obs := &testObserver{}
	s, err := New(reg, []string{"broken"}, WithObserver(obs))
	require.NoError(t, err)
	require.Error(t, s.Setup(context.Background()))

	assert.True(t, closer.closed)
	assert.Equal(t, []string{"conn", "broken"}, obs.setups)
	assert.Equal(t, []string{"conn"}, obs.cleanups)
	assert.Equal(t, []string{"broken"}, obs.failed)
}

func TestRegisterValidation(t *testing.T) {
	setup := func(context.Context, Values) (Result[int], error) { return Result[int]{}, nil }

	assert.Error(t, Register(nil, "a", Definition[int]{Setup: setup}))
	reg := NewRegistry()
	assert.Error(t, Register(reg, "", Definition[int]{Setup: setup}))
	assert.Error(t, Register(reg, "a", Definition[int]{}))
	assert.Error(t, Register(reg, "a", Definition[int]{Deps: []string{""}, Setup: setup}))
	require.NoError(t, Register(reg, "a", Definition[int]{Setup: setup}))
	assert.Error(t, Register(reg, "a", Definition[int]{Setup: setup}))
	assert.Panics(t, func() { MustRegister(reg, "a", Definition[int]{Setup: setup}) })
	assert.Equal(t, []string{"a"}, reg.Names())

	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestValueAsErrors(t *testing.T) {
	values := Values{"n": 1}

	_, err := ValueAs[string](values, "n")
	var typeErr TypeMismatchError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "string", typeErr.Expected)
	assert.Equal(t, "int", typeErr.Actual)

	_, err = ValueAs[int](values, "missing")
	var missing MissingValueError
	assert.True(t, errors.As(err, &missing))
	assert.Panics(t, func() { MustValue[int](values, "missing") })
}

func TestSetRollbackOnSetupPanic(t *testing.T) {
	reg := NewRegistry()
	rec := &testRecorder{}
	rec.register(t, reg, "db", nil, nil, nil)
	rec.register(t, reg, "cache", []string{"db"}, nil, nil)
	MustRegister(reg, "client", Definition[int]{
		Deps: []string{"db", "cache"},
		Setup: func(_ context.Context, deps Values) (Result[int], error) {
			return Result[int]{Value: MustValue[int](deps, "db")}, nil
		},
	})
	MustRegister(reg, "stringly", Definition[int]{
		Setup: func(context.Context, Values) (Result[int], error) {
			panic("not an error")
		},
	})

	s, err := New(reg, []string{"client"})
	require.NoError(t, err)
	err = s.Setup(context.Background())
	require.Error(t, err)

	var setupErr *SetupError
	require.True(t, errors.As(err, &setupErr))
	assert.Equal(t, "client", setupErr.Name)
	var typeErr TypeMismatchError
	assert.True(t, errors.As(err, &typeErr))
	assert.Equal(t, []string{"cache", "db"}, rec.cleanups)

	_, err = s.Get()
	assert.ErrorIs(t, err, ErrNotInitialized)

	s, err = New(reg, []string{"stringly"})
	require.NoError(t, err)
	err = s.Setup(context.Background())
	require.True(t, errors.As(err, &setupErr))
	assert.Contains(t, setupErr.Error(), "panic: not an error")
}
