package fixture

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotInitialized means values were read without a successful Setup.
var ErrNotInitialized = errors.New("fixtures not initialized")

// ErrAlreadyInitialized means Setup was called on a set that was not torn down.
var ErrAlreadyInitialized = errors.New("fixtures already initialized")

// MissingFixtureError means a requested or depended-on fixture is not registered.
// RequiredBy is empty when the name was requested directly.
type MissingFixtureError struct {
	Name       string
	RequiredBy string
}

func (e MissingFixtureError) Error() string {
	if e.RequiredBy == "" {
		return fmt.Sprintf("fixture not found: %q", e.Name)
	}
	return fmt.Sprintf("fixture not found: %q (required by %q)", e.Name, e.RequiredBy)
}

// CircularDependencyError means a fixture depends on itself through its dependencies.
// Name is the fixture at which the cycle was detected.
type CircularDependencyError struct {
	Name string
	Path []string
}

func (e CircularDependencyError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("circular fixture dependency at %q", e.Name)
	}
	return fmt.Sprintf("circular fixture dependency at %q: %s", e.Name, strings.Join(e.Path, " -> "))
}

// SetupError wraps the error returned by a fixture setup.
type SetupError struct {
	Name string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup fixture %q: %v", e.Name, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// TeardownError wraps the first error returned by a cleanup during Teardown.
type TeardownError struct {
	Name string
	Err  error
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("cleanup fixture %q: %v", e.Name, e.Err)
}

func (e *TeardownError) Unwrap() error {
	return e.Err
}

// MissingValueError means ValueAs was asked for a name absent from the values.
type MissingValueError struct {
	Name string
}

func (e MissingValueError) Error() string {
	return fmt.Sprintf("fixture value not found: %q", e.Name)
}

// TypeMismatchError means ValueAs[T] failed to cast the fixture value to T.
type TypeMismatchError struct {
	Name     string
	Expected string
	Actual   string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("fixture type mismatch for %q: expected=%s actual=%s",
		e.Name, e.Expected, e.Actual)
}
