package fixture

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Observer receives the outcome of every fixture setup and cleanup call,
// including cleanups run during rollback. It is called synchronously.
type Observer interface {
	ObserveSetup(name string, d time.Duration, err error)
	ObserveCleanup(name string, d time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveSetup(string, time.Duration, error) {}
func (nopObserver) ObserveCleanup(string, time.Duration, error) {}

// Option configures a Set.
type Option func(*Set)

// WithLogger sets the logger used for setup, teardown and suppressed rollback errors.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Set) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver sets the observer notified after each setup and cleanup.
func WithObserver(observer Observer) Option {
	return func(s *Set) {
		if observer != nil {
			s.observer = observer
		}
	}
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
