// Package fixturemetrics exports fixture setup and cleanup timings to Prometheus.
package fixturemetrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/chenyanchen/fixture"
)

const namespace = "fixture"

// Observer implements fixture.Observer with Prometheus collectors.
type Observer struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

var _ fixture.Observer = (*Observer)(nil)

// New creates an Observer and registers its collectors with reg.
func New(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of fixture setup and cleanup calls.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"fixture", "phase", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Number of failed fixture setup and cleanup calls.",
		}, []string{"fixture", "phase"}),
	}
	for _, c := range []prometheus.Collector{o.duration, o.failures} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register fixture metrics: %w", err)
		}
	}
	return o, nil
}

func (o *Observer) ObserveSetup(name string, d time.Duration, err error) {
	o.observe(name, "setup", d, err)
}

func (o *Observer) ObserveCleanup(name string, d time.Duration, err error) {
	o.observe(name, "cleanup", d, err)
}

func (o *Observer) observe(name, phase string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		o.failures.WithLabelValues(name, phase).Inc()
	}
	o.duration.WithLabelValues(name, phase, outcome).Observe(d.Seconds())
}
