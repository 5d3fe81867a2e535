package internal

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what a scheduler does with its actions. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Scheduled prometheus.Counter
	Executed  prometheus.Counter
	Cancelled prometheus.Counter
	Failed    prometheus.Counter
	Queued    prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer, scheduler string) *Metrics {
	labels := prometheus.Labels{"scheduler": scheduler}

	return &Metrics{
		Scheduled: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rxjs",
			Subsystem:   "scheduler",
			Name:        "actions_scheduled_total",
			Help:        "Actions queued, reschedules included.",
			ConstLabels: labels,
		})),
		Executed: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rxjs",
			Subsystem:   "scheduler",
			Name:        "actions_executed_total",
			Help:        "Actions run to completion by a flush.",
			ConstLabels: labels,
		})),
		Cancelled: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rxjs",
			Subsystem:   "scheduler",
			Name:        "actions_cancelled_total",
			Help:        "Queued actions unsubscribed before running.",
			ConstLabels: labels,
		})),
		Failed: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rxjs",
			Subsystem:   "scheduler",
			Name:        "actions_failed_total",
			Help:        "Actions whose work returned an error or panicked.",
			ConstLabels: labels,
		})),
		Queued: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "rxjs",
			Subsystem:   "scheduler",
			Name:        "actions_queued",
			Help:        "Actions currently waiting in the queue.",
			ConstLabels: labels,
		})),
	}
}

// register reuses the collector already registered under the same
// descriptor, so two schedulers sharing a name share their series.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *Metrics) observeScheduled(queued int) {
	if m == nil {
		return
	}
	m.Scheduled.Inc()
	m.Queued.Set(float64(queued))
}

func (m *Metrics) observeExecuted(queued int) {
	if m == nil {
		return
	}
	m.Executed.Inc()
	m.Queued.Set(float64(queued))
}

func (m *Metrics) observeCancelled(queued int) {
	if m == nil {
		return
	}
	m.Cancelled.Inc()
	m.Queued.Set(float64(queued))
}

func (m *Metrics) observeFailed() {
	if m == nil {
		return
	}
	m.Failed.Inc()
}
