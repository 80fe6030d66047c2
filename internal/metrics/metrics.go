package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "circulation"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Circulation records engine outcomes. A nil *Circulation is a valid no-op.
type Circulation struct {
	transitions   *prometheus.CounterVec
	conflicts     prometheus.Counter
	finesAssessed *prometheus.CounterVec
	sweepDuration *prometheus.HistogramVec
}

// New registers the circulation metrics on reg. A nil reg yields a no-op recorder.
func New(reg prometheus.Registerer) *Circulation {
	if reg == nil {
		return &Circulation{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Engine operations by outcome.",
	}, []string{"operation", "outcome"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_conflicts_total",
		Help:      "Copy reservations lost to a concurrent approval.",
	})
	finesAssessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fines_assessed_total",
		Help:      "Fines created, by fine type.",
	}, []string{"type"})
	sweepDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of overdue sweeps in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(transitions, conflicts, finesAssessed, sweepDuration)
	return &Circulation{
		transitions:   transitions,
		conflicts:     conflicts,
		finesAssessed: finesAssessed,
		sweepDuration: sweepDuration,
	}
}

// Observe counts one operation, failed when err is non-nil.
func (c *Circulation) Observe(operation string, err error) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(operation), outcome(err)).Inc()
}

func (c *Circulation) IncReservationConflict() {
	if c == nil || c.conflicts == nil {
		return
	}
	c.conflicts.Inc()
}

func (c *Circulation) IncFineAssessed(kind string) {
	if c == nil || c.finesAssessed == nil {
		return
	}
	c.finesAssessed.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (c *Circulation) ObserveSweep(d time.Duration, err error) {
	if c == nil || c.sweepDuration == nil {
		return
	}
	c.sweepDuration.WithLabelValues(outcome(err)).Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
