package migrate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the migration run metrics.
type Metrics struct {
	StrainsTotal  *prometheus.CounterVec
	FailuresTotal *prometheus.CounterVec
	TubesCreated  prometheus.Counter
	RunDuration   prometheus.Histogram
}

// NewMetrics constructs and registers migration metrics on reg. A nil
// registerer leaves the metrics unregistered, which tests rely on.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StrainsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nemastocks_migration_strains_total",
				Help: "Strains processed by outcome status",
			},
			[]string{"status"},
		),
		FailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nemastocks_migration_failures_total",
				Help: "Failed strains by reason code",
			},
			[]string{"reason"},
		),
		TubesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nemastocks_migration_tubes_created_total",
			Help: "Tube placements created",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nemastocks_migration_run_duration_seconds",
			Help:    "Wall time of a full migration run",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.StrainsTotal, m.FailuresTotal, m.TubesCreated, m.RunDuration)
	}
	return m
}

func (m *Metrics) observeOutcome(o Outcome) {
	if m == nil {
		return
	}
	m.StrainsTotal.WithLabelValues(string(o.Status)).Inc()
	if o.Status == StatusFailed {
		m.FailuresTotal.WithLabelValues(string(o.Reason)).Inc()
	}
	m.TubesCreated.Add(float64(o.TubesCreated))
}

func (m *Metrics) observeDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
}
