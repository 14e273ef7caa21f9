// Package metrics exposes nurturing cycle results as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"nurturing_engine/internal/domain/nurturing"
)

const namespace = "nurturing"

// Metrics holds the collectors updated after every cycle.
type Metrics struct {
	cycles          prometheus.Counter
	cycleDuration   prometheus.Histogram
	lastCycle       prometheus.Gauge
	outcomes        *prometheus.CounterVec
	ruleErrors      *prometheus.CounterVec
	coalescedCycles prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed nurturing cycles.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall-clock duration of a nurturing cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time the last cycle started.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_contacts_total",
			Help:      "Contacts processed per rule, by outcome.",
		}, []string{"rule_id", "outcome"}),
		ruleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_errors_total",
			Help:      "Rules whose eligibility query failed.",
		}, []string{"rule_id"}),
		coalescedCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_coalesced_total",
			Help:      "Cycle requests that joined a cycle already in flight.",
		}),
	}
	reg.MustRegister(m.cycles, m.cycleDuration, m.lastCycle, m.outcomes, m.ruleErrors, m.coalescedCycles)
	return m
}

// ObserveCycle records one cycle summary.
func (m *Metrics) ObserveCycle(s nurturing.CycleSummary) {
	m.cycles.Inc()
	m.cycleDuration.Observe(s.Duration.Seconds())
	m.lastCycle.Set(float64(s.StartedAt.Unix()))

	for _, rs := range s.Rules {
		if rs.Err != nil {
			m.ruleErrors.WithLabelValues(rs.RuleID).Inc()
		}
		m.add(rs.RuleID, "dispatched", rs.Dispatched)
		m.add(rs.RuleID, string(nurturing.OutcomeSkippedDuplicate), rs.SkippedDuplicate)
		m.add(rs.RuleID, string(nurturing.OutcomeSkippedNoPhone), rs.SkippedNoPhone)
		m.add(rs.RuleID, string(nurturing.OutcomeFailed), rs.Failed)
	}
}

// ObserveCoalescedCycle counts a cycle request that joined another cycle in flight.
func (m *Metrics) ObserveCoalescedCycle() {
	m.coalescedCycles.Inc()
}

func (m *Metrics) add(ruleID, outcome string, n int) {
	if n > 0 {
		m.outcomes.WithLabelValues(ruleID, outcome).Add(float64(n))
	}
}
