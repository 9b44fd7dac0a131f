// Package metrics exposes prometheus counters for the submission pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/saga"
)

const namespace = "energyledger"

// Outcome labels for saga runs.
const (
	OutcomeCompleted   = "completed"
	OutcomeFailed      = "failed"
	OutcomeCompensated = "compensated"
)

// Metrics groups the application counters.
type Metrics struct {
	sagaRuns             *prometheus.CounterVec
	compensationFailures *prometheus.CounterVec
	entrySubmissions     *prometheus.CounterVec
	unknownFactors       *prometheus.CounterVec
	authFailures         *prometheus.CounterVec
}

var (
	defaultOnce sync.Once
	defaultReg  *Metrics
)

// Default returns the metrics registered on the default prometheus registerer.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultReg = New(prometheus.DefaultRegisterer)
	})
	return defaultReg
}

// New creates the counters and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sagaRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_runs_total",
			Help:      "Saga runs by saga name and outcome.",
		}, []string{"saga", "outcome"}),
		compensationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_compensation_failures_total",
			Help:      "Undo steps that failed and may have left orphaned data.",
		}, []string{"saga", "step"}),
		entrySubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entry_submissions_total",
			Help:      "Entry submissions by result (created or updated).",
		}, []string{"result"}),
		unknownFactors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "carbon_unknown_factor_total",
			Help:      "Calculations that fell back to the default emission factor.",
		}, []string{"page_key"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Rejected requests by error code.",
		}, []string{"code"}),
	}
	if reg != nil {
		reg.MustRegister(m.sagaRuns, m.compensationFailures, m.entrySubmissions, m.unknownFactors, m.authFailures)
	}
	return m
}

// SagaFinished counts a completed, failed or compensated saga run.
func (m *Metrics) SagaFinished(saga, outcome string) {
	if m == nil {
		return
	}
	m.sagaRuns.WithLabelValues(saga, outcome).Inc()
}

// CompensationFailed counts an undo step that returned an error.
func (m *Metrics) CompensationFailed(saga, step string) {
	if m == nil {
		return
	}
	m.compensationFailures.WithLabelValues(saga, step).Inc()
}

// EntrySubmitted counts an upsert.
func (m *Metrics) EntrySubmitted(created bool) {
	if m == nil {
		return
	}
	result := "updated"
	if created {
		result = "created"
	}
	m.entrySubmissions.WithLabelValues(result).Inc()
}

// UnknownFactor counts a fallback to the default factor.
func (m *Metrics) UnknownFactor(pageKey string) {
	if m == nil {
		return
	}
	m.unknownFactors.WithLabelValues(pageKey).Inc()
}

// AuthFailure counts a rejected request.
func (m *Metrics) AuthFailure(code string) {
	if m == nil {
		return
	}
	m.authFailures.WithLabelValues(code).Inc()
}

// SagaHooks reports saga outcomes to the counters.
func (m *Metrics) SagaHooks() saga.Hooks {
	return saga.Hooks{
		Finished: func(name string, final saga.State, compensated bool) {
			switch {
			case compensated:
				m.SagaFinished(name, OutcomeCompensated)
			case final == saga.StateFailed:
				m.SagaFinished(name, OutcomeFailed)
			default:
				m.SagaFinished(name, OutcomeCompleted)
			}
		},
		CompensationFailed: func(name, step string, _ error) {
			m.CompensationFailed(name, step)
		},
	}
}
