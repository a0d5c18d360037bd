package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing, so use cases can be tested without a registry.
type Metrics struct {
	// Import metrics
	ImportsTotal        prometheus.Counter
	CandidatesProcessed *prometheus.CounterVec
	ProjectionsCreated  prometheus.Counter

	// Maintenance metrics
	DuplicatesRemoved     prometheus.Counter
	ProjectionsBackfilled prometheus.Counter

	// Ledger metrics
	LedgerComputations prometheus.Counter
	LedgerCacheHits    *prometheus.CounterVec
	MonthsClosed       prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ImportsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billsplit_imports_total",
			Help: "Total number of invoice import batches processed",
		}),
		CandidatesProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billsplit_candidates_processed_total",
				Help: "Total candidates processed by outcome",
			},
			[]string{"outcome"},
		),
		ProjectionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billsplit_projections_created_total",
			Help: "Total future installment projections created",
		}),
		DuplicatesRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billsplit_duplicates_removed_total",
			Help: "Total duplicate projections removed by maintenance",
		}),
		ProjectionsBackfilled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billsplit_projections_backfilled_total",
			Help: "Total missing projections created by maintenance",
		}),
		LedgerComputations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billsplit_ledger_computations_total",
			Help: "Total ledger summary computations",
		}),
		LedgerCacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billsplit_ledger_cache_total",
				Help: "Ledger summary cache lookups by result",
			},
			[]string{"result"},
		),
		MonthsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billsplit_months_closed_total",
			Help: "Total month closings recorded",
		}),
	}
}

// Candidate outcomes recorded by ObserveCandidate.
const (
	OutcomeCreated = "created"
	OutcomeMerged  = "merged"
	OutcomeSkipped = "skipped"
	OutcomeNoise   = "noise"
	OutcomeFailed  = "failed"
)

// ObserveImport counts one import batch.
func (m *Metrics) ObserveImport() {
	if m == nil {
		return
	}

	m.ImportsTotal.Inc()
}

// ObserveCandidate counts one candidate outcome.
func (m *Metrics) ObserveCandidate(outcome string) {
	if m == nil {
		return
	}

	m.CandidatesProcessed.WithLabelValues(outcome).Inc()
}

// ObserveProjections counts n created projections.
func (m *Metrics) ObserveProjections(n int) {
	if m == nil || n <= 0 {
		return
	}

	m.ProjectionsCreated.Add(float64(n))
}

// ObserveMaintenance counts a maintenance run's results.
func (m *Metrics) ObserveMaintenance(deduped, backfilled int) {
	if m == nil {
		return
	}

	m.DuplicatesRemoved.Add(float64(deduped))
	m.ProjectionsBackfilled.Add(float64(backfilled))
}

// ObserveLedger counts one full ledger computation.
func (m *Metrics) ObserveLedger() {
	if m == nil {
		return
	}

	m.LedgerComputations.Inc()
}

// ObserveLedgerCache counts one cache lookup ("hit" or "miss").
func (m *Metrics) ObserveLedgerCache(result string) {
	if m == nil {
		return
	}

	m.LedgerCacheHits.WithLabelValues(result).Inc()
}

// ObserveClose counts one month closing.
func (m *Metrics) ObserveClose() {
	if m == nil {
		return
	}

	m.MonthsClosed.Inc()
}
