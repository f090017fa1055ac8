package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the billing core.
type Metrics struct {
	// Ledger metrics
	EntriesRecorded  *prometheus.CounterVec
	DuplicateCharges prometheus.Counter
	EntryAmountCents prometheus.Histogram

	// Summary metrics
	SummariesComputed prometheus.Counter
	SummaryCacheHits  prometheus.Counter

	// Alert metrics
	AlertsRaised   *prometheus.CounterVec
	AlertsResolved prometheus.Counter

	// Dunning metrics
	DunningEnqueued    prometheus.Counter
	DunningTransitions *prometheus.CounterVec
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates and registers all metrics on the given registerer.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EntriesRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_ledger_entries_recorded_total",
				Help: "Total number of ledger entries recorded",
			},
			[]string{"source"},
		),
		DuplicateCharges: factory.NewCounter(prometheus.CounterOpts{
			Name: "billing_ledger_duplicate_charges_total",
			Help: "Total number of charge submissions skipped as duplicates",
		}),
		EntryAmountCents: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "billing_ledger_entry_amount_cents",
			Help:    "Absolute amounts of recorded ledger entries in cents",
			Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 1000000},
		}),
		SummariesComputed: factory.NewCounter(prometheus.CounterOpts{
			Name: "billing_summaries_computed_total",
			Help: "Total number of tenant summaries computed from the ledger",
		}),
		SummaryCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "billing_summary_cache_hits_total",
			Help: "Total number of tenant summaries served from cache",
		}),
		AlertsRaised: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_alerts_raised_total",
				Help: "Total number of billing alerts raised",
			},
			[]string{"alert_type"},
		),
		AlertsResolved: factory.NewCounter(prometheus.CounterOpts{
			Name: "billing_alerts_resolved_total",
			Help: "Total number of billing alerts resolved",
		}),
		DunningEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "billing_dunning_events_enqueued_total",
			Help: "Total number of dunning events enqueued",
		}),
		DunningTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_dunning_transitions_total",
				Help: "Total number of dunning event status transitions",
			},
			[]string{"status"},
		),
	}
}
