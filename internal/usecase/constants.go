package usecase

import "time"

const (
	// DefaultSummaryWindowDays is the rolling window used when the caller does
	// not ask for one.
	DefaultSummaryWindowDays = 30

	// MaxSummaryWindowDays caps the rolling window to keep summary queries
	// bounded.
	MaxSummaryWindowDays = 365

	// SummaryCacheTTL is how long a computed summary is served from cache.
	// Dashboards tolerate this much staleness.
	SummaryCacheTTL = 30 * time.Second

	// DefaultPendingLimit and MaxPendingLimit bound the notifier's pending
	// dunning event listing.
	DefaultPendingLimit = 50
	MaxPendingLimit     = 500
)
