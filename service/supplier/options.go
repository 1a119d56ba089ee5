package supplier

import "time"

const (
	DefaultFetchTimeout      = 30 * time.Second
	DefaultDeleteBatchSize   = 5000
	DefaultUpsertBatchSize   = 500
	DefaultProgressThreshold = 1000
	DefaultStaleAfter        = 30 * time.Minute
	DefaultUserAgent         = "Bereifung24-Workshop-Bot/1.0"
)

// Options configures a supplier sync engine.
type Options struct {
	FetchTimeout time.Duration
	UserAgent    string
	// DeleteBatchSize and UpsertBatchSize are upper bounds; the executor
	// clamps them further to the store's bind-parameter ceiling.
	DeleteBatchSize int
	UpsertBatchSize int
	// Feeds with more candidates than this emit progress signals.
	ProgressThreshold int
	// A source syncing for longer than StaleAfter is reported stale. It also bounds the source lock lease.
	StaleAfter time.Duration
}

func DefaultOptions() Options {
	return Options{
		FetchTimeout:      DefaultFetchTimeout,
		UserAgent:         DefaultUserAgent,
		DeleteBatchSize:   DefaultDeleteBatchSize,
		UpsertBatchSize:   DefaultUpsertBatchSize,
		ProgressThreshold: DefaultProgressThreshold,
		StaleAfter:        DefaultStaleAfter,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = d.FetchTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = d.UserAgent
	}
	if o.DeleteBatchSize <= 0 {
		o.DeleteBatchSize = d.DeleteBatchSize
	}
	if o.UpsertBatchSize <= 0 {
		o.UpsertBatchSize = d.UpsertBatchSize
	}
	if o.ProgressThreshold <= 0 {
		o.ProgressThreshold = d.ProgressThreshold
	}
	if o.StaleAfter <= 0 {
		o.StaleAfter = d.StaleAfter
	}
	return o
}
