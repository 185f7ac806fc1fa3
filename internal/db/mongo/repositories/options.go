package repositories

import (
	"time"

	"norelock.dev/mongorepo/internal/config"
)

// Option configures a repository.
type Option func(*settings)

type settings struct {
	metrics    *Metrics
	timeout    time.Duration
	logFilters bool
	batchSize  int32
	now        func() time.Time
}

func defaultSettings() settings {
	return settings{now: time.Now}
}

// WithMetrics records every operation on m.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithTimeout bounds every operation that does not hand a cursor back to the caller.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithFilterLogging logs flattened filters and updates at debug level.
func WithFilterLogging(enabled bool) Option {
	return func(s *settings) { s.logFilters = enabled }
}

// WithBatchSize sets the cursor batch size for finds and aggregations.
func WithBatchSize(n int32) Option {
	return func(s *settings) { s.batchSize = n }
}

// WithClock replaces time.Now for insert timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// OptionsFromConfig maps the repository section of cfg onto options.
// metrics may be nil.
func OptionsFromConfig(cfg *config.Config, metrics *Metrics) []Option {
	opts := []Option{
		WithTimeout(cfg.Repository.OperationTimeout),
		WithFilterLogging(cfg.Repository.LogFilters),
		WithBatchSize(cfg.Repository.BatchSize),
	}
	if cfg.Metrics.Enabled && metrics != nil {
		opts = append(opts, WithMetrics(metrics))
	}
	return opts
}
