package xgboost

import (
	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/pkg/log"
)

const defaultParallelThreshold = 64

type config struct {
	logger            log.Logger
	workers           int
	parallelThreshold int
	skipPBuffer       bool
}

func defaultConfig() config {
	return config{
		workers:           0,
		parallelThreshold: defaultParallelThreshold,
		skipPBuffer:       true,
	}
}

func (c *config) validate() error {
	if c.workers < 0 {
		return errors.NewValidationError("workers", "must be >= 0 (0 means one per CPU)", c.workers)
	}
	if c.parallelThreshold < 0 {
		return errors.NewValidationError("parallel_threshold", "must be >= 0", c.parallelThreshold)
	}
	return nil
}

// Option configures a Predictor at load time.
type Option func(*config)

// WithLogger sets the logger used while loading. Defaults to
// log.GetLoggerWithName("xgboost").
func WithLogger(l log.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithWorkers sets the number of goroutines used by batch prediction.
// 0 uses one per CPU.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithParallelThreshold sets the batch size at or below which batch
// prediction stays on the calling goroutine.
func WithParallelThreshold(rows int) Option {
	return func(c *config) {
		c.parallelThreshold = rows
	}
}

// WithSkipPredictionBuffer controls whether the legacy prediction buffer is
// skipped when the header says the model was saved with one. Disable it for
// files whose header flag is set but which carry no buffer.
func WithSkipPredictionBuffer(skip bool) Option {
	return func(c *config) {
		c.skipPBuffer = skip
	}
}
