package gdbindex

import (
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Builder.
type Option func(*options)

type options struct {
	logger     log.Logger
	registerer prometheus.Registerer
	workers    int
	wordSize   int
}

// WithLogger sets the logger used for phase timings and build summaries.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegisterer registers the builder's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithConcurrency sets the worker count for the data-parallel phases.
// Defaults to GOMAXPROCS.
func WithConcurrency(workers int) Option {
	return func(o *options) {
		if workers > 0 {
			o.workers = workers
		}
	}
}

// WithWordSize sets the target address size in bytes (4 or 8). Defaults
// to 8. Debug info encoding a different address size is rejected.
func WithWordSize(size int) Option {
	return func(o *options) {
		o.wordSize = size
	}
}
