package tpctrack

import (
	"log/slog"
	"time"

	"github.com/hupe1980/tpctrack/engine"
	"github.com/hupe1980/tpctrack/internal/hits"
	"github.com/hupe1980/tpctrack/merger"
	"github.com/hupe1980/tpctrack/resource"
	"github.com/hupe1980/tpctrack/slicetracker"
)

// DuplicatePolicy resolves hits sharing an external id.
type DuplicatePolicy = hits.DuplicatePolicy

// Duplicate id policies.
const (
	LastWriteWins    = hits.LastWriteWins
	FirstWriteWins   = hits.FirstWriteWins
	RejectDuplicates = hits.RejectDuplicates
)

type options struct {
	engine           engine.Config
	refit            bool
	sliceTracker     engine.TrackerFactory
	merger           merger.Factory
	rc               *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Tracker.
type Option func(*options)

// WithWorkers sets the number of slices reconstructed concurrently.
// 1 reproduces the sequential reference order.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.engine.Workers = n
	}
}

// WithDuplicatePolicy sets how hits sharing an external id are handled.
// The default keeps the last one.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(o *options) {
		o.engine.DuplicatePolicy = p
	}
}

// WithGeometryCheck selects whether slices with a layout differing from
// slice 0 fail the event (strict, the default) or are only logged.
func WithGeometryCheck(strict bool) Option {
	return func(o *options) {
		if strict {
			o.engine.GeometryCheck = engine.GeometryCheckStrict
		} else {
			o.engine.GeometryCheck = engine.GeometryCheckWarn
		}
	}
}

// WithEventBudget bounds every event from its memory reservation through
// the merge.
func WithEventBudget(d time.Duration) Option {
	return func(o *options) {
		o.engine.EventBudget = d
	}
}

// WithZCut drops hits with |z| > z before slice tracking. 0 disables the
// cut.
func WithZCut(z float32) Option {
	return func(o *options) {
		o.engine.ZCut = z
	}
}

// WithMass sets the particle mass hypothesis of the refit (GeV/c^2).
func WithMass(m float32) Option {
	return func(o *options) {
		o.engine.Mass = m
	}
}

// WithRefit enables an inside-out refit of every track after merging.
func WithRefit(enabled bool) Option {
	return func(o *options) {
		o.refit = enabled
	}
}

// WithSliceTracker sets the slice tracker constructor. The default is a
// slicetracker.RowFollower with default settings.
func WithSliceTracker(f engine.TrackerFactory) Option {
	return func(o *options) {
		if f != nil {
			o.sliceTracker = f
		}
	}
}

// WithMerger sets the merger constructor. The default is
// merger.PassthroughFactory.
func WithMerger(f merger.Factory) Option {
	return func(o *options) {
		o.merger = f
	}
}

// WithResourceController shares worker slots and scratch memory between
// trackers.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &tpctrack.BasicMetricsCollector{}
//	tr, _ := tpctrack.New(params, tpctrack.WithMetricsCollector(metrics))
//	// ... process events ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		engine:           engine.DefaultConfig(),
		sliceTracker:     func(int) slicetracker.SliceTracker { return slicetracker.NewRowFollower() },
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
