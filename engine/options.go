package engine

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/hupe1980/tpctrack/internal/cluster"
	"github.com/hupe1980/tpctrack/internal/hits"
	"github.com/hupe1980/tpctrack/merger"
	"github.com/hupe1980/tpctrack/resource"
)

// GeometryCheck selects how the tracker treats slices whose layout differs
// from slice 0.
type GeometryCheck int

const (
	// GeometryCheckStrict fails the merge with *GeometryMismatchError.
	GeometryCheckStrict GeometryCheck = iota
	// GeometryCheckWarn logs the mismatch and merges anyway.
	GeometryCheckWarn
)

// NoZCut disables the |z| acceptance cut of the partition.
const NoZCut = cluster.NoZCut

// Config holds tracker settings.
type Config struct {
	// Workers is the number of slices reconstructed concurrently.
	// 1 reproduces the sequential reference order.
	Workers int

	// DuplicatePolicy resolves hits sharing an external id.
	DuplicatePolicy hits.DuplicatePolicy

	// GeometryCheck guards the homogeneous layout the merger assumes.
	GeometryCheck GeometryCheck

	// EventBudget bounds an event from the memory reservation through the
	// merge. 0 disables it.
	EventBudget time.Duration

	// ZCut drops hits with |z| > ZCut during the partition. 0 means NoZCut.
	ZCut float32

	// Mass is the particle mass hypothesis of the refit (GeV/c^2).
	Mass float32
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		Workers:         runtime.GOMAXPROCS(0),
		DuplicatePolicy: hits.LastWriteWins,
		GeometryCheck:   GeometryCheckStrict,
		ZCut:            NoZCut,
	}
}

// Option configures a GlobalTracker.
type Option func(*GlobalTracker)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(g *GlobalTracker) {
		g.cfg = cfg
	}
}

// WithWorkers sets the slice worker count.
func WithWorkers(n int) Option {
	return func(g *GlobalTracker) {
		g.cfg.Workers = n
	}
}

// WithDuplicatePolicy sets the duplicate hit id policy.
func WithDuplicatePolicy(p hits.DuplicatePolicy) Option {
	return func(g *GlobalTracker) {
		g.cfg.DuplicatePolicy = p
	}
}

// WithGeometryCheck sets the layout homogeneity check.
func WithGeometryCheck(c GeometryCheck) Option {
	return func(g *GlobalTracker) {
		g.cfg.GeometryCheck = c
	}
}

// WithEventBudget sets the per-event time budget.
func WithEventBudget(d time.Duration) Option {
	return func(g *GlobalTracker) {
		g.cfg.EventBudget = d
	}
}

// WithZCut sets the |z| acceptance cut.
func WithZCut(z float32) Option {
	return func(g *GlobalTracker) {
		g.cfg.ZCut = z
	}
}

// WithMergerFactory sets the merger constructor used for every event.
func WithMergerFactory(f merger.Factory) Option {
	return func(g *GlobalTracker) {
		if f != nil {
			g.newMerger = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *GlobalTracker) {
		g.logger = l
	}
}

// WithMetricsObserver sets the metrics observer.
func WithMetricsObserver(o MetricsObserver) Option {
	return func(g *GlobalTracker) {
		if o != nil {
			g.metrics = o
		}
	}
}

// WithResourceController shares worker slots and scratch memory with other
// trackers. Every event makes one memory reservation of EventMemory bytes.
func WithResourceController(rc *resource.Controller) Option {
	return func(g *GlobalTracker) {
		g.rc = rc
	}
}
