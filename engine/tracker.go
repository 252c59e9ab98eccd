package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unsafe"

	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/internal/cluster"
	"github.com/hupe1980/tpctrack/internal/fit"
	"github.com/hupe1980/tpctrack/internal/hits"
	"github.com/hupe1980/tpctrack/merger"
	"github.com/hupe1980/tpctrack/model"
	"github.com/hupe1980/tpctrack/resource"
	"github.com/hupe1980/tpctrack/slicetracker"
	"golang.org/x/sync/errgroup"
)

// scratchBytesPerHit approximates the per-hit partition memory (coordinates,
// ids, order and source tables).
const scratchBytesPerHit = 40

// EventMemory returns the memory an event of n hits reserves from the
// resource controller: the hit table plus the partition scratch.
func EventMemory(n int) int64 {
	return int64(n) * (int64(unsafe.Sizeof(model.Hit{})) + scratchBytesPerHit)
}

// TrackerFactory creates the slice tracker of one slice.
type TrackerFactory func(slice int) slicetracker.SliceTracker

// GlobalTracker owns one slice tracker per slice and runs events through
// partition, slice reconstruction, merge and resolution.
type GlobalTracker struct {
	cfg       Config
	params    []geometry.Param
	rows      []int
	mismatch  int // first slice with a layout differing from slice 0, or -1
	trackers  []slicetracker.SliceTracker
	newMerger merger.Factory
	fitter    *fit.Fitter

	table     *hits.Table
	part      *cluster.Partition
	sources   []model.SourceID
	outputs   []*slicetracker.Output
	merged    *merger.Output
	tracks    []model.Track
	trackHits []int
	sliceTime time.Duration

	state   State
	stats   Statistics
	logger  *slog.Logger
	metrics MetricsObserver
	rc      *resource.Controller
}

// New creates a tracker for the slice layout params, creating one slice
// tracker per slice with newTracker and initializing it with its geometry.
func New(params []geometry.Param, newTracker TrackerFactory, opts ...Option) (*GlobalTracker, error) {
	if newTracker == nil {
		return nil, ErrNoSliceTracker
	}
	g := &GlobalTracker{
		cfg:       DefaultConfig(),
		params:    make([]geometry.Param, len(params)),
		rows:      make([]int, len(params)),
		mismatch:  -1,
		trackers:  make([]slicetracker.SliceTracker, len(params)),
		outputs:   make([]*slicetracker.Output, len(params)),
		newMerger: merger.PassthroughFactory,
		metrics:   NoopMetricsObserver{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.cfg.Workers <= 0 {
		g.cfg.Workers = 1
	}
	if g.cfg.Mass <= 0 {
		g.cfg.Mass = fit.PionMass
	}
	if g.cfg.ZCut <= 0 {
		g.cfg.ZCut = NoZCut
	}

	for i := range params {
		p := params[i].Clone()
		p.Slice = i
		if err := p.Validate(); err != nil {
			return nil, err
		}
		g.params[i] = p
		g.rows[i] = p.NRows()
		if g.mismatch < 0 && i > 0 && !g.params[0].SameLayout(&p) {
			g.mismatch = i
		}

		tr := newTracker(i)
		if err := tr.Initialize(p); err != nil {
			return nil, &SliceError{Slice: i, Err: err}
		}
		g.trackers[i] = tr
	}

	g.fitter = fit.NewFitter(g.params).WithMass(g.cfg.Mass)
	g.table = hits.NewTable(g.cfg.DuplicatePolicy)
	g.StartEvent()
	return g, nil
}

// Config returns the effective configuration.
func (g *GlobalTracker) Config() Config { return g.cfg }

// Params returns the slice layout.
func (g *GlobalTracker) Params() []geometry.Param { return g.params }

// State returns the pipeline state.
func (g *GlobalTracker) State() State { return g.state }

// Statistics returns the accumulated statistics.
func (g *GlobalTracker) Statistics() Statistics { return g.stats }

// StartEvent discards all per-event state, including that of every slice
// tracker, and returns to Idle.
func (g *GlobalTracker) StartEvent() {
	g.table.Reset()
	g.part = nil
	g.sources = g.sources[:0]
	clear(g.outputs)
	g.merged = nil
	g.tracks = g.tracks[:0]
	g.trackHits = g.trackHits[:0]
	g.sliceTime = 0
	for _, tr := range g.trackers {
		tr.StartEvent()
	}
	g.state = StateIdle
}

// Reserve sets the hit capacity of the current event.
func (g *GlobalTracker) Reserve(n int) error {
	if g.state != StateIdle {
		return fmt.Errorf("%w: reserve in %s", ErrInvalidState, g.state)
	}
	g.table.Reserve(n)
	return nil
}

// AddHit stages one hit of the current event.
func (g *GlobalTracker) AddHit(h model.Hit) error {
	if g.state != StateIdle {
		return fmt.Errorf("%w: add hit in %s", ErrInvalidState, g.state)
	}
	return g.table.Add(h)
}

// FinishEvent sorts the staged hits and moves to EventLoaded.
func (g *GlobalTracker) FinishEvent() error {
	if g.state != StateIdle {
		return fmt.Errorf("%w: finish event in %s", ErrInvalidState, g.state)
	}
	if err := g.table.Finalize(); err != nil {
		return err
	}
	g.state = StateEventLoaded
	return nil
}

// ReadEvent stages hits and finishes the event.
func (g *GlobalTracker) ReadEvent(hs []model.Hit) error {
	if err := g.Reserve(len(hs)); err != nil {
		return err
	}
	for i := range hs {
		if err := g.table.Add(hs[i]); err != nil {
			return err
		}
	}
	return g.FinishEvent()
}

// FindTracks reconstructs the loaded event and returns the number of
// resolved tracks. An event without hits yields zero tracks without
// running the slice trackers or the merger.
func (g *GlobalTracker) FindTracks(ctx context.Context) (int, error) {
	if g.state != StateEventLoaded {
		return 0, fmt.Errorf("%w: find tracks in %s", ErrInvalidState, g.state)
	}
	g.stats.Events++
	start := time.Now()

	n, err := g.findTracks(ctx)
	g.metrics.OnFindTracks(time.Since(start), g.table.Len(), n, err)
	if err != nil {
		if g.logger != nil {
			g.logger.Error("find tracks failed", "hits", g.table.Len(), "state", g.state.String(), "error", err)
		}
		return 0, err
	}
	if g.logger != nil {
		g.logger.Debug("find tracks completed",
			"hits", g.table.Len(),
			"tracks", n,
			"dropped", g.droppedHits(),
			"duration", time.Since(start),
		)
	}
	return n, nil
}

func (g *GlobalTracker) findTracks(ctx context.Context) (int, error) {
	g.tracks = g.tracks[:0]
	g.trackHits = g.trackHits[:0]
	g.sliceTime = 0

	if g.table.Len() == 0 {
		g.state = StateResolved
		return 0, nil
	}

	if g.cfg.EventBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.EventBudget)
		defer cancel()
	}

	mem := EventMemory(g.table.Len())
	if err := g.rc.AcquireMemory(ctx, mem); err != nil {
		return 0, budget(err, StagePartition)
	}
	defer g.rc.ReleaseMemory(mem)

	t := time.Now()
	g.partition()
	g.stage(StagePartition, t)
	g.stats.Hits += int64(g.table.Len())
	g.stats.DroppedHits += int64(g.part.Dropped)

	if g.part.Total() == 0 {
		g.state = StateResolved
		return 0, nil
	}

	t = time.Now()
	if err := g.reconstructSlices(ctx); err != nil {
		return 0, budget(err, StageSlices)
	}
	g.stage(StageSlices, t)
	g.state = StateSlicesReconstructed

	t = time.Now()
	if err := g.merge(ctx); err != nil {
		return 0, budget(err, StageMerge)
	}
	g.stage(StageMerge, t)
	g.state = StateMerged

	t = time.Now()
	if err := g.resolve(); err != nil {
		return 0, err
	}
	g.stage(StageResolve, t)
	g.state = StateResolved
	g.stats.Tracks += int64(len(g.tracks))
	return len(g.tracks), nil
}

// partition splits the sorted table by slice and records the packed source
// id of every partitioned hit.
func (g *GlobalTracker) partition() {
	g.part = cluster.Split(g.table.Hits(), g.rows, g.cfg.ZCut)

	if cap(g.sources) < g.table.Len() {
		g.sources = make([]model.SourceID, g.table.Len())
	}
	g.sources = g.sources[:g.table.Len()]
	clear(g.sources)

	for s, d := range g.part.Slices {
		base := g.part.FirstSliceHit[s]
		for r := d.FirstRow(); r <= d.LastRow(); r++ {
			off := d.RowOffset(r)
			for k := 0; k < d.NumberOfClusters(r); k++ {
				// Split only keeps hits a source id can address.
				g.sources[g.part.Order[base+off+k]] = model.MustSourceID(s, r, k)
			}
		}
	}
}

func (g *GlobalTracker) reconstructSlices(ctx context.Context) error {
	times := make([]time.Duration, len(g.trackers))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Workers)
	for s := range g.trackers {
		eg.Go(func() error {
			if err := g.rc.AcquireWorker(ctx); err != nil {
				return err
			}
			defer g.rc.ReleaseWorker()
			if err := ctx.Err(); err != nil {
				return err
			}

			t := time.Now()
			d := g.part.Slices[s]
			tr := g.trackers[s]
			first, counts := d.RowTables(g.rows[s])
			tr.ReadEvent(first, counts, d.X(), d.Y(), d.Z(), d.TotalHits())
			if err := tr.Reconstruct(); err != nil {
				return &SliceError{Slice: s, Err: err}
			}
			out := tr.Output()
			annotate(out, d)
			g.outputs[s] = out
			times[s] = time.Since(t)
			return nil
		})
	}
	err := eg.Wait()

	for _, d := range times {
		g.sliceTime += d
		g.stats.SliceTime += d
	}
	return err
}

// annotate fills the external id and amplitude of every cluster reference
// from the slice's cluster data.
func annotate(out *slicetracker.Output, d *cluster.Data) {
	ids, amps := d.IDs(), d.Amp()
	for k := range out.Clusters {
		c := &out.Clusters[k]
		if c.Index < 0 || c.Index >= d.NumberOfClusters(c.Row) {
			continue
		}
		i := d.RowOffset(c.Row) + c.Index
		c.ExtID = ids[i]
		c.Amp = amps[i]
	}
}

// merge runs a fresh merger over all slice outputs. The merger is not
// interruptible; a budget overrun is reported once it returns.
func (g *GlobalTracker) merge(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.mismatch >= 0 {
		if g.cfg.GeometryCheck == GeometryCheckStrict {
			return &GeometryMismatchError{Slice: g.mismatch}
		}
		if g.logger != nil {
			g.logger.Warn("slice geometry differs from slice 0, merging anyway", "slice", g.mismatch)
		}
	}

	m := g.newMerger()
	m.Clear()
	m.SetSliceParam(g.params[0])
	for s, out := range g.outputs {
		m.SetSliceData(s, out)
	}
	if err := m.Reconstruct(); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	g.merged = m.Output()
	return ctx.Err()
}

// resolve maps every merged cluster back to its global hit index.
func (g *GlobalTracker) resolve() error {
	out := g.merged
	for i := 0; i < out.TrackCount(); i++ {
		mt := out.Track(i)
		first := len(g.trackHits)
		for j := mt.FirstHitRef; j < mt.FirstHitRef+mt.NHits; j++ {
			id := out.ClusterSourceID(j)
			idx, ok := g.part.Resolve(id.Slice(), id.Row(), id.Cluster())
			if !ok {
				return &ResolveError{Track: i, Cluster: j, SourceID: id}
			}
			g.trackHits = append(g.trackHits, idx)
		}
		g.tracks = append(g.tracks, model.Track{
			FirstHitRef: first,
			NHits:       mt.NHits,
			Param:       mt.Param,
			Alpha:       mt.Alpha,
			DEdx:        mt.DEdx,
		})
	}
	return nil
}

func (g *GlobalTracker) stage(s Stage, start time.Time) {
	d := time.Since(start)
	g.stats.StageTime[s] += d
	g.metrics.OnStage(s, d)
}

func (g *GlobalTracker) droppedHits() int {
	if g.part == nil {
		return 0
	}
	return g.part.Dropped
}

// budget maps a context deadline to ErrBudgetExceeded.
func budget(err error, s Stage) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w during %s stage", ErrBudgetExceeded, s)
	}
	return err
}
