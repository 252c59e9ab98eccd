package tpctrack

import (
	"context"
	"io"
	"time"

	"github.com/hupe1980/tpctrack/engine"
	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/model"
	"github.com/hupe1980/tpctrack/resultbuf"
)

// EventResult summarizes one processed event.
type EventResult struct {
	Event       int
	Hits        int
	DroppedHits int
	Tracks      int
	Refitted    int
	Duration    time.Duration
	// Stats holds the statistics of this event alone.
	Stats engine.Statistics
}

// Tracker runs events through the global tracking pipeline.
//
// A Tracker processes one event at a time and is not safe for concurrent
// use. Run several trackers sharing a resource.Controller to process
// events in parallel.
type Tracker struct {
	g      *engine.GlobalTracker
	opts   options
	event  int
	logger *Logger
}

// New creates a Tracker for the slice layout params.
func New(params []geometry.Param, optFns ...Option) (*Tracker, error) {
	o := applyOptions(optFns)

	engOpts := []engine.Option{
		engine.WithConfig(o.engine),
		engine.WithLogger(o.logger.Logger),
		engine.WithMetricsObserver(observer{mc: o.metricsCollector}),
		engine.WithResourceController(o.rc),
	}
	if o.merger != nil {
		engOpts = append(engOpts, engine.WithMergerFactory(o.merger))
	}
	g, err := engine.New(params, o.sliceTracker, engOpts...)
	if err != nil {
		return nil, translateError(err)
	}
	return &Tracker{g: g, opts: o, logger: o.logger}, nil
}

// Event discards the previous event, loads hs as event id and
// reconstructs it. With refit enabled every track is refitted afterwards.
func (t *Tracker) Event(ctx context.Context, id int, hs []model.Hit) (EventResult, error) {
	t.event = id
	t.logger = t.opts.logger.WithEvent(id)
	res := EventResult{Event: id}

	before := t.g.Statistics()
	start := time.Now()

	t.g.StartEvent()
	if err := t.g.ReadEvent(hs); err != nil {
		t.logger.LogFindTracks(ctx, len(hs), 0, time.Since(start), err)
		return res, translateError(err)
	}
	res.Hits = len(t.g.Hits())

	n, err := t.g.FindTracks(ctx)
	t.logger.LogFindTracks(ctx, res.Hits, n, time.Since(start), err)
	if err != nil {
		return res, translateError(err)
	}
	res.Tracks = n

	if t.opts.refit && n > 0 {
		accepted, err := t.g.RefitAll(ctx)
		t.logger.LogRefit(ctx, n, accepted, err)
		if err != nil {
			return res, translateError(err)
		}
		res.Refitted = accepted
	}

	res.Duration = time.Since(start)
	res.Stats = t.g.Statistics().Sub(before)
	res.DroppedHits = int(res.Stats.DroppedHits)
	return res, nil
}

// Refit refits every track of the current event and returns the number
// of accepted fits.
func (t *Tracker) Refit(ctx context.Context) (int, error) {
	n := len(t.g.Tracks())
	accepted, err := t.g.RefitAll(ctx)
	t.logger.LogRefit(ctx, n, accepted, err)
	return accepted, translateError(err)
}

// EstimateSize returns the encoded size of the current result.
func (t *Tracker) EstimateSize() int { return t.g.EstimateSize() }

// Encode writes the current result into dst. If dst is too small the
// longest prefix of complete tracks is written and ErrInsufficientSpace
// is returned together with the counts.
func (t *Tracker) Encode(ctx context.Context, dst []byte) (resultbuf.Result, error) {
	res, err := t.g.Encode(dst)
	t.opts.metricsCollector.RecordEncode(res, err)
	t.logger.LogEncode(ctx, res, err)
	return res, translateError(err)
}

// Result returns the current result as a freshly allocated buffer.
func (t *Tracker) Result(ctx context.Context) ([]byte, error) {
	buf := make([]byte, t.EstimateSize())
	if _, err := t.Encode(ctx, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Tracks returns the tracks of the current event. The slice is reused by
// the next event.
func (t *Tracker) Tracks() []model.Track { return t.g.Tracks() }

// TrackHits returns the hits of track i.
func (t *Tracker) TrackHits(i int) []model.Hit {
	hs := t.g.Hits()
	idx := t.g.TrackHitsOf(i)
	out := make([]model.Hit, len(idx))
	for k, j := range idx {
		out[k] = hs[j]
	}
	return out
}

// UnassignedHits returns the hits of the current event that belong to no
// track.
func (t *Tracker) UnassignedHits() []model.Hit {
	hs := t.g.Hits()
	bm := t.g.UnassignedHits()
	out := make([]model.Hit, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, hs[it.Next()])
	}
	return out
}

// WriteTracks writes the tracks of the current event in the tracks text
// format.
func (t *Tracker) WriteTracks(w io.Writer) error {
	return translateError(t.g.WriteTracks(w))
}

// ReadTracks replaces the tracks of the loaded event with a tracks file,
// e.g. to re-encode or refit archived tracks. Load the hits with
// Engine().ReadEvent first.
func (t *Tracker) ReadTracks(r io.Reader) error {
	return translateError(t.g.ReadTracks(r))
}

// CurrentEvent returns the id of the last event passed to Event.
func (t *Tracker) CurrentEvent() int { return t.event }

// Statistics returns the statistics accumulated over all events.
func (t *Tracker) Statistics() engine.Statistics { return t.g.Statistics() }

// Engine exposes the underlying pipeline for step-by-step control.
func (t *Tracker) Engine() *engine.GlobalTracker { return t.g }
