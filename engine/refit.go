package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hupe1980/tpctrack/internal/fit"
	"github.com/hupe1980/tpctrack/model"
	"golang.org/x/sync/errgroup"
)

// RefitTrack fits seed against the global hits hitIndices in direction dir.
// On success it overwrites out, alpha and the first n entries of hitIndices
// with the fitted state, its frame angle and the accepted hits, and returns
// n. On failure the caller's values are left untouched.
//
// RefitTrack only reads the hit table and is safe to call concurrently for
// distinct tracks.
func (g *GlobalTracker) RefitTrack(out *model.TrackParam, seed model.TrackParam, alpha *float32, hitIndices []int, dir fit.Direction) (int, bool) {
	return g.fitter.Refit(out, seed, alpha, g.table.Hits(), hitIndices, dir)
}

// RefitAll refits every resolved track inside-out from its merged state,
// in parallel. Rejected fits keep their merged state. It returns the
// number of accepted fits.
func (g *GlobalTracker) RefitAll(ctx context.Context) (int, error) {
	if g.state != StateResolved {
		return 0, fmt.Errorf("%w: refit in %s", ErrInvalidState, g.state)
	}
	start := time.Now()

	var accepted atomic.Int64
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Workers)
	for i := range g.tracks {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := &g.tracks[i]
			p := t.Param
			alpha := t.Alpha
			idx := g.trackHits[t.FirstHitRef : t.FirstHitRef+t.NHits]
			n, ok := g.RefitTrack(&p, t.Param, &alpha, idx, fit.InsideOut)
			if !ok {
				return nil
			}
			t.Param = p
			t.Alpha = alpha
			t.NHits = n
			accepted.Add(1)
			return nil
		})
	}
	err := eg.Wait()

	n := int(accepted.Load())
	g.stats.Refits += int64(len(g.tracks))
	g.stats.RefitsAccepted += int64(n)
	g.metrics.OnRefit(time.Since(start), len(g.tracks), n)
	if g.logger != nil {
		g.logger.Debug("refit completed", "tracks", len(g.tracks), "accepted", n)
	}
	return n, err
}
