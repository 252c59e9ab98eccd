package engine

import (
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/tpctrack/merger"
	"github.com/hupe1980/tpctrack/model"
	"github.com/hupe1980/tpctrack/resultbuf"
	"github.com/hupe1980/tpctrack/slicetracker"
)

// Hits returns the sorted hit table of the current event.
func (g *GlobalTracker) Hits() []model.Hit { return g.table.Hits() }

// HitIndex returns the table position of the hit with external id.
func (g *GlobalTracker) HitIndex(id int32) (int, bool) { return g.table.Index(id) }

// MarkUsed flags hit i as claimed by a consumer.
func (g *GlobalTracker) MarkUsed(i int) { g.table.MarkUsed(i) }

// Tracks returns the resolved tracks. The slice is reused by the next event.
func (g *GlobalTracker) Tracks() []model.Track { return g.tracks }

// TrackHits returns the global hit indices referenced by Tracks.
func (g *GlobalTracker) TrackHits() []int { return g.trackHits }

// TrackHitsOf returns the hit indices of track i.
func (g *GlobalTracker) TrackHitsOf(i int) []int {
	t := &g.tracks[i]
	return g.trackHits[t.FirstHitRef : t.FirstHitRef+t.NHits]
}

// SliceTime returns the summed slice tracker time of the current event.
func (g *GlobalTracker) SliceTime() time.Duration { return g.sliceTime }

// SliceOutput returns the output of slice s after reconstruction, or nil.
func (g *GlobalTracker) SliceOutput(s int) *slicetracker.Output { return g.outputs[s] }

// Output returns the raw merger output, or nil before the merge.
func (g *GlobalTracker) Output() *merger.Output { return g.merged }

// UnassignedHits returns the table positions of hits that belong to no
// resolved track and are not claimed.
func (g *GlobalTracker) UnassignedHits() *roaring.Bitmap {
	assigned := roaring.New()
	for i := range g.tracks {
		for _, idx := range g.TrackHitsOf(i) {
			assigned.Add(uint32(idx))
		}
	}
	return g.table.Unused(assigned)
}

// Result returns the resolved tracks with their clusters in the result
// buffer form. Track FirstHitRef values index the returned clusters.
func (g *GlobalTracker) Result() ([]model.Track, []resultbuf.Cluster, error) {
	if g.state != StateResolved {
		return nil, nil, fmt.Errorf("%w: result in %s", ErrInvalidState, g.state)
	}
	hs := g.table.Hits()
	tracks := make([]model.Track, len(g.tracks))
	clusters := make([]resultbuf.Cluster, 0, len(g.trackHits))
	for i := range g.tracks {
		t := g.tracks[i]
		t.FirstHitRef = len(clusters)
		for _, idx := range g.TrackHitsOf(i) {
			h := &hs[idx]
			id := g.sources[idx]
			if id.Slice() != h.Slice || id.Row() != h.Row {
				return nil, nil, fmt.Errorf("track %d: hit %d has no packed source id", i, h.ID)
			}
			clusters = append(clusters, resultbuf.Cluster{
				SourceID: id,
				ExtID:    h.ID,
				Amp:      resultbuf.PackAmplitude(h.Amp),
			})
		}
		tracks[i] = t
	}
	return tracks, clusters, nil
}

// EstimateSize returns the encoded size of the current result.
func (g *GlobalTracker) EstimateSize() int {
	n := 0
	for i := range g.tracks {
		n += g.tracks[i].NHits
	}
	return resultbuf.EstimateSize(len(g.tracks), n)
}

// Encode writes the current result into dst. See resultbuf.Encode for the
// truncation contract.
func (g *GlobalTracker) Encode(dst []byte) (resultbuf.Result, error) {
	tracks, clusters, err := g.Result()
	if err != nil {
		return resultbuf.Result{}, err
	}
	return resultbuf.Encode(dst, tracks, clusters)
}
