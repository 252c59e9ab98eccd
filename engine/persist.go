package engine

import (
	"fmt"
	"io"
	"slices"

	"github.com/hupe1980/tpctrack/persistence"
)

// SavedTracks returns the resolved tracks of the current event in the
// tracks file form. SliceTime is the cumulative slice tracking time.
func (g *GlobalTracker) SavedTracks() (*persistence.Tracks, error) {
	if g.state != StateResolved {
		return nil, fmt.Errorf("%w: save tracks in %s", ErrInvalidState, g.state)
	}
	return &persistence.Tracks{
		SliceTime: g.stats.SliceTime,
		TrackHits: slices.Clone(g.trackHits),
		Tracks:    slices.Clone(g.tracks),
	}, nil
}

// WriteTracks writes the resolved tracks of the current event as a tracks
// file.
func (g *GlobalTracker) WriteTracks(w io.Writer) error {
	t, err := g.SavedTracks()
	if err != nil {
		return err
	}
	return persistence.WriteTracks(w, t)
}

// ReadTracks replaces the tracks of the loaded event with a tracks file
// and moves to Resolved, so that Result, Encode and RefitAll work on the
// stored tracks. The cumulative slice tracking time is restored from the
// file. Every hit index must address a hit the partition kept.
func (g *GlobalTracker) ReadTracks(r io.Reader) error {
	if g.state == StateIdle {
		return fmt.Errorf("%w: read tracks in %s", ErrInvalidState, g.state)
	}
	t, err := persistence.ReadTracks(r)
	if err != nil {
		return err
	}

	if g.part == nil {
		g.partition()
	}
	placed := make([]bool, g.table.Len())
	for _, idx := range g.part.Order {
		placed[idx] = true
	}
	for i, idx := range t.TrackHits {
		if idx < 0 || idx >= len(placed) || !placed[idx] {
			return fmt.Errorf("%w: track hit %d refers to hit %d of %d", persistence.ErrMalformed, i, idx, len(placed))
		}
	}

	g.trackHits = append(g.trackHits[:0], t.TrackHits...)
	g.tracks = append(g.tracks[:0], t.Tracks...)
	g.stats.SliceTime = t.SliceTime
	g.merged = nil
	g.state = StateResolved
	return nil
}
