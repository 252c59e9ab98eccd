package testutil

import (
	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/model"
)

// EventConfig describes a synthetic event.
type EventConfig struct {
	// Tracks is the number of generated tracks.
	Tracks int
	// Rows is the number of consecutive rows, from row 0, each track crosses.
	Rows int
	// Slices lists the slices tracks are distributed over, round robin.
	// Empty means slice 0 only.
	Slices []int
	// Noise adds uncorrelated hits per used slice.
	Noise int
	// Sigma smears y and z of track hits (cm).
	Sigma float32
	// Curvature adds c*x^2 to y, making tracks bend like low-momentum ones.
	Curvature float32
}

// Event is a generated event.
type Event struct {
	Hits []model.Hit
	// TrackIDs[k] lists the hit ids of track k in row order.
	TrackIDs [][]int32
}

// Event generates tracks as lines from the beam axis, fanned out in the
// pad direction so that tracks of one slice stay apart by several cm.
// Hit ids are unique and non-contiguous; hits are returned shuffled.
func (r *RNG) Event(params []geometry.Param, cfg EventConfig) Event {
	slices := cfg.Slices
	if len(slices) == 0 {
		slices = []int{0}
	}

	perSlice := make(map[int]int)
	for k := 0; k < cfg.Tracks; k++ {
		perSlice[slices[k%len(slices)]]++
	}

	var ev Event
	nextID := int32(1000)
	newID := func() int32 {
		id := nextID
		nextID += 3
		return id
	}

	seen := make(map[int]int)
	for k := 0; k < cfg.Tracks; k++ {
		s := slices[k%len(slices)]
		p := &params[s]
		j := seen[s]
		seen[s]++

		ty := -0.12 + 0.24*(float32(j)+0.5)/float32(perSlice[s])
		tz := r.Uniform(0.2, 0.9)
		if p.ZMax <= 0 {
			tz = -tz
		}

		ids := make([]int32, 0, cfg.Rows)
		for row := 0; row < cfg.Rows && row < p.NRows(); row++ {
			x := p.RowX[row]
			h := model.Hit{
				ID:    newID(),
				Slice: s,
				Row:   row,
				X:     x,
				Y:     ty*x + cfg.Curvature*x*x + r.Normal(cfg.Sigma),
				Z:     tz*x + r.Normal(cfg.Sigma),
				ErrY:  0.1,
				ErrZ:  0.1,
				Amp:   r.Uniform(20, 80),
			}
			ev.Hits = append(ev.Hits, h)
			ids = append(ids, h.ID)
		}
		ev.TrackIDs = append(ev.TrackIDs, ids)
	}

	for s := range perSlice {
		p := &params[s]
		for i := 0; i < cfg.Noise; i++ {
			row := r.Intn(p.NRows())
			x := p.RowX[row]
			ev.Hits = append(ev.Hits, model.Hit{
				ID:    newID(),
				Slice: s,
				Row:   row,
				X:     x,
				Y:     r.Uniform(-0.4, 0.4) * x,
				Z:     r.Uniform(p.ZMin, p.ZMax),
				ErrY:  0.1,
				ErrZ:  0.1,
				Amp:   r.Uniform(5, 30),
			})
		}
	}

	r.Shuffle(len(ev.Hits), func(i, j int) {
		ev.Hits[i], ev.Hits[j] = ev.Hits[j], ev.Hits[i]
	})
	return ev
}
