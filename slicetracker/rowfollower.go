package slicetracker

import (
	"errors"
	"math"

	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/model"
)

// ErrNotInitialized is returned by Reconstruct before Initialize.
var ErrNotInitialized = errors.New("slice tracker not initialized")

// RowFollower links hits row by row into straight track segments.
//
// Starting from every unused hit, it extrapolates outwards and picks the
// nearest unused hit of each following row inside a fixed window, allowing
// a limited number of empty rows. Chains with at least MinHits hits become
// tracks seeded with a straight-line state.
type RowFollower struct {
	param       geometry.Param
	initialized bool

	windowY float32
	windowZ float32
	maxGap  int
	minHits int

	rowFirst []int
	rowCount []int
	x, y, z  []float32
	n        int

	used  []bool
	chain []int
	rows  []int
	out   Output
}

// Option configures a RowFollower.
type Option func(*RowFollower)

// WithWindow sets the search window half-widths in y and z (cm).
func WithWindow(y, z float32) Option {
	return func(f *RowFollower) {
		if y > 0 {
			f.windowY = y
		}
		if z > 0 {
			f.windowZ = z
		}
	}
}

// WithMaxGap sets the number of consecutive rows a chain may skip.
func WithMaxGap(rows int) Option {
	return func(f *RowFollower) {
		if rows >= 0 {
			f.maxGap = rows
		}
	}
}

// WithMinHits sets the minimal number of hits of a track.
func WithMinHits(n int) Option {
	return func(f *RowFollower) {
		if n >= 2 {
			f.minHits = n
		}
	}
}

// NewRowFollower creates a RowFollower.
func NewRowFollower(opts ...Option) *RowFollower {
	f := &RowFollower{
		windowY: 1.0,
		windowZ: 1.0,
		maxGap:  2,
		minHits: 5,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Initialize implements SliceTracker.
func (f *RowFollower) Initialize(param geometry.Param) error {
	if err := param.Validate(); err != nil {
		return err
	}
	f.param = param.Clone()
	f.initialized = true
	f.out.Reset(param.Slice)
	return nil
}

// StartEvent implements SliceTracker.
func (f *RowFollower) StartEvent() {
	f.rowFirst, f.rowCount = nil, nil
	f.x, f.y, f.z = nil, nil, nil
	f.n = 0
	f.out.Reset(f.param.Slice)
}

// ReadEvent implements SliceTracker.
func (f *RowFollower) ReadEvent(rowFirstHits, rowHitCounts []int, x, y, z []float32, n int) {
	f.rowFirst, f.rowCount = rowFirstHits, rowHitCounts
	f.x, f.y, f.z = x, y, z
	f.n = n
}

// OutputTrackCount implements SliceTracker.
func (f *RowFollower) OutputTrackCount() int { return len(f.out.Tracks) }

// Output implements SliceTracker.
func (f *RowFollower) Output() *Output { return &f.out }

// Reconstruct implements SliceTracker.
func (f *RowFollower) Reconstruct() error {
	if !f.initialized {
		return ErrNotInitialized
	}
	f.out.Reset(f.param.Slice)
	if f.n == 0 {
		return nil
	}

	if cap(f.used) < f.n {
		f.used = make([]bool, f.n)
	}
	f.used = f.used[:f.n]
	clear(f.used)

	nRows := len(f.rowCount)
	for r := 0; r < nRows; r++ {
		for k := 0; k < f.rowCount[r]; k++ {
			start := f.rowFirst[r] + k
			if f.used[start] {
				continue
			}
			f.follow(start, r, nRows)
			if len(f.chain) >= f.minHits {
				f.emit()
			}
		}
	}
	return nil
}

// follow builds the chain starting at hit start in row.
func (f *RowFollower) follow(start, row, nRows int) {
	f.chain = append(f.chain[:0], start)
	f.rows = append(f.rows[:0], row)

	last := row
	for r := row + 1; r < nRows && r-last <= f.maxGap+1; r++ {
		if f.rowCount[r] == 0 {
			continue
		}
		py, pz := f.predict(f.param.RowXOf(r))
		best, bestD := -1, float32(math.MaxFloat32)
		for k := 0; k < f.rowCount[r]; k++ {
			i := f.rowFirst[r] + k
			if f.used[i] {
				continue
			}
			dy := f.y[i] - py
			dz := f.z[i] - pz
			if abs32(dy) > f.windowY || abs32(dz) > f.windowZ {
				continue
			}
			if d := dy*dy + dz*dz; d < bestD {
				best, bestD = i, d
			}
		}
		if best >= 0 {
			f.chain = append(f.chain, best)
			f.rows = append(f.rows, r)
			last = r
		}
	}
}

// predict extrapolates the chain to radius x. A single hit is extrapolated
// along the ray from the beam axis.
func (f *RowFollower) predict(x float32) (float32, float32) {
	n := len(f.chain)
	b := f.chain[n-1]
	if n == 1 {
		if f.x[b] == 0 {
			return f.y[b], f.z[b]
		}
		s := x / f.x[b]
		return f.y[b] * s, f.z[b] * s
	}
	a := f.chain[n-2]
	dx := f.x[b] - f.x[a]
	if dx == 0 {
		return f.y[b], f.z[b]
	}
	t := (x - f.x[b]) / dx
	return f.y[b] + t*(f.y[b]-f.y[a]), f.z[b] + t*(f.z[b]-f.z[a])
}

func (f *RowFollower) emit() {
	first := len(f.out.Clusters)
	for k, i := range f.chain {
		f.used[i] = true
		r := f.rows[k]
		f.out.Clusters = append(f.out.Clusters, ClusterRef{Row: r, Index: i - f.rowFirst[r]})
	}
	f.out.Tracks = append(f.out.Tracks, Track{
		Param:        f.seed(),
		Alpha:        f.param.Alpha,
		FirstCluster: first,
		NClusters:    len(f.chain),
	})
}

// seed returns a straight-line state at the innermost hit of the chain.
func (f *RowFollower) seed() model.TrackParam {
	a := f.chain[0]
	b := f.chain[len(f.chain)-1]

	var ty, tz float32
	if dx := f.x[b] - f.x[a]; dx != 0 {
		ty = (f.y[b] - f.y[a]) / dx
		tz = (f.z[b] - f.z[a]) / dx
	}
	norm := float32(math.Sqrt(float64(1 + ty*ty)))

	var p model.TrackParam
	p.X = f.x[a]
	p.SignCosPhi = 1
	p.P[model.ParY] = f.y[a]
	p.P[model.ParZ] = f.z[a]
	p.P[model.ParSinPhi] = ty / norm
	p.P[model.ParDzDs] = tz / norm
	p.C[0], p.C[2], p.C[5], p.C[9], p.C[14] = 1, 1, 0.1, 0.1, 1
	p.NDF = int32(2*len(f.chain) - 5)
	return p
}

func abs32(v float32) float32 { return float32(math.Abs(float64(v))) }
