package fit

import (
	"slices"

	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/model"
)

// Direction selects the order in which a hit list is fitted.
type Direction int

const (
	// InsideOut fits the hit list front to back.
	InsideOut Direction = iota
	// OutsideIn fits the hit list back to front.
	OutsideIn
)

// Acceptance bounds of a refitted track.
const (
	MinRadius    = 50
	MaxSinPhiFit = 0.99
	MinQPt       = 1e-8
)

// seedCov is the covariance the fit restarts from on its first accepted hit.
var seedCov = [model.NumCov]float32{
	10,
	0, 10,
	0, 0, 1,
	0, 0, 0, 1,
	0, 0, 0, 0, 10,
}

// maxDiag bounds the fitted covariance diagonal (yy, zz, ss, tt, qq).
var maxDiag = [5]float32{5, 5, 2, 2, 2}

var diagIndex = [5]int{0, 2, 5, 9, 14}

// Fitter refits tracks against hits of a fixed detector layout. It has no
// mutable state and is safe for concurrent use.
type Fitter struct {
	params    []geometry.Param
	maxSinPhi float32
	mass      float32
}

// NewFitter creates a Fitter for the slice layout params, indexed by slice.
func NewFitter(params []geometry.Param) *Fitter {
	return &Fitter{params: params, maxSinPhi: DefaultMaxSinPhi, mass: PionMass}
}

// WithMass returns a copy of f using another mass hypothesis.
func (f *Fitter) WithMass(mass float32) *Fitter {
	g := *f
	g.mass = mass
	return &g
}

// Refit fits seed against hits[indices[i]] in the given direction.
//
// A hit is skipped when the state cannot be rotated into its slice frame,
// cannot be transported to its radius or the measurement update is rejected.
// On success out, alpha and the leading n entries of indices are replaced by
// the fitted state, its frame angle and the accepted hits in their original
// order. On failure nothing the caller passed is modified.
func (f *Fitter) Refit(out *model.TrackParam, seed model.TrackParam, alpha *float32, hits []model.Hit, indices []int, dir Direction) (int, bool) {
	t := seed
	a := *alpha
	kept := make([]int, 0, len(indices))

	var par Param
	first := true

	for k := range indices {
		pos := k
		if dir == OutsideIn {
			pos = len(indices) - 1 - k
		}
		idx := indices[pos]
		if idx < 0 || idx >= len(hits) {
			continue
		}
		h := &hits[idx]
		if h.Slice < 0 || h.Slice >= len(f.params) {
			continue
		}
		geo := &f.params[h.Slice]

		if abs32(geo.Alpha-a) > 1e-4 {
			if !Rotate(&t, geo.Alpha-a, f.maxSinPhi) {
				continue
			}
			a = geo.Alpha
		}

		if first {
			// Material coefficients are needed by the first transport.
			par = CalculateParam(&t, f.mass)
		}
		if !TransportToXWithMaterial(&t, h.X, geo.ConstBz(), f.maxSinPhi, &par) {
			continue
		}

		if first {
			t.C = seedCov
			t.Chi2 = 0
			t.NDF = -5
			par = CalculateParam(&t, f.mass)
			first = false
		}

		err2Y, err2Z := geo.ClusterErrors2(h.Z, t.SinPhi(), t.CosPhi(), t.DzDs())
		if !Filter(&t, h.Y, h.Z, err2Y, err2Z, f.maxSinPhi) {
			continue
		}
		kept = append(kept, idx)
	}

	if abs32(t.P[model.ParQPt]) < MinQPt {
		t.P[model.ParQPt] = MinQPt
	}
	if len(kept) == 0 || !accept(&t) {
		return 0, false
	}
	t.SignCosPhi = sign(t.CosPhi())

	if dir == OutsideIn {
		slices.Reverse(kept)
	}
	*out = t
	*alpha = a
	n := copy(indices, kept)
	return n, true
}

func accept(t *model.TrackParam) bool {
	if !t.IsFinite() || !finite(t.Chi2) || t.X <= MinRadius {
		return false
	}
	for i, j := range diagIndex {
		if t.C[j] <= 0 || t.C[j] > maxDiag[i] {
			return false
		}
	}
	return abs32(t.SinPhi()) <= MaxSinPhiFit
}
