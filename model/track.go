package model

import "math"

// Parameter indices of TrackParam.P.
const (
	ParY = iota
	ParZ
	ParSinPhi
	ParDzDs
	ParQPt
)

// NumParams is the size of the parameter vector.
const NumParams = 5

// NumCov is the size of the packed lower-triangular covariance.
const NumCov = 15

// TrackParam is the fitted state of a track in a slice frame.
//
// P holds (Y, Z, SinPhi, DzDs, QPt) at radius X. C is the lower triangle of
// the symmetric 5x5 covariance stored row by row:
//
//	C[0]                     yy
//	C[1]  C[2]               zy zz
//	C[3]  C[4]  C[5]         sy sz ss
//	C[6]  C[7]  C[8]  C[9]   ty tz ts tt
//	C[10] C[11] C[12] C[13] C[14]
type TrackParam struct {
	X          float32
	SignCosPhi float32
	P          [NumParams]float32
	C          [NumCov]float32
	Chi2       float32
	NDF        int32
}

// Y returns the pad-direction coordinate.
func (t *TrackParam) Y() float32 { return t.P[ParY] }

// Z returns the drift-direction coordinate.
func (t *TrackParam) Z() float32 { return t.P[ParZ] }

// SinPhi returns the sine of the local track angle.
func (t *TrackParam) SinPhi() float32 { return t.P[ParSinPhi] }

// DzDs returns the dip slope.
func (t *TrackParam) DzDs() float32 { return t.P[ParDzDs] }

// QPt returns charge over transverse momentum.
func (t *TrackParam) QPt() float32 { return t.P[ParQPt] }

// CosPhi returns the cosine of the local track angle, signed by SignCosPhi.
func (t *TrackParam) CosPhi() float32 {
	s := t.P[ParSinPhi]
	c := float32(math.Sqrt(math.Max(0, float64(1-s*s))))
	if t.SignCosPhi < 0 {
		return -c
	}
	return c
}

// IsFinite reports whether every parameter and covariance entry is finite.
func (t *TrackParam) IsFinite() bool {
	for _, v := range t.P {
		if !finite(v) {
			return false
		}
	}
	for _, v := range t.C {
		if !finite(v) {
			return false
		}
	}
	return finite(t.X)
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Track is a merged global track after hit-index resolution.
//
// Its hits are TrackHits[FirstHitRef : FirstHitRef+NHits] of the owning
// tracker, each an index into the global hit table.
type Track struct {
	FirstHitRef int
	NHits       int
	Param       TrackParam
	Alpha       float32
	DEdx        float32
}
