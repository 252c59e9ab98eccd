package geometry

import (
	"errors"
	"fmt"
	"math"
)

// CLight converts a field in kG into the curvature factor used by the fit
// (GeV/c per kG per cm).
const CLight = 0.000299792458

// ErrInvalidParam is returned by Validate for an unusable slice layout.
var ErrInvalidParam = errors.New("invalid geometry param")

// Param is the geometry of one slice.
type Param struct {
	Slice  int
	Alpha  float32 // frame rotation angle of the slice (rad)
	DAlpha float32 // angular width of the slice (rad)

	RMin, RMax float32
	ZMin, ZMax float32

	// Bz is the solenoid field in kG.
	Bz float32

	// RowX holds the radial position of every pad row.
	RowX []float32

	// Cluster error model. Variances grow linearly with drift length and
	// quadratically with the crossing angle.
	ErrY0, ErrZ0         float32
	ErrYDrift, ErrZDrift float32
	ErrYAngle, ErrZAngle float32
}

// NRows returns the number of pad rows.
func (p *Param) NRows() int { return len(p.RowX) }

// CosAlpha returns cos(Alpha).
func (p *Param) CosAlpha() float32 { return float32(math.Cos(float64(p.Alpha))) }

// SinAlpha returns sin(Alpha).
func (p *Param) SinAlpha() float32 { return float32(math.Sin(float64(p.Alpha))) }

// RowXOf returns the radius of row, or 0 for rows outside the layout.
func (p *Param) RowXOf(row int) float32 {
	if row < 0 || row >= len(p.RowX) {
		return 0
	}
	return p.RowX[row]
}

// DriftLength returns the maximal drift distance of the slice.
func (p *Param) DriftLength() float32 {
	return float32(math.Max(math.Abs(float64(p.ZMin)), math.Abs(float64(p.ZMax))))
}

// ConstBz returns the field scaled for curvature computations.
func (p *Param) ConstBz() float32 { return p.Bz * CLight }

// ClusterErrors2 returns the squared Y and Z cluster errors for a hit at
// drift coordinate z crossed by a track with the given local angles.
func (p *Param) ClusterErrors2(z, sinPhi, cosPhi, dzds float32) (err2Y, err2Z float32) {
	drift := p.DriftLength() - float32(math.Abs(float64(z)))
	if drift < 0 {
		drift = 0
	}
	var tgY, tgZ float32
	if c := float32(math.Abs(float64(cosPhi))); c > 1e-4 {
		tgY = sinPhi / c
		tgZ = dzds / c
	}
	err2Y = p.ErrY0*p.ErrY0 + p.ErrYDrift*p.ErrYDrift*drift + p.ErrYAngle*p.ErrYAngle*tgY*tgY
	err2Z = p.ErrZ0*p.ErrZ0 + p.ErrZDrift*p.ErrZDrift*drift + p.ErrZAngle*p.ErrZAngle*tgZ*tgZ
	return err2Y, err2Z
}

// SameLayout reports whether o shares the radial/pad geometry of p: rows,
// field, drift length and error model. Frame angle and z side may differ.
func (p *Param) SameLayout(o *Param) bool {
	if len(p.RowX) != len(o.RowX) {
		return false
	}
	for i := range p.RowX {
		if p.RowX[i] != o.RowX[i] {
			return false
		}
	}
	return p.Bz == o.Bz &&
		p.DriftLength() == o.DriftLength() &&
		p.RMin == o.RMin && p.RMax == o.RMax &&
		p.ErrY0 == o.ErrY0 && p.ErrZ0 == o.ErrZ0 &&
		p.ErrYDrift == o.ErrYDrift && p.ErrZDrift == o.ErrZDrift &&
		p.ErrYAngle == o.ErrYAngle && p.ErrZAngle == o.ErrZAngle
}

// Validate checks the layout is usable by the tracker.
func (p *Param) Validate() error {
	if len(p.RowX) == 0 {
		return fmt.Errorf("%w: slice %d has no rows", ErrInvalidParam, p.Slice)
	}
	for i := 1; i < len(p.RowX); i++ {
		if p.RowX[i] <= p.RowX[i-1] {
			return fmt.Errorf("%w: slice %d row %d radius not increasing", ErrInvalidParam, p.Slice, i)
		}
	}
	if p.ZMax <= p.ZMin {
		return fmt.Errorf("%w: slice %d empty drift range", ErrInvalidParam, p.Slice)
	}
	return nil
}

// Clone returns a deep copy.
func (p Param) Clone() Param {
	p.RowX = append([]float32(nil), p.RowX...)
	return p
}
