package geometry

import "math"

// Nominal layout constants.
const (
	DefaultSlices      = 36
	DefaultSectorsSide = 18
	DefaultBz          = 5.0
)

// rowSection is a group of equally spaced pad rows.
type rowSection struct {
	n     int
	x0    float32
	pitch float32
}

var defaultRowSections = []rowSection{
	{n: 63, x0: 85.225, pitch: 0.75},
	{n: 64, x0: 135.1, pitch: 1.0},
	{n: 32, x0: 199.35, pitch: 1.5},
}

// DefaultRowX returns the nominal 159 pad-row radii.
func DefaultRowX() []float32 {
	var xs []float32
	for _, s := range defaultRowSections {
		for i := 0; i < s.n; i++ {
			xs = append(xs, s.x0+float32(i)*s.pitch)
		}
	}
	return xs
}

// Default returns a nominal layout of n slices. Slices [0, n/2) cover
// positive z, the rest negative z; each half is split into equal sectors.
func Default(n int) []Param {
	if n <= 0 {
		n = DefaultSlices
	}
	perSide := n
	if n > 1 {
		perSide = (n + 1) / 2
	}
	dAlpha := float32(2 * math.Pi / float64(perSide))
	rows := DefaultRowX()

	params := make([]Param, n)
	for i := range params {
		sector := i % perSide
		p := Param{
			Slice:     i,
			Alpha:     (float32(sector) + 0.5) * dAlpha,
			DAlpha:    dAlpha,
			RMin:      83.65,
			RMax:      247.7,
			ZMin:      0,
			ZMax:      250,
			Bz:        DefaultBz,
			RowX:      append([]float32(nil), rows...),
			ErrY0:     0.06,
			ErrZ0:     0.07,
			ErrYDrift: 0.004,
			ErrZDrift: 0.004,
			ErrYAngle: 0.12,
			ErrZAngle: 0.12,
		}
		if n > 1 && i >= perSide {
			p.ZMin, p.ZMax = -250, 0
		}
		params[i] = p
	}
	return params
}
