package fit

import (
	"math"

	"github.com/hupe1980/tpctrack/model"
)

// DefaultMaxSinPhi bounds |sin(phi)| during transport and filtering.
const DefaultMaxSinPhi = 0.999

// Rotate expresses t in a frame rotated by alpha around the beam axis. It
// reports false, leaving t unchanged, when the track would cross the frame
// at a grazing angle.
func Rotate(t *model.TrackParam, alpha, maxSinPhi float32) bool {
	cA := float32(math.Cos(float64(alpha)))
	sA := float32(math.Sin(float64(alpha)))
	x, y := t.X, t.Y()
	cP := t.CosPhi()
	sP := t.SinPhi()

	cosPhi := cP*cA + sP*sA
	sinPhi := -cP*sA + sP*cA
	if abs32(sinPhi) > maxSinPhi || abs32(cosPhi) < 1e-2 || abs32(cP) < 1e-2 {
		return false
	}

	j0 := cP / cosPhi
	j2 := cosPhi / cP

	t.X = x*cA + y*sA
	t.P[model.ParY] = -x*sA + y*cA
	t.SignCosPhi = sign(cosPhi)
	t.P[model.ParSinPhi] = sinPhi

	c := &t.C
	c[0] *= j0 * j0
	c[1] *= j0
	c[3] *= j0
	c[6] *= j0
	c[10] *= j0

	c[3] *= j2
	c[4] *= j2
	c[5] *= j2 * j2
	c[8] *= j2
	c[12] *= j2
	return true
}

// TransportToX propagates t to radius x in a field bz (already scaled by
// geometry.CLight). It returns the signed path length in 3D and false,
// leaving t unchanged, if the helix does not reach x.
func TransportToX(t *model.TrackParam, x, bz, maxSinPhi float32) (float32, bool) {
	ex := t.CosPhi()
	ey := t.SinPhi()
	k := t.QPt() * bz
	dx := x - t.X

	ey1 := k*dx + ey
	if abs32(ey1) > maxSinPhi {
		return 0, false
	}
	ex1 := sqrt32(1 - ey1*ey1)
	if ex < 0 {
		ex1 = -ex1
	}

	ss := ey + ey1
	cc := ex + ex1
	if abs32(cc) < 1e-4 || abs32(ex) < 1e-4 || abs32(ex1) < 1e-4 {
		return 0, false
	}

	tg := ss / cc
	dy := dx * tg
	dl := dx * sqrt32(1+tg*tg)
	if cc < 0 {
		dl = -dl
	}
	dSin := dl * k / 2
	if dSin > 1 {
		dSin = 1
	}
	if dSin < -1 {
		dSin = -1
	}
	dS := dl
	if abs32(k) > 1e-4 {
		dS = 2 * asin32(dSin) / k
	}
	dzds := t.DzDs()
	dz := dS * dzds
	path := -dS * sqrt32(1+dzds*dzds)

	cci := 1 / cc
	exi := 1 / ex
	ex1i := 1 / ex1

	h2 := dx * (1 + ey*ey1 + ex*ex1) * exi * ex1i * cci
	h4 := dx * dx * (cc + ss*ey1*ex1i) * cci * cci * bz
	dxBz := dx * bz

	c := t.C
	c00, c10, c11 := c[0], c[1], c[2]
	c20, c21, c22 := c[3], c[4], c[5]
	c30, c31, c32, c33 := c[6], c[7], c[8], c[9]
	c40, c41, c42, c43, c44 := c[10], c[11], c[12], c[13], c[14]

	var n [model.NumCov]float32
	n[0] = c00 + h2*h2*c22 + h4*h4*c44 + 2*(h2*c20+h4*c40+h2*h4*c42)
	n[1] = c10 + h2*c21 + h4*c41 + dS*(c30+h2*c32+h4*c43)
	n[2] = c11 + 2*dS*c31 + dS*dS*c33
	n[3] = c20 + h2*c22 + h4*c42 + dxBz*(c40+h2*c42+h4*c44)
	n[4] = c21 + dS*c32 + dxBz*(c41+dS*c43)
	n[5] = c22 + 2*dxBz*c42 + dxBz*dxBz*c44
	n[6] = c30 + h2*c32 + h4*c43
	n[7] = c31 + dS*c33
	n[8] = c32 + dxBz*c43
	n[9] = c33
	n[10] = c40 + h2*c42 + h4*c44
	n[11] = c41 + dS*c43
	n[12] = c42 + dxBz*c44
	n[13] = c43
	n[14] = c44

	t.X = x
	t.P[model.ParY] += dy
	t.P[model.ParZ] += dz
	t.P[model.ParSinPhi] = ey1
	t.C = n
	return path, true
}

// TransportToXWithMaterial is TransportToX followed by the mean material
// correction of the traversed gas. A rejected material correction does not
// fail the transport.
func TransportToXWithMaterial(t *model.TrackParam, x, bz, maxSinPhi float32, par *Param) bool {
	dl, ok := TransportToX(t, x, bz, maxSinPhi)
	if !ok {
		return false
	}
	CorrectForMeanMaterial(t, dl*gasRho/gasRadLen, dl*gasRho, par)
	return true
}

// Filter updates t with a measurement (y, z) of variances err2Y, err2Z at
// the current radius. It reports false, leaving t unchanged, when the update
// is degenerate or would push |sin(phi)| to maxSinPhi.
func Filter(t *model.TrackParam, y, z, err2Y, err2Z, maxSinPhi float32) bool {
	c := &t.C
	c00, c11, c20, c31, c40 := c[0], c[2], c[3], c[7], c[10]

	err2Y += c00
	err2Z += c11
	if err2Y < 1e-8 || err2Z < 1e-8 {
		return false
	}
	z0 := y - t.P[model.ParY]
	z1 := z - t.P[model.ParZ]

	mS0 := 1 / err2Y
	mS2 := 1 / err2Z

	k00 := c00 * mS0
	k20 := c20 * mS0
	k40 := c40 * mS0
	k11 := c11 * mS2
	k31 := c31 * mS2

	sinPhi := t.P[model.ParSinPhi] + k20*z0
	if abs32(sinPhi) >= maxSinPhi {
		return false
	}

	t.NDF += 2
	t.Chi2 += mS0*z0*z0 + mS2*z1*z1

	t.P[model.ParY] += k00 * z0
	t.P[model.ParZ] += k11 * z1
	t.P[model.ParSinPhi] = sinPhi
	t.P[model.ParDzDs] += k31 * z1
	t.P[model.ParQPt] += k40 * z0

	c[0] -= k00 * c00
	c[3] -= k20 * c00
	c[5] -= k20 * c20
	c[10] -= k40 * c00
	c[12] -= k40 * c20
	c[14] -= k40 * c40

	c[2] -= k11 * c11
	c[7] -= k31 * c11
	c[9] -= k31 * c31
	return true
}

func sign(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}
