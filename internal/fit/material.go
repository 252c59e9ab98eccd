package fit

import "github.com/hupe1980/tpctrack/model"

// PionMass is the default mass hypothesis in GeV/c^2.
const PionMass = 0.13957

// Mean gas density (g/cm^3) and radiation length (g/cm^2) of the drift volume.
const (
	gasRho    = 1.025e-3
	gasRadLen = 29.532
)

// Param holds the material coefficients derived once per fit from the seed
// momentum and mass hypothesis.
type Param struct {
	Bethe    float32
	E        float32
	Theta2   float32
	EP2      float32
	SigmadE2 float32
	K22      float32
	K33      float32
	K43      float32
	K44      float32
}

// BetheBlochGeant returns the mean energy loss per unit of x*rho for a
// particle with (beta*gamma)^2 = bg2 in a medium of density rho, density
// effect parameters x0 and x1, mean excitation energy mI (GeV) and Z/A mZA.
func BetheBlochGeant(bg2, rho, x0, x1, mI, mZA float32) float32 {
	const (
		mK = 0.307075e-3 // GeV cm^2/g
		me = 0.511e-3    // GeV/c^2
	)
	x0 *= 2.303
	x1 *= 2.303
	maxT := 2 * me * bg2

	var d2 float32
	x := 0.5 * log32(bg2)
	lhwI := log32(28.816 * 1e-9 * sqrt32(rho*mZA) / mI)
	if x > x1 {
		d2 = lhwI + x - 0.5
	} else if x > x0 {
		r := (x1 - x) / (x1 - x0)
		d2 = lhwI + x - 0.5 + (0.5-lhwI-x0)*r*r*r
	}
	return mK * mZA * (1 + bg2) / bg2 * (0.5*log32(2*me*bg2*maxT/(mI*mI)) - bg2/(1+bg2) - d2)
}

// BetheBlochGas is BetheBlochGeant for the drift gas.
func BetheBlochGas(bg2 float32) float32 {
	return BetheBlochGeant(bg2, 0.9e-3, 2, 4, 140e-9, 0.49555)
}

// CalculateParam derives the material coefficients for t under the given
// mass hypothesis.
func CalculateParam(t *model.TrackParam, mass float32) Param {
	qpt := t.QPt()
	dzds := t.DzDs()
	p2 := 1 + dzds*dzds
	k2 := qpt * qpt
	mass2 := mass * mass
	beta2 := p2 / (p2 + mass2*k2)

	pp2 := float32(10000)
	if k2 > 1e-8 {
		pp2 = p2 / k2
	}

	var par Param
	par.Bethe = BetheBlochGas(pp2 / mass2)
	par.E = sqrt32(pp2 + mass2)
	par.Theta2 = 14.1 * 14.1 / (beta2 * pp2 * 1e6)
	par.EP2 = par.E / pp2

	// Energy loss fluctuation, approximate.
	const knst = 0.07
	s := knst * par.EP2 * qpt
	par.SigmadE2 = s * s

	par.K22 = 1 + dzds*dzds
	par.K33 = par.K22 * par.K22
	par.K43 = 0
	par.K44 = dzds * dzds * k2
	return par
}

// CorrectForMeanMaterial applies the energy loss of xTimesRho (g/cm^2) and
// the multiple scattering of xOverX0 radiation lengths to t. It reports
// false, leaving t unchanged, when the energy loss is unphysical.
func CorrectForMeanMaterial(t *model.TrackParam, xOverX0, xTimesRho float32, par *Param) bool {
	dE := par.Bethe * xTimesRho
	if abs32(dE) > 0.3*par.E {
		return false
	}
	corr := 1 - par.EP2*dE
	if corr < 0.3 || corr > 1.3 {
		return false
	}

	c := &t.C
	t.P[model.ParQPt] *= corr
	c[10] *= corr
	c[11] *= corr
	c[12] *= corr
	c[13] *= corr
	c[14] *= corr * corr
	c[14] += par.SigmadE2 * abs32(dE)

	theta2 := par.Theta2 * abs32(xOverX0)
	sinPhi := t.P[model.ParSinPhi]
	c[5] += theta2 * par.K22 * (1 - sinPhi) * (1 + sinPhi)
	c[9] += theta2 * par.K33
	c[13] += theta2 * par.K43
	c[14] += theta2 * par.K44
	return true
}
