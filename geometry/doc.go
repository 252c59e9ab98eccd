// Package geometry describes the per-slice detector layout consumed by the
// tracker: slice frame angle, row radii, drift length, magnetic field and
// the cluster error parametrisation used by the refit.
//
// Deriving these numbers from calibration is outside this module; Default
// provides a nominal layout for tests and replay.
package geometry
