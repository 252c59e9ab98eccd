// Package persistence reads and writes the text replay formats: detector
// settings, events and reconstructed tracks.
//
// All formats are line oriented with whitespace separated fields. Floats
// are written with the shortest representation that parses back to the
// same float32, so a write followed by a read is lossless. Readers only
// require whitespace between fields and ignore line structure.
//
// # Settings
//
//	nSlices
//	slice alpha dAlpha rMin rMax zMin zMax bz errY0 errZ0 errYDrift errZDrift errYAngle errZAngle nRows
//	rowX...
//
// The last two lines repeat per slice.
//
// # Event
//
//	nHits
//	x y z errY errZ amplitude id slice row
//
// # Tracks
//
//	sliceTimeNanos
//	nTrackHits
//	hitIndex...
//	nTracks
//	hitCount firstHitRef alpha dEdx
//	x signCosPhi chi2 ndf
//	p0 p1 p2 p3 p4
//	c0 ... c14
//
// Malformed input yields a *FormatError that matches ErrMalformed with
// errors.Is.
package persistence
