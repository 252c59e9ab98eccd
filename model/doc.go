// Package model defines core types used throughout tpctrack.
//
// # Hits
//
//   - Hit: a reconstructed 3-D space point with errors, amplitude and the
//     (slice, row) it was read out on. ID is externally assigned and may be
//     sparse.
//   - SourceID: packed (slice, row, cluster-within-row) reference used in the
//     merger output and the result buffer.
//
// # Tracks
//
//   - TrackParam: fitted state (X, Y, Z, SinPhi, DzDs, QPt) with its packed
//     lower-triangular covariance, chi2 and NDF.
//   - Track: a resolved global track pointing into a flat TrackHits list.
package model
