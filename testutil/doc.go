// Package testutil provides deterministic random numbers and synthetic TPC
// events for tests and benchmarks.
//
//	rng := testutil.NewRNG(4711)
//	ev := rng.Event(geometry.Default(36), testutil.EventConfig{Tracks: 20, Rows: 40})
//	// ev.Hits are shuffled; ev.TrackIDs[k] lists the hit ids of track k.
package testutil
