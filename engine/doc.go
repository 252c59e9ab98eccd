// Package engine provides the global tracker that drives one event through
// track reconstruction.
//
// # Pipeline
//
// FindTracks runs four stages:
//
//   - Partition: a two-pass counting sort of the global hit table into
//     per-slice row-indexed cluster data
//   - Slices: every slice tracker reads its slice and reconstructs, on an
//     errgroup limited to the configured worker count
//   - Merge: a fresh merger receives all slice outputs (barrier)
//   - Resolve: every merged cluster's packed source id is mapped back to a
//     global hit index
//
// Slices share no data until the merge, so the result does not depend on
// the number of workers.
//
// # State
//
// A GlobalTracker moves through Idle, EventLoaded, SlicesReconstructed,
// Merged and Resolved. StartEvent returns to Idle from any state and resets
// every slice tracker, so an aborted event never leaks into the next one.
// Operations called in the wrong state fail with ErrInvalidState.
//
// A GlobalTracker is not safe for concurrent use. Independent trackers share
// nothing except an optional resource.Controller.
package engine
