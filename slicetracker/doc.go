// Package slicetracker defines the per-slice track finder boundary consumed
// by the global tracker, and ships RowFollower, a simple reference finder.
//
// A SliceTracker sees the hits of one slice as row-sorted coordinate arrays
// with per-row offsets and counts. It reports tracks as runs of cluster
// references (row, index within row) into those arrays.
package slicetracker
