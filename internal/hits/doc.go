// Package hits implements the global hit table of an event.
//
// Hits are staged with Add, then Finalize sorts them by row (stable, not
// slice-aware) and builds the external id to table index map. The duplicate
// id policy is configurable; the reference behavior is last write wins.
package hits
