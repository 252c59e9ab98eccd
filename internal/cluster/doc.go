// Package cluster holds the per-slice, row-sorted view of an event's hits.
//
// Data stores hits as parallel arrays ordered by row with a prefix-sum row
// table, so that the hits of row r are [RowOffset(r), RowOffset(r+1)).
// RowOffset past the last populated row returns TotalHits, which makes such
// ranges empty without special cases.
//
// Partition builds one Data per slice from the globally row-sorted hit table
// with a two-pass counting sort and records where every slice starts in the
// concatenated slice-major order.
package cluster
