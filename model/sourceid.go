package model

import (
	"errors"
	"fmt"
)

// Bit widths of the SourceID fields. Slice occupies the top byte, row the
// next byte and the cluster index within the row the low 16 bits.
const (
	SourceIDClusterBits = 16
	SourceIDRowBits     = 8
	SourceIDSliceBits   = 8

	sourceIDRowShift   = SourceIDClusterBits
	sourceIDSliceShift = SourceIDClusterBits + SourceIDRowBits

	// MaxSourceSlice is the largest slice index a SourceID can carry.
	MaxSourceSlice = 1<<SourceIDSliceBits - 1
	// MaxSourceRow is the largest row index a SourceID can carry.
	MaxSourceRow = 1<<SourceIDRowBits - 1
	// MaxSourceCluster is the largest in-row cluster index a SourceID can carry.
	MaxSourceCluster = 1<<SourceIDClusterBits - 1
)

// ErrSourceIDOverflow is returned when a field does not fit its bit width.
var ErrSourceIDOverflow = errors.New("source id field overflow")

// SourceID packs (slice, row, cluster index within row) into 32 bits.
type SourceID uint32

// NewSourceID packs the given fields, validating their widths.
func NewSourceID(slice, row, cluster int) (SourceID, error) {
	if slice < 0 || slice > MaxSourceSlice {
		return 0, fmt.Errorf("%w: slice %d", ErrSourceIDOverflow, slice)
	}
	if row < 0 || row > MaxSourceRow {
		return 0, fmt.Errorf("%w: row %d", ErrSourceIDOverflow, row)
	}
	if cluster < 0 || cluster > MaxSourceCluster {
		return 0, fmt.Errorf("%w: cluster %d", ErrSourceIDOverflow, cluster)
	}
	return SourceID(uint32(slice)<<sourceIDSliceShift | uint32(row)<<sourceIDRowShift | uint32(cluster)), nil
}

// MustSourceID is NewSourceID for callers that already validated the fields.
func MustSourceID(slice, row, cluster int) SourceID {
	id, err := NewSourceID(slice, row, cluster)
	if err != nil {
		panic(err)
	}
	return id
}

// Slice returns the slice index.
func (s SourceID) Slice() int { return int(uint32(s) >> sourceIDSliceShift) }

// Row returns the row index within the slice.
func (s SourceID) Row() int { return int(uint32(s)>>sourceIDRowShift) & MaxSourceRow }

// Cluster returns the cluster index within the row.
func (s SourceID) Cluster() int { return int(uint32(s)) & MaxSourceCluster }

// String returns a string representation of the SourceID.
func (s SourceID) String() string {
	return fmt.Sprintf("Src(%d:%d:%d)", s.Slice(), s.Row(), s.Cluster())
}
