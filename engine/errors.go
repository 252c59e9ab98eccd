package engine

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tpctrack/model"
)

var (
	// ErrInvalidState is returned when an operation is called out of order.
	ErrInvalidState = errors.New("invalid tracker state")

	// ErrBudgetExceeded is returned when an event overruns its time budget.
	ErrBudgetExceeded = errors.New("event budget exceeded")

	// ErrNoSliceTracker is returned by New when the tracker factory is nil.
	ErrNoSliceTracker = errors.New("no slice tracker factory")
)

// GeometryMismatchError reports a slice whose radial/pad layout differs from
// slice 0, which the merger assumes for all slices.
type GeometryMismatchError struct {
	Slice int
}

func (e *GeometryMismatchError) Error() string {
	return fmt.Sprintf("slice %d geometry differs from slice 0", e.Slice)
}

// ResolveError reports a merged cluster whose source id does not address a
// partitioned hit.
type ResolveError struct {
	Track    int
	Cluster  int
	SourceID model.SourceID
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("track %d cluster %d: unresolvable source id %s", e.Track, e.Cluster, e.SourceID)
}

// SliceError wraps a slice tracker failure.
type SliceError struct {
	Slice int
	Err   error
}

func (e *SliceError) Error() string {
	return fmt.Sprintf("slice %d: %v", e.Slice, e.Err)
}

func (e *SliceError) Unwrap() error { return e.Err }
