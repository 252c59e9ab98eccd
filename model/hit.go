package model

import "fmt"

// Hit is a single TPC cluster as seen by the global tracker.
//
// Coordinates are slice-local: X is the radial row position, Y the pad
// direction, Z the drift direction. Used is the only mutable field; it is
// owned by consumers that claim clusters and is never touched by the tracker.
type Hit struct {
	ID    int32
	Slice int
	Row   int

	X, Y, Z          float32
	ErrX, ErrY, ErrZ float32
	Amp              float32

	Used bool
}

// String returns a compact representation of the hit.
func (h Hit) String() string {
	return fmt.Sprintf("Hit(id=%d s=%d r=%d x=%.3f y=%.3f z=%.3f)", h.ID, h.Slice, h.Row, h.X, h.Y, h.Z)
}
