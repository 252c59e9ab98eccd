package tpctrack

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tpctrack/engine"
	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/internal/hits"
	"github.com/hupe1980/tpctrack/persistence"
	"github.com/hupe1980/tpctrack/resource"
	"github.com/hupe1980/tpctrack/resultbuf"
)

var (
	// ErrInvalidState is returned when pipeline operations are called out
	// of order.
	ErrInvalidState = errors.New("invalid tracker state")

	// ErrBudgetExceeded is returned when an event overruns its time budget.
	ErrBudgetExceeded = errors.New("event budget exceeded")

	// ErrInsufficientSpace is returned when a result does not fit the
	// destination. Complete tracks that fit are still written.
	ErrInsufficientSpace = errors.New("insufficient space for result")

	// ErrMalformed is returned for unreadable settings, event or track
	// files.
	ErrMalformed = errors.New("malformed input")

	// ErrInvalidGeometry is returned for unusable slice layouts.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrMemoryLimit is returned for an event too large for the memory
	// limit of the resource controller.
	ErrMemoryLimit = errors.New("event exceeds memory limit")
)

// ErrDuplicateHit indicates two hits with the same external id under the
// reject policy.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrDuplicateHit struct {
	ID    int32
	cause error
}

func (e *ErrDuplicateHit) Error() string {
	return fmt.Sprintf("duplicate hit id %d", e.ID)
}

func (e *ErrDuplicateHit) Unwrap() error { return e.cause }

// ErrGeometryMismatch indicates a slice whose layout differs from slice 0.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrGeometryMismatch struct {
	Slice int
	cause error
}

func (e *ErrGeometryMismatch) Error() string {
	return fmt.Sprintf("slice %d geometry differs from slice 0", e.Slice)
}

func (e *ErrGeometryMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dup *hits.DuplicateIDError
	if errors.As(err, &dup) {
		return &ErrDuplicateHit{ID: dup.ID, cause: err}
	}
	var gm *engine.GeometryMismatchError
	if errors.As(err, &gm) {
		return &ErrGeometryMismatch{Slice: gm.Slice, cause: err}
	}
	var ml *resource.MemoryLimitError
	if errors.As(err, &ml) {
		return fmt.Errorf("%w: %w", ErrMemoryLimit, err)
	}

	switch {
	case errors.Is(err, engine.ErrInvalidState):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	case errors.Is(err, engine.ErrBudgetExceeded):
		return fmt.Errorf("%w: %w", ErrBudgetExceeded, err)
	case errors.Is(err, resultbuf.ErrInsufficientSpace):
		return fmt.Errorf("%w: %w", ErrInsufficientSpace, err)
	case errors.Is(err, persistence.ErrMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, geometry.ErrInvalidParam):
		return fmt.Errorf("%w: %w", ErrInvalidGeometry, err)
	}
	return err
}
