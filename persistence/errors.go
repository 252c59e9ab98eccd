package persistence

import (
	"errors"
	"fmt"
)

// ErrMalformed matches every *FormatError.
var ErrMalformed = errors.New("malformed replay file")

// FormatError reports an unreadable item of a replay file.
type FormatError struct {
	Section string // settings, event or tracks
	Item    string // field being read, e.g. "hit 12 x"
	Err     error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s: %s: %v", ErrMalformed, e.Section, e.Item, e.Err)
}

func (e *FormatError) Unwrap() []error { return []error{ErrMalformed, e.Err} }
