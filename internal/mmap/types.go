package mmap

import "errors"

// AccessPattern is a kernel hint for how a mapping will be read.
type AccessPattern int

const (
	// AccessDefault gives no hint.
	AccessDefault AccessPattern = iota
	// AccessSequential suits a single pass over a buffer, e.g. re-encoding.
	AccessSequential
	// AccessRandom suits per-track lookups.
	AccessRandom
	// AccessWillNeed prefetches the mapping.
	AccessWillNeed
)

var (
	// ErrClosed is returned when using a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files whose size cannot be mapped.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrOutOfBounds is returned for a region outside the mapping.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
)
