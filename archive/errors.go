package archive

import "errors"

var (
	// ErrNoCommit is returned by Open when the store has no committed run.
	ErrNoCommit = errors.New("archive: no committed run")

	// ErrIncompatibleFormat is returned for manifests of another major
	// format version.
	ErrIncompatibleFormat = errors.New("archive: incompatible format")

	// ErrCorrupt is returned for blocks that do not match their manifest
	// entry.
	ErrCorrupt = errors.New("archive: corrupt block")

	// ErrCommitted is returned by Writer methods after Commit.
	ErrCommitted = errors.New("archive: run already committed")

	// ErrUnknownEvent is returned by Reader for events missing from the
	// manifest.
	ErrUnknownEvent = errors.New("archive: unknown event")
)
