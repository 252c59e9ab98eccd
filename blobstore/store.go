package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// ErrConcurrentModification is returned by commit-aware stores when another
// writer advanced the CURRENT pointer first.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// CurrentName is the blob holding the name of the committed manifest.
// Stores with an atomic commit log intercept reads and writes of it.
const CurrentName = "CURRENT"

// BlobStore stores the immutable archive blobs of replay runs.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Put writes a blob atomically, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names of all blobs with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a stored blob.
type Blob interface {
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange returns a reader over [off, off+n) clipped to the blob.
	ReadRange(ctx context.Context, off, n int64) (io.ReadCloser, error)
	Close() error
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is implemented by blobs backed by memory the caller may read
// directly until Close.
type Mappable interface {
	Bytes() ([]byte, error)
}

// ReadAll returns the full content of blob name.
func ReadAll(ctx context.Context, s BlobStore, name string) ([]byte, error) {
	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return bytes.Clone(data), nil
	}

	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data := make([]byte, b.Size())
	if _, err := io.ReadFull(rc, data); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// bytesBlob serves a blob from memory.
type bytesBlob struct {
	data []byte
}

// NewBytesBlob returns a Blob over data. data must not be modified while
// the blob is in use.
func NewBytesBlob(data []byte) Blob { return &bytesBlob{data: data} }

func (b *bytesBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *bytesBlob) ReadRange(_ context.Context, off, n int64) (io.ReadCloser, error) {
	if off < 0 || off > int64(len(b.data)) {
		return nil, io.EOF
	}
	end := min(off+n, int64(len(b.data)))
	return io.NopCloser(bytes.NewReader(b.data[off:end])), nil
}

func (b *bytesBlob) Close() error { return nil }

func (b *bytesBlob) Size() int64 { return int64(len(b.data)) }

func (b *bytesBlob) Bytes() ([]byte, error) { return b.data, nil }
