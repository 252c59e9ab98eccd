package mmap

import (
	"os"
	"sync/atomic"
)

// Mapping is a read-only memory-mapped file.
type Mapping struct {
	path   string
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the file at path read-only. Empty files yield an empty mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size < 0 || int64(int(size)) != size {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &Mapping{path: path}, nil
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, err
	}
	return &Mapping{path: path, data: data, unmap: unmap}, nil
}

// Path returns the mapped file name.
func (m *Mapping) Path() string { return m.path }

// Close unmaps the file. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

// Bytes returns the mapped contents, or nil after Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the mapped length in bytes.
func (m *Mapping) Size() int { return len(m.data) }

// Advise passes an access hint to the kernel.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}
