package mmap

// Region is a sub-range of a Mapping. It does not own the memory.
type Region struct {
	parent *Mapping
	offset int
	size   int
}

// Region returns a view of [offset, offset+size).
func (m *Mapping) Region(offset, size int) (*Region, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if offset < 0 || size < 0 || offset+size > len(m.data) {
		return nil, ErrOutOfBounds
	}
	return &Region{parent: m, offset: offset, size: size}, nil
}

// Bytes returns the region contents, or nil once the parent is closed.
func (r *Region) Bytes() []byte {
	if r.parent.closed.Load() {
		return nil
	}
	return r.parent.data[r.offset : r.offset+r.size]
}

// Advise passes an access hint for the region only.
func (r *Region) Advise(pattern AccessPattern) error {
	if r.parent.closed.Load() {
		return ErrClosed
	}
	return osAdvise(r.parent.data[r.offset:r.offset+r.size], pattern)
}
