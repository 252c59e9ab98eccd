package resultbuf

import (
	"errors"
	"os"

	"github.com/hupe1980/tpctrack/internal/mmap"
)

// File is a View over a memory-mapped buffer file.
type File struct {
	*View
	m *mmap.Mapping
}

// OpenFile maps a persisted buffer read-only. The view is valid until Close.
func OpenFile(path string) (*File, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	v, err := NewView(m.Bytes())
	if err != nil {
		return nil, errors.Join(err, m.Close())
	}
	_ = m.Advise(mmap.AccessRandom)
	return &File{View: v, m: m}, nil
}

// Close unmaps the file.
func (f *File) Close() error { return f.m.Close() }

// WriteFile persists buf, which must be a valid encoded buffer.
func WriteFile(path string, buf []byte) error {
	if _, err := ReadLayout(buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}
