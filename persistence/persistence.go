package persistence

import (
	"io"
	"os"

	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/model"
)

// WriteSettings writes params as a settings file.
func WriteSettings(w io.Writer, params []geometry.Param) error {
	e := NewEncoder(w)
	if err := e.Settings(params); err != nil {
		return err
	}
	return e.Flush()
}

// ReadSettings reads a settings file.
func ReadSettings(r io.Reader) ([]geometry.Param, error) {
	return NewDecoder(r).Settings()
}

// WriteEvent writes hits as an event file.
func WriteEvent(w io.Writer, hits []model.Hit) error {
	e := NewEncoder(w)
	if err := e.Event(hits); err != nil {
		return err
	}
	return e.Flush()
}

// ReadEvent reads one event. An empty stream is malformed.
func ReadEvent(r io.Reader) ([]model.Hit, error) {
	hits, err := NewDecoder(r).Event()
	if err == io.EOF {
		return nil, &FormatError{Section: "event", Item: "nHits", Err: io.ErrUnexpectedEOF}
	}
	return hits, err
}

// WriteTracks writes a tracks file.
func WriteTracks(w io.Writer, t *Tracks) error {
	e := NewEncoder(w)
	if err := e.Tracks(t); err != nil {
		return err
	}
	return e.Flush()
}

// ReadTracks reads a tracks file.
func ReadTracks(r io.Reader) (*Tracks, error) {
	return NewDecoder(r).Tracks()
}

// LoadSettings reads the settings file at path.
func LoadSettings(path string) ([]geometry.Param, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSettings(f)
}

// SaveSettings writes params to path, replacing any existing file.
func SaveSettings(path string, params []geometry.Param) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSettings(f, params); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
