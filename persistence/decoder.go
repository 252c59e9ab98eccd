package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/model"
)

// maxCount bounds element counts read from a file so that a corrupt count
// cannot trigger a huge allocation.
const maxCount = 1 << 26

// Decoder reads replay sections from a stream. Sections may be
// concatenated, e.g. several events in one file.
type Decoder struct {
	sc      *bufio.Scanner
	peeked  bool
	section string
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	return &Decoder{sc: sc}
}

// Settings reads a slice layout and validates every slice.
func (d *Decoder) Settings() ([]geometry.Param, error) {
	d.section = "settings"
	n, err := d.count("nSlices")
	if err != nil {
		return nil, err
	}
	params := make([]geometry.Param, n)
	for i := range params {
		p := &params[i]
		item := func(f string) string { return fmt.Sprintf("slice %d %s", i, f) }
		if p.Slice, err = d.int(item("index")); err != nil {
			return nil, err
		}
		fields := []struct {
			name string
			dst  *float32
		}{
			{"alpha", &p.Alpha}, {"dAlpha", &p.DAlpha},
			{"rMin", &p.RMin}, {"rMax", &p.RMax},
			{"zMin", &p.ZMin}, {"zMax", &p.ZMax},
			{"bz", &p.Bz},
			{"errY0", &p.ErrY0}, {"errZ0", &p.ErrZ0},
			{"errYDrift", &p.ErrYDrift}, {"errZDrift", &p.ErrZDrift},
			{"errYAngle", &p.ErrYAngle}, {"errZAngle", &p.ErrZAngle},
		}
		for _, f := range fields {
			if *f.dst, err = d.float(item(f.name)); err != nil {
				return nil, err
			}
		}
		rows, err := d.count(item("nRows"))
		if err != nil {
			return nil, err
		}
		p.RowX = make([]float32, rows)
		for r := range p.RowX {
			if p.RowX[r], err = d.float(item(fmt.Sprintf("row %d", r))); err != nil {
				return nil, err
			}
		}
		if err := p.Validate(); err != nil {
			return nil, &FormatError{Section: d.section, Item: item("layout"), Err: err}
		}
	}
	return params, nil
}

// Event reads the hits of one event. It returns io.EOF when the stream
// ends before the event starts.
func (d *Decoder) Event() ([]model.Hit, error) {
	d.section = "event"
	if !d.more() {
		return nil, io.EOF
	}
	n, err := d.count("nHits")
	if err != nil {
		return nil, err
	}
	hits := make([]model.Hit, n)
	for i := range hits {
		h := &hits[i]
		item := func(f string) string { return fmt.Sprintf("hit %d %s", i, f) }
		for _, f := range []struct {
			name string
			dst  *float32
		}{
			{"x", &h.X}, {"y", &h.Y}, {"z", &h.Z},
			{"errY", &h.ErrY}, {"errZ", &h.ErrZ}, {"amplitude", &h.Amp},
		} {
			if *f.dst, err = d.float(item(f.name)); err != nil {
				return nil, err
			}
		}
		id, err := d.int(item("id"))
		if err != nil {
			return nil, err
		}
		h.ID = int32(id)
		if h.Slice, err = d.int(item("slice")); err != nil {
			return nil, err
		}
		if h.Row, err = d.int(item("row")); err != nil {
			return nil, err
		}
	}
	return hits, nil
}

// Tracks reads a tracks section and checks that every track references a
// range of the hit index list.
func (d *Decoder) Tracks() (*Tracks, error) {
	d.section = "tracks"
	ns, err := d.int("sliceTime")
	if err != nil {
		return nil, err
	}
	t := &Tracks{SliceTime: time.Duration(ns)}

	n, err := d.count("nTrackHits")
	if err != nil {
		return nil, err
	}
	t.TrackHits = make([]int, n)
	for i := range t.TrackHits {
		if t.TrackHits[i], err = d.int(fmt.Sprintf("track hit %d", i)); err != nil {
			return nil, err
		}
	}

	if n, err = d.count("nTracks"); err != nil {
		return nil, err
	}
	t.Tracks = make([]model.Track, n)
	for i := range t.Tracks {
		tr := &t.Tracks[i]
		p := &tr.Param
		item := func(f string) string { return fmt.Sprintf("track %d %s", i, f) }

		if tr.NHits, err = d.int(item("hitCount")); err != nil {
			return nil, err
		}
		if tr.FirstHitRef, err = d.int(item("firstHitRef")); err != nil {
			return nil, err
		}
		if tr.NHits < 0 || tr.FirstHitRef < 0 || tr.FirstHitRef+tr.NHits > len(t.TrackHits) {
			return nil, &FormatError{Section: d.section, Item: item("hits"),
				Err: fmt.Errorf("range [%d,%d) outside %d track hits", tr.FirstHitRef, tr.FirstHitRef+tr.NHits, len(t.TrackHits))}
		}

		dst := []*float32{&tr.Alpha, &tr.DEdx, &p.X, &p.SignCosPhi, &p.Chi2}
		names := []string{"alpha", "dEdx", "x", "signCosPhi", "chi2"}
		for k := range dst {
			if *dst[k], err = d.float(item(names[k])); err != nil {
				return nil, err
			}
		}
		ndf, err := d.int(item("ndf"))
		if err != nil {
			return nil, err
		}
		p.NDF = int32(ndf)
		for k := range p.P {
			if p.P[k], err = d.float(item(fmt.Sprintf("param %d", k))); err != nil {
				return nil, err
			}
		}
		for k := range p.C {
			if p.C[k], err = d.float(item(fmt.Sprintf("cov %d", k))); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// more reports whether another token follows. A read error also counts,
// so that the next read reports it.
func (d *Decoder) more() bool {
	if d.peeked {
		return true
	}
	if d.sc.Scan() {
		d.peeked = true
		return true
	}
	return d.sc.Err() != nil
}

func (d *Decoder) next(item string) (string, error) {
	if d.peeked {
		d.peeked = false
		return d.sc.Text(), nil
	}
	if !d.sc.Scan() {
		err := d.sc.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return "", &FormatError{Section: d.section, Item: item, Err: err}
	}
	return d.sc.Text(), nil
}

func (d *Decoder) int(item string) (int, error) {
	tok, err := d.next(item)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &FormatError{Section: d.section, Item: item, Err: errors.Unwrap(err)}
	}
	return v, nil
}

// count reads a non-negative element count.
func (d *Decoder) count(item string) (int, error) {
	n, err := d.int(item)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > maxCount {
		return 0, &FormatError{Section: d.section, Item: item, Err: fmt.Errorf("count %d out of range", n)}
	}
	return n, nil
}

func (d *Decoder) float(item string) (float32, error) {
	tok, err := d.next(item)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, &FormatError{Section: d.section, Item: item, Err: errors.Unwrap(err)}
	}
	return float32(v), nil
}
