package persistence

import (
	"bufio"
	"io"
	"strconv"
	"time"

	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/model"
)

// Tracks is the content of a tracks section.
type Tracks struct {
	SliceTime time.Duration
	TrackHits []int
	Tracks    []model.Track
}

// Encoder writes replay sections to a stream. Errors are sticky: after the
// first failed write every method returns it.
type Encoder struct {
	w   *bufio.Writer
	buf []byte
	err error
}

// NewEncoder returns an encoder writing to w. Call Flush when done.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Settings writes the slice layout.
func (e *Encoder) Settings(params []geometry.Param) error {
	e.ints(len(params))
	for i := range params {
		p := &params[i]
		e.buf = strconv.AppendInt(e.buf[:0], int64(p.Slice), 10)
		e.appendFloats(p.Alpha, p.DAlpha, p.RMin, p.RMax, p.ZMin, p.ZMax, p.Bz,
			p.ErrY0, p.ErrZ0, p.ErrYDrift, p.ErrZDrift, p.ErrYAngle, p.ErrZAngle)
		e.buf = append(e.buf, ' ')
		e.buf = strconv.AppendInt(e.buf, int64(len(p.RowX)), 10)
		e.line()
		e.floats(p.RowX...)
	}
	return e.err
}

// Event writes the hits of one event.
func (e *Encoder) Event(hits []model.Hit) error {
	e.ints(len(hits))
	for i := range hits {
		h := &hits[i]
		e.buf = e.buf[:0]
		e.appendFloats(h.X, h.Y, h.Z, h.ErrY, h.ErrZ, h.Amp)
		e.buf = append(e.buf, ' ')
		e.buf = strconv.AppendInt(e.buf, int64(h.ID), 10)
		e.buf = append(e.buf, ' ')
		e.buf = strconv.AppendInt(e.buf, int64(h.Slice), 10)
		e.buf = append(e.buf, ' ')
		e.buf = strconv.AppendInt(e.buf, int64(h.Row), 10)
		e.line()
	}
	return e.err
}

// Tracks writes reconstructed tracks with their hit index list.
func (e *Encoder) Tracks(t *Tracks) error {
	e.ints(int(t.SliceTime.Nanoseconds()))
	e.ints(len(t.TrackHits))
	e.ints(t.TrackHits...)
	e.ints(len(t.Tracks))
	for i := range t.Tracks {
		tr := &t.Tracks[i]
		e.buf = strconv.AppendInt(e.buf[:0], int64(tr.NHits), 10)
		e.buf = append(e.buf, ' ')
		e.buf = strconv.AppendInt(e.buf, int64(tr.FirstHitRef), 10)
		e.appendFloats(tr.Alpha, tr.DEdx)
		e.line()

		p := &tr.Param
		e.buf = e.buf[:0]
		e.appendFloats(p.X, p.SignCosPhi, p.Chi2)
		e.buf = append(e.buf, ' ')
		e.buf = strconv.AppendInt(e.buf, int64(p.NDF), 10)
		e.line()
		e.floats(p.P[:]...)
		e.floats(p.C[:]...)
	}
	return e.err
}

// Flush writes buffered data to the underlying writer.
func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	e.err = e.w.Flush()
	return e.err
}

func (e *Encoder) ints(vs ...int) {
	e.buf = e.buf[:0]
	for i, v := range vs {
		if i > 0 {
			e.buf = append(e.buf, ' ')
		}
		e.buf = strconv.AppendInt(e.buf, int64(v), 10)
	}
	e.line()
}

func (e *Encoder) floats(vs ...float32) {
	e.buf = e.buf[:0]
	e.appendFloats(vs...)
	e.line()
}

// appendFloats appends vs to buf, each preceded by a space unless buf is
// empty.
func (e *Encoder) appendFloats(vs ...float32) {
	for _, v := range vs {
		if len(e.buf) > 0 {
			e.buf = append(e.buf, ' ')
		}
		e.buf = strconv.AppendFloat(e.buf, float64(v), 'g', -1, 32)
	}
}

func (e *Encoder) line() {
	if e.err != nil {
		return
	}
	e.buf = append(e.buf, '\n')
	_, e.err = e.w.Write(e.buf)
}
