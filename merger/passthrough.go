package merger

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/model"
	"github.com/hupe1980/tpctrack/resultbuf"
	"github.com/hupe1980/tpctrack/slicetracker"
)

// ErrNoSliceParam is returned by Reconstruct before SetSliceParam.
var ErrNoSliceParam = errors.New("merger: slice param not set")

// Passthrough turns every slice track into one merged track without
// stitching across slice borders. DEdx is the mean cluster amplitude.
type Passthrough struct {
	param    geometry.Param
	hasParam bool
	slices   map[int]*slicetracker.Output
	out      Output
}

// NewPassthrough creates a Passthrough merger.
func NewPassthrough() *Passthrough {
	return &Passthrough{slices: make(map[int]*slicetracker.Output)}
}

// PassthroughFactory is a Factory for Passthrough.
func PassthroughFactory() Merger { return NewPassthrough() }

// Clear implements Merger.
func (p *Passthrough) Clear() {
	clear(p.slices)
	p.out.Reset()
}

// SetSliceParam implements Merger.
func (p *Passthrough) SetSliceParam(param geometry.Param) {
	p.param = param
	p.hasParam = true
}

// SetSliceData implements Merger.
func (p *Passthrough) SetSliceData(slice int, out *slicetracker.Output) {
	p.slices[slice] = out
}

// Output implements Merger.
func (p *Passthrough) Output() *Output { return &p.out }

// Reconstruct implements Merger. Slices are emitted in ascending order.
func (p *Passthrough) Reconstruct() error {
	if !p.hasParam {
		return ErrNoSliceParam
	}
	p.out.Reset()

	maxSlice := -1
	for s := range p.slices {
		maxSlice = max(maxSlice, s)
	}

	var buf []resultbuf.Cluster
	for s := 0; s <= maxSlice; s++ {
		so, ok := p.slices[s]
		if !ok || so == nil {
			continue
		}
		for i := range so.Tracks {
			st := &so.Tracks[i]
			buf = buf[:0]
			var sum float32
			for _, c := range so.TrackClusters(i) {
				id, err := model.NewSourceID(s, c.Row, c.Index)
				if err != nil {
					return fmt.Errorf("merger: slice %d track %d: %w", s, i, err)
				}
				buf = append(buf, resultbuf.Cluster{
					SourceID: id,
					ExtID:    c.ExtID,
					Amp:      resultbuf.PackAmplitude(c.Amp),
				})
				sum += c.Amp
			}
			t := model.Track{Param: st.Param, Alpha: st.Alpha}
			if len(buf) > 0 {
				t.DEdx = sum / float32(len(buf))
			}
			p.out.Append(t, buf...)
		}
	}
	return nil
}
