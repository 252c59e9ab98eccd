package cluster

import (
	"math"

	"github.com/hupe1980/tpctrack/model"
)

// Partition is the slice-major view of an event produced by Split.
type Partition struct {
	// Slices holds one Data per slice, never nil.
	Slices []*Data
	// FirstSliceHit[s] is the position of slice s's first hit in the
	// concatenated slice-major order; FirstSliceHit[len(Slices)] is the
	// number of partitioned hits.
	FirstSliceHit []int
	// Order maps a slice-major position to the index of the hit in the
	// table passed to Split.
	Order []int
	// Dropped counts hits outside the layout, beyond the z cut, with
	// non-finite coordinates or past the source id width of their row.
	Dropped int
}

// Split partitions row-sorted hits into per-slice Data with a two-pass
// counting sort. rowsPerSlice gives the number of rows of every slice; its
// length is the slice count. Hits of one row keep their table order.
//
// Hits are excluded as in Build: |z| > zCut or non-finite coordinates.
// Slices, rows and in-row positions that a model.SourceID cannot address
// are excluded as well; a row keeps its first MaxSourceCluster+1 hits.
func Split(hits []model.Hit, rowsPerSlice []int, zCut float32) *Partition {
	nSlices := len(rowsPerSlice)
	p := &Partition{
		Slices:        make([]*Data, nSlices),
		FirstSliceHit: make([]int, nSlices+1),
	}

	accept := func(h *model.Hit) bool {
		if h.Slice < 0 || h.Slice >= nSlices || h.Slice > model.MaxSourceSlice {
			return false
		}
		if h.Row < 0 || h.Row >= rowsPerSlice[h.Slice] || h.Row > model.MaxSourceRow {
			return false
		}
		if !finite(h.X) || !finite(h.Y) || !finite(h.Z) {
			return false
		}
		return float32(math.Abs(float64(h.Z))) <= zCut
	}

	// Pass 1: count per (slice, row).
	counts := make([][]int, nSlices)
	totals := make([]int, nSlices)
	for s := range counts {
		counts[s] = make([]int, rowsPerSlice[s])
	}
	for i := range hits {
		h := &hits[i]
		if !accept(h) || counts[h.Slice][h.Row] > model.MaxSourceCluster {
			p.Dropped++
			continue
		}
		counts[h.Slice][h.Row]++
		totals[h.Slice]++
	}

	// Pass 2: lay out every slice and copy hits into their row ranges.
	cursors := make([][]int, nSlices)
	for s := 0; s < nSlices; s++ {
		p.FirstSliceHit[s+1] = p.FirstSliceHit[s] + totals[s]
		if totals[s] == 0 {
			p.Slices[s] = empty(s)
			continue
		}
		d := newData(s, counts[s], totals[s])
		p.Slices[s] = d
		cursors[s] = append([]int(nil), d.offsets[:len(d.counts)]...)
	}

	p.Order = make([]int, p.FirstSliceHit[nSlices])
	for i := range hits {
		h := &hits[i]
		if !accept(h) {
			continue
		}
		d := p.Slices[h.Slice]
		j := cursors[h.Slice][h.Row]
		if j == d.offsets[h.Row+1] {
			// Row already holds every hit counted in pass 1.
			continue
		}
		cursors[h.Slice][h.Row]++
		d.set(j, h.ID, h.X, h.Y, h.Z, h.Amp, i)
		p.Order[p.FirstSliceHit[h.Slice]+j] = i
	}
	return p
}

// Resolve maps (slice, row, cluster-within-row) to the table index passed to
// Split. ok is false when the reference does not exist.
func (p *Partition) Resolve(slice, row, cluster int) (int, bool) {
	if slice < 0 || slice >= len(p.Slices) || cluster < 0 {
		return 0, false
	}
	d := p.Slices[slice]
	if cluster >= d.NumberOfClusters(row) {
		return 0, false
	}
	return p.Order[p.FirstSliceHit[slice]+d.RowOffset(row)+cluster], true
}

// Total returns the number of partitioned hits.
func (p *Partition) Total() int { return p.FirstSliceHit[len(p.Slices)] }
