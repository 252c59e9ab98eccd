package cluster

import "math"

// NoZCut disables the |z| acceptance cut of Build.
const NoZCut = float32(math.MaxFloat32)

// RawHit is an unsorted per-slice hit descriptor.
type RawHit struct {
	ID  int32
	Row int
	X   float32
	Y   float32
	Z   float32
	Amp float32
}

// Data is the row-indexed hit container of one slice. It is read-only once
// built.
type Data struct {
	slice    int
	firstRow int
	lastRow  int

	counts  []int // per row, indices [0, lastRow]
	offsets []int // prefix sums, len(counts)+1

	ids    []int32
	x      []float32
	y      []float32
	z      []float32
	amp    []float32
	source []int // position of the hit in the input sequence
}

// empty returns a Data with no rows.
func empty(slice int) *Data {
	return &Data{slice: slice, firstRow: 0, lastRow: -1, offsets: []int{0}}
}

// Build sorts raw by row into a new Data. Hits with |z| > zCut, a negative
// row or non-finite coordinates are excluded. Hits sharing a row keep their
// input order.
func Build(slice int, raw []RawHit, zCut float32) *Data {
	if len(raw) == 0 {
		return empty(slice)
	}

	keep := func(h *RawHit) bool {
		if h.Row < 0 || !finite(h.X) || !finite(h.Y) || !finite(h.Z) {
			return false
		}
		return float32(math.Abs(float64(h.Z))) <= zCut
	}

	lastRow := -1
	n := 0
	for i := range raw {
		if !keep(&raw[i]) {
			continue
		}
		if raw[i].Row > lastRow {
			lastRow = raw[i].Row
		}
		n++
	}
	if n == 0 {
		return empty(slice)
	}

	counts := make([]int, lastRow+1)
	for i := range raw {
		if keep(&raw[i]) {
			counts[raw[i].Row]++
		}
	}

	d := newData(slice, counts, n)
	cursor := append([]int(nil), d.offsets[:len(counts)]...)
	for i := range raw {
		h := &raw[i]
		if !keep(h) {
			continue
		}
		j := cursor[h.Row]
		cursor[h.Row]++
		d.set(j, h.ID, h.X, h.Y, h.Z, h.Amp, i)
	}
	return d
}

// newData allocates a Data for the given per-row counts, computing the
// prefix-sum table and the populated row range.
func newData(slice int, counts []int, total int) *Data {
	d := &Data{
		slice:   slice,
		counts:  counts,
		offsets: make([]int, len(counts)+1),
		ids:     make([]int32, total),
		x:       make([]float32, total),
		y:       make([]float32, total),
		z:       make([]float32, total),
		amp:     make([]float32, total),
		source:  make([]int, total),
	}
	d.firstRow, d.lastRow = 0, -1
	first := true
	for r, c := range counts {
		d.offsets[r+1] = d.offsets[r] + c
		if c > 0 {
			if first {
				d.firstRow = r
				first = false
			}
			d.lastRow = r
		}
	}
	// Trim trailing empty rows so lastRow is the last populated row.
	d.counts = d.counts[:d.lastRow+1]
	d.offsets = d.offsets[:d.lastRow+2]
	return d
}

func (d *Data) set(j int, id int32, x, y, z, amp float32, source int) {
	d.ids[j] = id
	d.x[j] = x
	d.y[j] = y
	d.z[j] = z
	d.amp[j] = amp
	d.source[j] = source
}

// Slice returns the slice index.
func (d *Data) Slice() int { return d.slice }

// FirstRow returns the first populated row.
func (d *Data) FirstRow() int { return d.firstRow }

// LastRow returns the last populated row, -1 for an empty slice.
func (d *Data) LastRow() int { return d.lastRow }

// TotalHits returns the number of hits.
func (d *Data) TotalHits() int { return len(d.ids) }

// NumberOfClusters returns the hit count of row, 0 outside [FirstRow, LastRow].
func (d *Data) NumberOfClusters(row int) int {
	if row < d.firstRow || row > d.lastRow {
		return 0
	}
	return d.counts[row]
}

// RowOffset returns the index of the first hit of row. Rows past LastRow
// return TotalHits.
func (d *Data) RowOffset(row int) int {
	if row <= 0 {
		return 0
	}
	if row > d.lastRow {
		return len(d.ids)
	}
	return d.offsets[row]
}

// RowTables returns per-row first-hit offsets and hit counts for rows
// [0, nRows), the form consumed by slice trackers.
func (d *Data) RowTables(nRows int) (first, counts []int) {
	first = make([]int, nRows)
	counts = make([]int, nRows)
	for r := 0; r < nRows; r++ {
		first[r] = d.RowOffset(r)
		counts[r] = d.NumberOfClusters(r)
	}
	return first, counts
}

// Hit returns hit i as a RawHit.
func (d *Data) Hit(i int) RawHit {
	return RawHit{ID: d.ids[i], Row: d.rowOf(i), X: d.x[i], Y: d.y[i], Z: d.z[i], Amp: d.amp[i]}
}

// rowOf finds the row containing hit i.
func (d *Data) rowOf(i int) int {
	lo, hi := d.firstRow, d.lastRow
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if d.offsets[mid] <= i {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// X returns the x coordinates in row order.
func (d *Data) X() []float32 { return d.x }

// Y returns the y coordinates in row order.
func (d *Data) Y() []float32 { return d.y }

// Z returns the z coordinates in row order.
func (d *Data) Z() []float32 { return d.z }

// Amp returns the amplitudes in row order.
func (d *Data) Amp() []float32 { return d.amp }

// IDs returns the external hit ids in row order.
func (d *Data) IDs() []int32 { return d.ids }

// Source returns the input position of hit i.
func (d *Data) Source(i int) int { return d.source[i] }

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
