package cluster

import (
	"math"
	"testing"

	"github.com/hupe1980/tpctrack/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertRowTable(t *testing.T, d *Data) {
	t.Helper()
	for r := d.FirstRow(); r <= d.LastRow(); r++ {
		assert.Equal(t, d.NumberOfClusters(r), d.RowOffset(r+1)-d.RowOffset(r), "row %d", r)
	}
	assert.Equal(t, d.TotalHits(), d.RowOffset(d.LastRow()+1))
}

func TestBuild_Empty(t *testing.T) {
	for _, raw := range [][]RawHit{nil, {}} {
		d := Build(3, raw, NoZCut)
		assert.Equal(t, 3, d.Slice())
		assert.Equal(t, 0, d.TotalHits())
		assert.Equal(t, -1, d.LastRow())
		assert.Equal(t, 0, d.RowOffset(0))
		assert.Equal(t, 0, d.RowOffset(10))
		assert.Equal(t, 0, d.NumberOfClusters(0))
	}
}

func TestBuild_RowTable(t *testing.T) {
	raw := []RawHit{
		{ID: 1, Row: 5, Z: 1},
		{ID: 2, Row: 2, Z: 1},
		{ID: 3, Row: 5, Z: 1},
		{ID: 4, Row: 9, Z: 1},
		{ID: 5, Row: 2, Z: 1},
		{ID: 6, Row: 2, Z: 1},
	}
	d := Build(0, raw, NoZCut)

	require.Equal(t, 6, d.TotalHits())
	assert.Equal(t, 2, d.FirstRow())
	assert.Equal(t, 9, d.LastRow())
	assert.Equal(t, 3, d.NumberOfClusters(2))
	assert.Equal(t, 2, d.NumberOfClusters(5))
	assert.Equal(t, 0, d.NumberOfClusters(7))
	assert.Equal(t, 0, d.NumberOfClusters(1))
	assert.Equal(t, 0, d.NumberOfClusters(10))
	assertRowTable(t, d)

	// Stable on equal rows.
	assert.Equal(t, []int32{2, 5, 6, 1, 3, 4}, d.IDs())
	assert.Equal(t, 5, d.Hit(4).Row)
	assert.Equal(t, 9, d.Hit(5).Row)
	assert.Equal(t, 2, d.Hit(0).Row)
}

func TestBuild_ZCutIsStrict(t *testing.T) {
	raw := []RawHit{
		{ID: 1, Row: 0, Z: 10},
		{ID: 2, Row: 0, Z: -10},
		{ID: 3, Row: 0, Z: 10.001},
		{ID: 4, Row: 1, Z: -12},
	}
	d := Build(0, raw, 10)
	assert.Equal(t, []int32{1, 2}, d.IDs())
	assert.Equal(t, 0, d.LastRow())
	assert.Equal(t, 2, d.RowOffset(1))
}

func TestBuild_SkipsMalformed(t *testing.T) {
	nan := float32(math.NaN())
	raw := []RawHit{
		{ID: 1, Row: -1},
		{ID: 2, Row: 0, X: nan},
		{ID: 3, Row: 1, Y: float32(math.Inf(1))},
		{ID: 4, Row: 1},
	}
	d := Build(0, raw, NoZCut)
	assert.Equal(t, []int32{4}, d.IDs())
	assert.Equal(t, 3, d.Source(0))
	assert.Equal(t, 1, d.FirstRow())
}

func TestRowTables_PadsPastLastRow(t *testing.T) {
	d := Build(0, []RawHit{{ID: 1, Row: 1}, {ID: 2, Row: 1}}, NoZCut)
	first, counts := d.RowTables(4)
	assert.Equal(t, []int{0, 0, 2, 2}, first)
	assert.Equal(t, []int{0, 2, 0, 0}, counts)
}

func TestSplit(t *testing.T) {
	hits := []model.Hit{
		{ID: 10, Slice: 1, Row: 0},
		{ID: 11, Slice: 0, Row: 0},
		{ID: 12, Slice: 1, Row: 0},
		{ID: 13, Slice: 0, Row: 2},
		{ID: 14, Slice: 1, Row: 3},
		{ID: 15, Slice: 2, Row: 0}, // no such slice
		{ID: 16, Slice: 0, Row: 7}, // no such row
	}
	p := Split(hits, []int{4, 4}, NoZCut)

	assert.Equal(t, 2, p.Dropped)
	assert.Equal(t, []int{0, 2, 5}, p.FirstSliceHit)
	assert.Equal(t, 5, p.Total())

	total := 0
	for _, d := range p.Slices {
		for r := 0; r < 4; r++ {
			total += d.NumberOfClusters(r)
		}
		assertRowTable(t, d)
	}
	assert.Equal(t, len(hits)-p.Dropped, total)

	assert.Equal(t, []int32{11, 13}, p.Slices[0].IDs())
	assert.Equal(t, []int32{10, 12, 14}, p.Slices[1].IDs())

	seen := map[int]bool{}
	for _, idx := range p.Order {
		assert.False(t, seen[idx], "hit %d placed twice", idx)
		seen[idx] = true
	}

	idx, ok := p.Resolve(1, 0, 1)
	require.True(t, ok)
	assert.Equal(t, int32(12), hits[idx].ID)

	idx, ok = p.Resolve(0, 2, 0)
	require.True(t, ok)
	assert.Equal(t, int32(13), hits[idx].ID)

	_, ok = p.Resolve(0, 2, 1)
	assert.False(t, ok)
	_, ok = p.Resolve(5, 0, 0)
	assert.False(t, ok)
}

func TestSplit_ZCut(t *testing.T) {
	nan := float32(math.NaN())
	hits := []model.Hit{
		{ID: 1, Row: 0, Z: 10},
		{ID: 2, Row: 0, Z: -10.5},
		{ID: 3, Row: 1, Z: -10},
		{ID: 4, Row: 1, Z: 11},
		{ID: 5, Row: 1, X: nan},
	}
	p := Split(hits, []int{2}, 10)

	assert.Equal(t, 3, p.Dropped)
	assert.Equal(t, 2, p.Total())
	assert.Equal(t, []int32{1, 3}, p.Slices[0].IDs())
}

func TestSplit_SourceIDWidth(t *testing.T) {
	n := model.MaxSourceCluster + 3
	hits := make([]model.Hit, 0, n+1)
	for i := 0; i < n; i++ {
		hits = append(hits, model.Hit{ID: int32(i), Row: 0})
	}
	hits = append(hits, model.Hit{ID: -1, Row: model.MaxSourceRow + 1})

	p := Split(hits, []int{model.MaxSourceRow + 2}, NoZCut)

	assert.Equal(t, 3, p.Dropped)
	d := p.Slices[0]
	assert.Equal(t, model.MaxSourceCluster+1, d.NumberOfClusters(0))
	assert.Equal(t, 0, d.NumberOfClusters(model.MaxSourceRow+1))
	assert.Equal(t, int32(model.MaxSourceCluster), d.IDs()[model.MaxSourceCluster])
	assert.Len(t, p.Order, model.MaxSourceCluster+1)
}
