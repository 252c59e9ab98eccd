package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceID_Fields(t *testing.T) {
	cases := []struct{ slice, row, cluster int }{
		{0, 0, 0},
		{35, 158, 1234},
		{MaxSourceSlice, MaxSourceRow, MaxSourceCluster},
	}
	for _, c := range cases {
		id, err := NewSourceID(c.slice, c.row, c.cluster)
		require.NoError(t, err)
		assert.Equal(t, c.slice, id.Slice())
		assert.Equal(t, c.row, id.Row())
		assert.Equal(t, c.cluster, id.Cluster())
	}
}

func TestSourceID_Overflow(t *testing.T) {
	_, err := NewSourceID(MaxSourceSlice+1, 0, 0)
	assert.ErrorIs(t, err, ErrSourceIDOverflow)
	_, err = NewSourceID(0, MaxSourceRow+1, 0)
	assert.ErrorIs(t, err, ErrSourceIDOverflow)
	_, err = NewSourceID(0, 0, MaxSourceCluster+1)
	assert.ErrorIs(t, err, ErrSourceIDOverflow)
	_, err = NewSourceID(-1, 0, 0)
	assert.ErrorIs(t, err, ErrSourceIDOverflow)

	assert.Panics(t, func() { MustSourceID(0, -1, 0) })
}

func TestSourceID_String(t *testing.T) {
	assert.Equal(t, "Src(3:17:42)", MustSourceID(3, 17, 42).String())
}

func TestTrackParam_CosPhi(t *testing.T) {
	p := TrackParam{SignCosPhi: -1}
	p.P[ParSinPhi] = 0.6
	assert.InDelta(t, -0.8, p.CosPhi(), 1e-6)
	assert.True(t, p.IsFinite())
}
