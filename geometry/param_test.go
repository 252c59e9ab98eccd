package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	params := Default(DefaultSlices)
	assert.Len(t, params, DefaultSlices)
	assert.Len(t, params[0].RowX, 159)

	for i := range params {
		assert.NoError(t, params[i].Validate())
		assert.True(t, params[0].SameLayout(&params[i]))
	}
	assert.Equal(t, params[0].Alpha, params[18].Alpha)
	assert.Greater(t, params[0].ZMax, float32(0))
	assert.Less(t, params[18].ZMin, float32(0))
}

func TestValidate(t *testing.T) {
	p := Default(1)[0]
	p.RowX[3] = p.RowX[2]
	assert.ErrorIs(t, p.Validate(), ErrInvalidParam)

	p = Param{RowX: []float32{1}}
	assert.ErrorIs(t, p.Validate(), ErrInvalidParam)
}

func TestClusterErrors2(t *testing.T) {
	p := Default(1)[0]
	y0, z0 := p.ClusterErrors2(p.ZMax, 0, 1, 0)
	assert.InDelta(t, p.ErrY0*p.ErrY0, y0, 1e-7)
	assert.InDelta(t, p.ErrZ0*p.ErrZ0, z0, 1e-7)

	y1, z1 := p.ClusterErrors2(0, 0.3, 0.95, 0.5)
	assert.Greater(t, y1, y0)
	assert.Greater(t, z1, z0)
}

func TestClone(t *testing.T) {
	p := Default(1)[0]
	c := p.Clone()
	c.RowX[0] = -1
	assert.NotEqual(t, p.RowX[0], c.RowX[0])
}
