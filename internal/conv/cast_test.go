package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToUint16(t *testing.T) {
	for _, tc := range []struct {
		in int
		ok bool
	}{
		{0, true},
		{math.MaxUint16, true},
		{math.MaxUint16 + 1, false},
		{-1, false},
	} {
		got, err := IntToUint16(tc.in)
		if tc.ok {
			require.NoError(t, err)
			assert.Equal(t, uint16(tc.in), got)
		} else {
			assert.ErrorIs(t, err, ErrOverflow)
		}
	}
}

func TestIntToUint32(t *testing.T) {
	got, err := IntToUint32(123)
	require.NoError(t, err)
	assert.Equal(t, uint32(123), got)

	_, err = IntToUint32(-5)
	assert.ErrorIs(t, err, ErrOverflow)
}
