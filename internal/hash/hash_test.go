package hash

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC32C_KnownValue(t *testing.T) {
	// RFC 3720 check value.
	assert.Equal(t, uint32(0xe3069283), CRC32C([]byte("123456789")))
}

func TestVerify(t *testing.T) {
	data := []byte("event 42")
	require.NoError(t, Verify(data, CRC32C(data)))

	err := Verify(data, 1)
	var m *MismatchError
	require.ErrorAs(t, err, &m)
	assert.Equal(t, uint32(1), m.Expected)
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.Write([]byte("1234"))
	require.NoError(t, err)
	_, err = w.Write([]byte("56789"))
	require.NoError(t, err)

	assert.Equal(t, CRC32C([]byte("123456789")), w.Sum())
	assert.Equal(t, int64(9), w.Size())
}
