package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manifest struct {
	Format string            `json:"format"`
	Events []int             `json:"events"`
	Tags   map[string]string `json:"tags,omitempty"`
}

func TestCodecsInterop(t *testing.T) {
	in := manifest{Format: "v1.2.0", Events: []int{1, 2, 3}, Tags: map[string]string{"run": "a"}}

	for _, enc := range []Codec{JSON{}, Sonnet{}} {
		for _, dec := range []Codec{JSON{}, Sonnet{}} {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				var out manifest
				require.NoError(t, dec.Unmarshal(MustMarshal(enc, in), &out))
				assert.Equal(t, in, out)
			})
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "sonnet"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("go-json")
	assert.False(t, ok)
	assert.Equal(t, "sonnet", Default.Name())
}
