// Package codec selects the JSON encoding of archive manifests, replay
// configuration and run statistics.
//
// Manifests record the codec name so that readers pick the matching codec.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "sonnet":
		return Sonnet{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

// Default is the codec used for newly written manifests.
var Default Codec = Sonnet{}
