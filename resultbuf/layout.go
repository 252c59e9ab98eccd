package resultbuf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Record sizes in bytes.
const (
	HeaderSize      = 8
	TrackRecordSize = 28 * 4
	SourceIDSize    = 4
	ExtIDSize       = 4
	PackedAmpSize   = 1
	ClusterSize     = SourceIDSize + ExtIDSize + PackedAmpSize
)

// AmplitudeQuantum is the charge represented by one packed amplitude step.
const AmplitudeQuantum = 4.0

var (
	// ErrInsufficientSpace is returned by Encode when the destination cannot
	// hold every track. The Result reports what was written.
	ErrInsufficientSpace = errors.New("insufficient space for result buffer")

	// ErrCorrupt is returned by NewView for a buffer shorter than its
	// header counts require.
	ErrCorrupt = errors.New("corrupt result buffer")
)

// EstimateSize returns the exact encoded size of tracks tracks referencing
// clusters clusters.
func EstimateSize(tracks, clusters int) int {
	return HeaderSize + tracks*TrackRecordSize + clusters*ClusterSize
}

// Layout holds the byte offsets of every sub-array of a buffer.
type Layout struct {
	Tracks       int
	Clusters     int
	TrackOffset  int
	SourceOffset int
	ExtIDOffset  int
	AmpOffset    int
	Size         int
}

// NewLayout derives the layout of a buffer with the given counts.
func NewLayout(tracks, clusters int) Layout {
	l := Layout{Tracks: tracks, Clusters: clusters, TrackOffset: HeaderSize}
	l.SourceOffset = l.TrackOffset + tracks*TrackRecordSize
	l.ExtIDOffset = l.SourceOffset + clusters*SourceIDSize
	l.AmpOffset = l.ExtIDOffset + clusters*ExtIDSize
	l.Size = l.AmpOffset + clusters*PackedAmpSize
	return l
}

// ReadLayout derives the layout from the header of b.
func ReadLayout(b []byte) (Layout, error) {
	if len(b) < HeaderSize {
		return Layout{}, fmt.Errorf("%w: %d bytes, header needs %d", ErrCorrupt, len(b), HeaderSize)
	}
	tracks := int32(binary.LittleEndian.Uint32(b[0:]))
	clusters := int32(binary.LittleEndian.Uint32(b[4:]))
	if tracks < 0 || clusters < 0 {
		return Layout{}, fmt.Errorf("%w: negative counts %d/%d", ErrCorrupt, tracks, clusters)
	}
	l := NewLayout(int(tracks), int(clusters))
	if l.Size > len(b) {
		return Layout{}, fmt.Errorf("%w: %d bytes, counts need %d", ErrCorrupt, len(b), l.Size)
	}
	return l, nil
}

// PackAmplitude quantizes a cluster amplitude into one byte.
func PackAmplitude(a float32) uint8 {
	q := math.Round(float64(a) / AmplitudeQuantum)
	if q <= 0 || math.IsNaN(q) {
		return 0
	}
	if q >= math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(q)
}

// UnpackAmplitude returns the amplitude a packed value represents.
func UnpackAmplitude(p uint8) float32 { return float32(p) * AmplitudeQuantum }
