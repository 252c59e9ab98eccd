package slicetracker

import (
	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/model"
)

// SliceTracker finds track segments within one slice.
//
// Implementations are used by a single goroutine at a time; distinct
// instances may run concurrently.
type SliceTracker interface {
	// Initialize fixes the slice geometry.
	Initialize(param geometry.Param) error
	// StartEvent discards all per-event state.
	StartEvent()
	// ReadEvent hands over the hits of one event. rowFirstHits[r] and
	// rowHitCounts[r] delimit row r in x, y and z. The slices stay owned
	// by the caller and are valid until the next StartEvent.
	ReadEvent(rowFirstHits, rowHitCounts []int, x, y, z []float32, n int)
	// Reconstruct runs the track finder.
	Reconstruct() error
	// OutputTrackCount returns the number of tracks found.
	OutputTrackCount() int
	// Output returns the tracks found. It is valid until the next
	// StartEvent.
	Output() *Output
}

// ClusterRef addresses a hit of the slice by row and position within the
// row. ExtID and Amp are filled in by the owner of the cluster data before
// the output is handed to a merger.
type ClusterRef struct {
	Row   int
	Index int
	ExtID int32
	Amp   float32
}

// Track is a slice-local track segment.
type Track struct {
	Param        model.TrackParam
	Alpha        float32
	FirstCluster int
	NClusters    int
}

// Output is the result of one slice.
type Output struct {
	Slice    int
	Tracks   []Track
	Clusters []ClusterRef
}

// TrackClusters returns the cluster references of track i.
func (o *Output) TrackClusters(i int) []ClusterRef {
	t := &o.Tracks[i]
	return o.Clusters[t.FirstCluster : t.FirstCluster+t.NClusters]
}

// NClusters returns the total number of cluster references.
func (o *Output) NClusters() int { return len(o.Clusters) }

// Reset empties o keeping its capacity.
func (o *Output) Reset(slice int) {
	o.Slice = slice
	o.Tracks = o.Tracks[:0]
	o.Clusters = o.Clusters[:0]
}
