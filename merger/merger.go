package merger

import (
	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/model"
	"github.com/hupe1980/tpctrack/resultbuf"
	"github.com/hupe1980/tpctrack/slicetracker"
)

// Merger combines per-slice track segments into global tracks.
//
// The global tracker creates a fresh Merger for every event, calls
// SetSliceParam once, SetSliceData for every slice and then Reconstruct.
type Merger interface {
	Clear()
	SetSliceParam(param geometry.Param)
	SetSliceData(slice int, out *slicetracker.Output)
	Reconstruct() error
	Output() *Output
}

// Factory creates a Merger.
type Factory func() Merger

// Output is the compact merged result. Track i owns clusters
// [Track(i).FirstHitRef, Track(i).FirstHitRef+Track(i).NHits).
type Output struct {
	tracks   []model.Track
	clusters []resultbuf.Cluster
}

// Reset empties o keeping its capacity.
func (o *Output) Reset() {
	o.tracks = o.tracks[:0]
	o.clusters = o.clusters[:0]
}

// Append adds a track with its clusters. FirstHitRef and NHits of t are
// overwritten.
func (o *Output) Append(t model.Track, clusters ...resultbuf.Cluster) {
	t.FirstHitRef = len(o.clusters)
	t.NHits = len(clusters)
	o.tracks = append(o.tracks, t)
	o.clusters = append(o.clusters, clusters...)
}

// TrackCount returns the number of merged tracks.
func (o *Output) TrackCount() int { return len(o.tracks) }

// ClusterCount returns the number of clusters over all tracks.
func (o *Output) ClusterCount() int { return len(o.clusters) }

// Track returns merged track i.
func (o *Output) Track(i int) model.Track { return o.tracks[i] }

// ClusterSourceID returns the packed origin of cluster i.
func (o *Output) ClusterSourceID(i int) model.SourceID { return o.clusters[i].SourceID }

// ClusterExternalID returns the external id of cluster i.
func (o *Output) ClusterExternalID(i int) int32 { return o.clusters[i].ExtID }

// ClusterPackedAmplitude returns the quantized amplitude of cluster i.
func (o *Output) ClusterPackedAmplitude(i int) uint8 { return o.clusters[i].Amp }

// Tracks returns the merged tracks.
func (o *Output) Tracks() []model.Track { return o.tracks }

// Clusters returns the clusters of all tracks.
func (o *Output) Clusters() []resultbuf.Cluster { return o.clusters }
