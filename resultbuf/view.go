package resultbuf

import (
	"encoding/binary"

	"github.com/hupe1980/tpctrack/model"
)

// View reads a buffer in place.
type View struct {
	buf    []byte
	layout Layout
}

// NewView validates the header of b and returns a view over it. b is not
// copied.
func NewView(b []byte) (*View, error) {
	l, err := ReadLayout(b)
	if err != nil {
		return nil, err
	}
	return &View{buf: b[:l.Size], layout: l}, nil
}

// Layout returns the sub-array offsets.
func (v *View) Layout() Layout { return v.layout }

// Bytes returns the encoded buffer.
func (v *View) Bytes() []byte { return v.buf }

// TrackCount returns the number of track records.
func (v *View) TrackCount() int { return v.layout.Tracks }

// ClusterCount returns the number of clusters.
func (v *View) ClusterCount() int { return v.layout.Clusters }

// Track decodes track record i.
func (v *View) Track(i int) model.Track {
	off := v.layout.TrackOffset + i*TrackRecordSize
	return getTrack(v.buf[off : off+TrackRecordSize])
}

// SourceID returns the packed source id of cluster i.
func (v *View) SourceID(i int) model.SourceID {
	return model.SourceID(binary.LittleEndian.Uint32(v.buf[v.layout.SourceOffset+i*SourceIDSize:]))
}

// ExternalID returns the external id of cluster i.
func (v *View) ExternalID(i int) int32 {
	return int32(binary.LittleEndian.Uint32(v.buf[v.layout.ExtIDOffset+i*ExtIDSize:]))
}

// PackedAmp returns the packed amplitude of cluster i.
func (v *View) PackedAmp(i int) uint8 { return v.buf[v.layout.AmpOffset+i] }

// Cluster returns cluster i.
func (v *View) Cluster(i int) Cluster {
	return Cluster{SourceID: v.SourceID(i), ExtID: v.ExternalID(i), Amp: v.PackedAmp(i)}
}

// TrackClusters returns the clusters of track record i.
func (v *View) TrackClusters(i int) []Cluster {
	t := v.Track(i)
	out := make([]Cluster, t.NHits)
	for j := range out {
		out[j] = v.Cluster(t.FirstHitRef + j)
	}
	return out
}
