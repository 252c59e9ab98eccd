package resultbuf

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/tpctrack/model"
)

// Cluster is the per-cluster payload of a merged track.
type Cluster struct {
	SourceID model.SourceID
	ExtID    int32
	Amp      uint8
}

// Result reports the outcome of Encode.
type Result struct {
	TracksWritten   int
	TracksDropped   int
	ClustersWritten int
	BytesWritten    int
}

// Encode writes tracks and their clusters into dst. Track i references
// clusters[FirstHitRef : FirstHitRef+NHits].
//
// If the full buffer does not fit, Encode writes the longest prefix of
// complete tracks that does and returns ErrInsufficientSpace together with
// the counts; a track is never written partially. Clusters are stored in
// track order, so FirstHitRef of a written record is its offset in the
// written cluster arrays.
func Encode(dst []byte, tracks []model.Track, clusters []Cluster) (Result, error) {
	for i := range tracks {
		t := &tracks[i]
		if t.FirstHitRef < 0 || t.NHits < 0 || t.FirstHitRef+t.NHits > len(clusters) {
			return Result{}, fmt.Errorf("track %d references clusters [%d,%d) of %d", i, t.FirstHitRef, t.FirstHitRef+t.NHits, len(clusters))
		}
	}

	nTracks, nClusters := fit(len(dst), tracks)
	if nTracks == 0 && len(dst) < HeaderSize {
		return Result{TracksDropped: len(tracks)}, ErrInsufficientSpace
	}

	l := NewLayout(nTracks, nClusters)
	binary.LittleEndian.PutUint32(dst[0:], uint32(nTracks))
	binary.LittleEndian.PutUint32(dst[4:], uint32(nClusters))

	ref := 0
	for i := 0; i < nTracks; i++ {
		t := tracks[i]
		src := clusters[t.FirstHitRef : t.FirstHitRef+t.NHits]
		t.FirstHitRef = ref
		putTrack(dst[l.TrackOffset+i*TrackRecordSize:], &t)
		for j, c := range src {
			k := ref + j
			binary.LittleEndian.PutUint32(dst[l.SourceOffset+k*SourceIDSize:], uint32(c.SourceID))
			binary.LittleEndian.PutUint32(dst[l.ExtIDOffset+k*ExtIDSize:], uint32(c.ExtID))
			dst[l.AmpOffset+k] = c.Amp
		}
		ref += len(src)
	}

	res := Result{
		TracksWritten:   nTracks,
		TracksDropped:   len(tracks) - nTracks,
		ClustersWritten: nClusters,
		BytesWritten:    l.Size,
	}
	if res.TracksDropped > 0 {
		return res, ErrInsufficientSpace
	}
	return res, nil
}

// Marshal encodes into a newly allocated buffer of the exact size.
func Marshal(tracks []model.Track, clusters []Cluster) ([]byte, error) {
	n := 0
	for i := range tracks {
		n += tracks[i].NHits
	}
	buf := make([]byte, EstimateSize(len(tracks), n))
	if _, err := Encode(buf, tracks, clusters); err != nil {
		return nil, err
	}
	return buf, nil
}

// fit returns how many leading tracks, and their clusters, fit in budget
// bytes.
func fit(budget int, tracks []model.Track) (int, int) {
	nClusters := 0
	for i := range tracks {
		c := nClusters + tracks[i].NHits
		if EstimateSize(i+1, c) > budget {
			return i, nClusters
		}
		nClusters = c
	}
	return len(tracks), nClusters
}

func putTrack(b []byte, t *model.Track) {
	le := binary.LittleEndian
	p := &t.Param
	le.PutUint32(b[0:], uint32(int32(t.FirstHitRef)))
	le.PutUint32(b[4:], uint32(int32(t.NHits)))
	le.PutUint32(b[8:], math.Float32bits(t.Alpha))
	le.PutUint32(b[12:], math.Float32bits(t.DEdx))
	le.PutUint32(b[16:], math.Float32bits(p.X))
	le.PutUint32(b[20:], math.Float32bits(p.SignCosPhi))
	le.PutUint32(b[24:], math.Float32bits(p.Chi2))
	le.PutUint32(b[28:], uint32(p.NDF))
	off := 32
	for _, v := range p.P {
		le.PutUint32(b[off:], math.Float32bits(v))
		off += 4
	}
	for _, v := range p.C {
		le.PutUint32(b[off:], math.Float32bits(v))
		off += 4
	}
}

func getTrack(b []byte) model.Track {
	le := binary.LittleEndian
	var t model.Track
	p := &t.Param
	t.FirstHitRef = int(int32(le.Uint32(b[0:])))
	t.NHits = int(int32(le.Uint32(b[4:])))
	t.Alpha = math.Float32frombits(le.Uint32(b[8:]))
	t.DEdx = math.Float32frombits(le.Uint32(b[12:]))
	p.X = math.Float32frombits(le.Uint32(b[16:]))
	p.SignCosPhi = math.Float32frombits(le.Uint32(b[20:]))
	p.Chi2 = math.Float32frombits(le.Uint32(b[24:]))
	p.NDF = int32(le.Uint32(b[28:]))
	off := 32
	for i := range p.P {
		p.P[i] = math.Float32frombits(le.Uint32(b[off:]))
		off += 4
	}
	for i := range p.C {
		p.C[i] = math.Float32frombits(le.Uint32(b[off:]))
		off += 4
	}
	return t
}
