package resultbuf

import (
	"path/filepath"
	"testing"

	"github.com/hupe1980/tpctrack/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() ([]model.Track, []Cluster) {
	var tracks []model.Track
	var clusters []Cluster
	for i := 0; i < 4; i++ {
		tr := model.Track{FirstHitRef: len(clusters), NHits: 3 + i, Alpha: 0.1 * float32(i), DEdx: 50}
		tr.Param.X = 85 + float32(i)
		tr.Param.SignCosPhi = -1
		tr.Param.NDF = int32(2*tr.NHits - 5)
		tr.Param.P = [model.NumParams]float32{1, 2, 0.3, 0.4, 0.5}
		for k := range tr.Param.C {
			tr.Param.C[k] = float32(k)
		}
		tracks = append(tracks, tr)
		for j := 0; j < tr.NHits; j++ {
			clusters = append(clusters, Cluster{
				SourceID: model.MustSourceID(i, j, j+1),
				ExtID:    int32(100*i + j),
				Amp:      uint8(j),
			})
		}
	}
	return tracks, clusters
}

func TestEstimateSizeAndLayout(t *testing.T) {
	assert.Equal(t, HeaderSize, EstimateSize(0, 0))
	assert.Equal(t, 8+2*112+5*9, EstimateSize(2, 5))

	l := NewLayout(2, 5)
	assert.Equal(t, 8, l.TrackOffset)
	assert.Equal(t, 8+224, l.SourceOffset)
	assert.Equal(t, l.SourceOffset+20, l.ExtIDOffset)
	assert.Equal(t, l.ExtIDOffset+20, l.AmpOffset)
	assert.Equal(t, EstimateSize(2, 5), l.Size)
}

func TestEncodeView(t *testing.T) {
	tracks, clusters := sample()
	buf, err := Marshal(tracks, clusters)
	require.NoError(t, err)

	v, err := NewView(buf)
	require.NoError(t, err)
	require.Equal(t, len(tracks), v.TrackCount())
	require.Equal(t, len(clusters), v.ClusterCount())

	for i := range tracks {
		assert.Equal(t, tracks[i], v.Track(i))
		got := v.TrackClusters(i)
		want := clusters[tracks[i].FirstHitRef : tracks[i].FirstHitRef+tracks[i].NHits]
		assert.Equal(t, want, got)
	}
}

func TestEncode_Relocatable(t *testing.T) {
	tracks, clusters := sample()
	buf, err := Marshal(tracks, clusters)
	require.NoError(t, err)

	moved := append(make([]byte, 0, len(buf)+3), buf...)
	v, err := NewView(moved)
	require.NoError(t, err)
	assert.Equal(t, tracks[2], v.Track(2))
}

func TestEncode_Truncates(t *testing.T) {
	tracks, clusters := sample()
	full := EstimateSize(len(tracks), len(clusters))

	// Room for exactly the first two tracks plus a few spare bytes.
	budget := EstimateSize(2, tracks[0].NHits+tracks[1].NHits) + 7
	require.Less(t, budget, full)

	dst := make([]byte, budget)
	res, err := Encode(dst, tracks, clusters)
	require.ErrorIs(t, err, ErrInsufficientSpace)
	assert.Equal(t, 2, res.TracksWritten)
	assert.Equal(t, 2, res.TracksDropped)
	assert.LessOrEqual(t, res.BytesWritten, budget)
	assert.Less(t, res.TracksWritten, len(tracks))

	v, err := NewView(dst)
	require.NoError(t, err)
	assert.Equal(t, 2, v.TrackCount())
	assert.Equal(t, res.ClustersWritten, v.ClusterCount())
	assert.Equal(t, tracks[1], v.Track(1))
}

func TestEncode_TooSmallForHeader(t *testing.T) {
	tracks, clusters := sample()
	res, err := Encode(make([]byte, 4), tracks, clusters)
	require.ErrorIs(t, err, ErrInsufficientSpace)
	assert.Equal(t, 0, res.BytesWritten)
	assert.Equal(t, len(tracks), res.TracksDropped)
}

func TestEncode_CompactsClusterRefs(t *testing.T) {
	tracks, clusters := sample()
	subset := []model.Track{tracks[2]}
	buf, err := Marshal(subset, clusters)
	require.NoError(t, err)

	v, err := NewView(buf)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Track(0).FirstHitRef)
	assert.Equal(t, clusters[tracks[2].FirstHitRef], v.Cluster(0))
}

func TestEncode_BadReference(t *testing.T) {
	tracks, clusters := sample()
	tracks[0].NHits = len(clusters) + 1
	_, err := Encode(make([]byte, 1<<12), tracks, clusters)
	assert.Error(t, err)
}

func TestNewView_Corrupt(t *testing.T) {
	tracks, clusters := sample()
	buf, err := Marshal(tracks, clusters)
	require.NoError(t, err)

	_, err = NewView(buf[:len(buf)-1])
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = NewView(buf[:3])
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestPackAmplitude(t *testing.T) {
	tests := []struct {
		in   float32
		want uint8
	}{
		{-3, 0},
		{0, 0},
		{1.9, 0},
		{2, 1},
		{41, 10},
		{1e6, 255},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PackAmplitude(tt.in), "amp %v", tt.in)
	}
	assert.Equal(t, float32(40), UnpackAmplitude(10))
}

func TestOpenFile(t *testing.T) {
	tracks, clusters := sample()
	buf, err := Marshal(tracks, clusters)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "event.trk")
	require.NoError(t, WriteFile(path, buf))

	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, len(tracks), f.TrackCount())
	assert.Equal(t, tracks[3], f.Track(3))
	assert.Equal(t, clusters[5], f.Cluster(5))
}
