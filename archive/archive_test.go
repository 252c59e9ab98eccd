package archive

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/tpctrack/blobstore"
	"github.com/hupe1980/tpctrack/codec"
	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/internal/compress"
	"github.com/hupe1980/tpctrack/internal/hash"
	"github.com/hupe1980/tpctrack/model"
	"github.com/hupe1980/tpctrack/persistence"
	"github.com/hupe1980/tpctrack/resource"
	"github.com/hupe1980/tpctrack/resultbuf"
	"github.com/hupe1980/tpctrack/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(t *testing.T) []byte {
	t.Helper()
	tr := model.Track{NHits: 2, Alpha: 0.3, DEdx: 40}
	tr.Param.X = 85.225
	tr.Param.SignCosPhi = 1
	clusters := []resultbuf.Cluster{
		{SourceID: model.MustSourceID(1, 0, 0), ExtID: 7, Amp: 10},
		{SourceID: model.MustSourceID(1, 1, 0), ExtID: 9, Amp: 12},
	}
	buf, err := resultbuf.Marshal([]model.Track{tr}, clusters)
	require.NoError(t, err)
	return buf
}

func sampleTracks() *persistence.Tracks {
	tr := model.Track{FirstHitRef: 0, NHits: 2, Alpha: 0.3, DEdx: 40}
	tr.Param.X = 85.225
	tr.Param.SignCosPhi = 1
	tr.Param.NDF = -1
	return &persistence.Tracks{
		SliceTime: 1500 * time.Microsecond,
		TrackHits: []int{4, 7},
		Tracks:    []model.Track{tr},
	}
}

func writeRun(t *testing.T, store blobstore.BlobStore, opts ...Option) (*Manifest, []geometry.Param, testutil.Event) {
	t.Helper()
	ctx := context.Background()
	params := geometry.Default(4)
	ev := testutil.NewRNG(3).Event(params, testutil.EventConfig{Tracks: 3, Rows: 20, Slices: []int{0, 2}, Noise: 5})

	w, err := NewWriter(ctx, store, params, opts...)
	require.NoError(t, err)
	require.NoError(t, w.AddEvent(ctx, Event{ID: 2, Hits: ev.Hits, Result: sampleResult(t), Dropped: 1, Tracks: sampleTracks()}))
	require.NoError(t, w.AddEvent(ctx, Event{ID: 1}))

	m, err := w.Commit(ctx)
	require.NoError(t, err)
	return m, params, ev
}

func TestWriterReader_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m, params, ev := writeRun(t, store, WithLabels(map[string]string{"source": "test"}))

	assert.Equal(t, FormatVersion, m.Format)
	require.Len(t, m.Events, 2)
	assert.Equal(t, 1, m.Events[0].Event, "events sorted by id")
	assert.Nil(t, m.Events[0].Result)

	r, err := Open(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, r.Manifest().RunID)
	assert.Equal(t, "test", r.Manifest().Labels["source"])

	got, err := r.Settings(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(params))
	assert.Equal(t, params[3].RowX, got[3].RowX)
	assert.Equal(t, params[3].ZMin, got[3].ZMin)

	hits, err := r.Event(ctx, 2)
	require.NoError(t, err)
	require.Len(t, hits, len(ev.Hits))
	for i := range hits {
		assert.Equal(t, ev.Hits[i].ID, hits[i].ID)
		assert.Equal(t, ev.Hits[i].Y, hits[i].Y)
	}

	empty, err := r.Event(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, empty)

	e, ok := r.Manifest().Find(2)
	require.True(t, ok)
	assert.Equal(t, 1, e.Tracks)
	assert.Equal(t, 2, e.Clusters)
	assert.Equal(t, 1, e.Dropped)

	v, err := r.Result(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, v.TrackCount())
	assert.Equal(t, int32(9), v.ExternalID(1))

	require.NotNil(t, e.TrackFile)
	tracks, err := r.Tracks(ctx, 2)
	require.NoError(t, err)
	want := sampleTracks()
	assert.Equal(t, want.SliceTime, tracks.SliceTime)
	assert.Equal(t, want.TrackHits, tracks.TrackHits)
	require.Len(t, tracks.Tracks, 1)
	assert.Equal(t, want.Tracks[0].NHits, tracks.Tracks[0].NHits)
	assert.Equal(t, want.Tracks[0].DEdx, tracks.Tracks[0].DEdx)

	_, err = r.Tracks(ctx, 1)
	assert.ErrorIs(t, err, ErrUnknownEvent)
	_, err = r.Result(ctx, 1)
	assert.ErrorIs(t, err, ErrUnknownEvent)
	_, err = r.Event(ctx, 5)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestWriter_CompressionOptions(t *testing.T) {
	store := blobstore.NewMemoryStore()
	m, _, _ := writeRun(t, store, WithCompression(compress.None, compress.None), WithCodec(codec.JSON{}))
	assert.Equal(t, "none", m.Settings.Compression)
	assert.Equal(t, m.Settings.RawSize+compress.HeaderSize, m.Settings.Size)

	r, err := OpenRun(context.Background(), store, m.RunID, WithCodec(codec.Sonnet{}))
	require.NoError(t, err)
	_, err = r.Settings(context.Background())
	require.NoError(t, err)
}

func TestWriter_Errors(t *testing.T) {
	ctx := context.Background()
	w, err := NewWriter(ctx, blobstore.NewMemoryStore(), geometry.Default(2))
	require.NoError(t, err)

	require.NoError(t, w.AddEvent(ctx, Event{ID: 1}))
	assert.Error(t, w.AddEvent(ctx, Event{ID: 1}), "duplicate event")
	assert.Error(t, w.AddEvent(ctx, Event{ID: 2, Result: []byte{1, 2}}), "corrupt result")

	_, err = w.Commit(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, w.AddEvent(ctx, Event{ID: 3}), ErrCommitted)
	_, err = w.Commit(ctx)
	assert.ErrorIs(t, err, ErrCommitted)
}

func TestWriter_ResourceController(t *testing.T) {
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 30})
	store := blobstore.NewMemoryStore()
	m, _, _ := writeRun(t, store, WithResourceController(rc))

	r, err := OpenRun(context.Background(), store, m.RunID, WithResourceController(rc))
	require.NoError(t, err)
	_, err = r.Event(context.Background(), 2)
	require.NoError(t, err)
}

func TestOpen_NoCommit(t *testing.T) {
	_, err := Open(context.Background(), blobstore.NewMemoryStore())
	assert.ErrorIs(t, err, ErrNoCommit)
}

func TestReader_DetectsCorruption(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m, _, _ := writeRun(t, store)

	name := runDir(m.RunID) + m.Events[1].Input.Name
	block, err := blobstore.ReadAll(ctx, store, name)
	require.NoError(t, err)
	block[len(block)-1] ^= 0xff
	require.NoError(t, store.Put(ctx, name, block))

	r, err := Open(ctx, store)
	require.NoError(t, err)
	_, err = r.Event(ctx, 2)
	require.ErrorIs(t, err, ErrCorrupt)
	var mismatch *hash.MismatchError
	assert.ErrorAs(t, err, &mismatch)

	require.NoError(t, store.Put(ctx, name, block[:10]))
	_, err = r.Event(ctx, 2)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestReader_FormatVersion(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m, _, _ := writeRun(t, store)

	for _, tc := range []struct {
		format string
		ok     bool
	}{
		{"v1.0.0", true},
		{"v1.9.3", true},
		{"v2.0.0", false},
		{"1.0", false},
	} {
		t.Run(tc.format, func(t *testing.T) {
			mm := *m
			mm.Format = tc.format
			require.NoError(t, store.Put(ctx, runDir(m.RunID)+ManifestName, codec.MustMarshal(nil, &mm)))

			_, err := Open(ctx, store)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrIncompatibleFormat)
			}
		})
	}
}

func TestListRuns(t *testing.T) {
	store := blobstore.NewMemoryStore()
	m1, _, _ := writeRun(t, store)
	m2, _, _ := writeRun(t, store)

	ids, err := ListRuns(context.Background(), store)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{m1.RunID, m2.RunID}, ids)

	r, err := Open(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, m2.RunID, r.Manifest().RunID, "last commit wins")
}
