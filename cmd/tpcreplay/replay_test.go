package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/tpctrack"
	"github.com/hupe1980/tpctrack/archive"
	"github.com/hupe1980/tpctrack/blobstore"
	"github.com/hupe1980/tpctrack/catalog"
	"github.com/hupe1980/tpctrack/codec"
	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/persistence"
	"github.com/hupe1980/tpctrack/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil/promlint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, dir string, params []geometry.Param, events int) {
	t.Helper()
	require.NoError(t, persistence.SaveSettings(filepath.Join(dir, "settings.txt"), params))

	rng := testutil.NewRNG(17)
	var buf bytes.Buffer
	for i := 0; i < events; i++ {
		ev := rng.Event(params, testutil.EventConfig{Tracks: 2 + i, Rows: 30, Slices: []int{0, 3}, Noise: 4})
		require.NoError(t, persistence.WriteEvent(&buf, ev.Hits))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.txt"), buf.Bytes(), 0o644))
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	in, arch := t.TempDir(), t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	writeInput(t, in, geometry.Default(8), 5)

	cfg, err := loadConfig([]string{
		"-input", in,
		"-archive", arch,
		"-catalog", dbPath,
		"-trackers", "2",
		"-workers", "2",
		"-refit",
		"-output-size", "1500",
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	var out bytes.Buffer
	require.NoError(t, run(ctx, cfg, tpctrack.NoopLogger(), newPromCollector(reg), &out))

	var sum Summary
	require.NoError(t, codec.Default.Unmarshal(out.Bytes(), &sum))
	assert.Equal(t, int64(5), sum.Events)
	assert.Zero(t, sum.Failed)
	assert.Equal(t, int64(5), sum.Stats.Events)
	assert.Positive(t, sum.Truncated, "small output size truncates the larger events")

	r, err := archive.Open(ctx, blobstore.NewLocalStore(arch))
	require.NoError(t, err)
	assert.Equal(t, sum.RunID, r.Manifest().RunID)
	assert.Len(t, r.Manifest().Events, 5)
	for _, e := range r.Manifest().Events {
		require.NotNil(t, e.Result)
		assert.LessOrEqual(t, e.Result.RawSize, int64(1500))
		require.NotNil(t, e.TrackFile)
		tracks, err := r.Tracks(ctx, e.Event)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(tracks.Tracks), e.Tracks, "the tracks file is never truncated")
		assert.Positive(t, tracks.SliceTime)
	}

	cat, err := catalog.Open(ctx, dbPath)
	require.NoError(t, err)
	defer cat.Close()
	runs, err := cat.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, sum.RunID, runs[0].RunID)
	assert.Equal(t, 5, runs[0].Events)
	assert.Equal(t, int(sum.Truncated), runs[0].Truncated)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
	problems, err := promlint.NewWithMetricFamilies(mfs).Lint()
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"trackers": 3, "budget": "20ms", "duplicates": "reject"}`), 0o644))

	cfg, err := loadConfig([]string{"-config", path, "-trackers", "5"})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Trackers, "flags override the file")
	assert.Equal(t, "20ms", cfg.Budget)
	p, err := cfg.duplicatePolicy()
	require.NoError(t, err)
	assert.Equal(t, tpctrack.RejectDuplicates, p)

	cfg, err = loadConfig([]string{"--config=" + path})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Trackers)

	cfg, err = loadConfig([]string{"-z-cut", "250"})
	require.NoError(t, err)
	assert.Equal(t, 250.0, cfg.ZCut)

	for _, args := range [][]string{
		{"-trackers", "0"},
		{"-budget", "soon"},
		{"-z-cut", "-1"},
		{"-duplicates", "maybe"},
		{"-input-compression", "brotli"},
		{"-log-level", "loud"},
	} {
		_, err := loadConfig(args)
		assert.Error(t, err, args)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	s, err := openStore(ctx, "mem://", "")
	require.NoError(t, err)
	assert.IsType(t, &blobstore.MemoryStore{}, s)

	s, err = openStore(ctx, "file://"+t.TempDir(), "")
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, s)

	_, err = openStore(ctx, "ftp://host/x", "")
	assert.Error(t, err)
	_, err = openStore(ctx, t.TempDir(), "commits")
	assert.Error(t, err, "ddb commits need s3")
}
