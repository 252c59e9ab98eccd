package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/tpctrack/blobstore"
	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/internal/compress"
	"github.com/hupe1980/tpctrack/internal/hash"
	"github.com/hupe1980/tpctrack/model"
	"github.com/hupe1980/tpctrack/persistence"
	"github.com/hupe1980/tpctrack/resultbuf"
)

// Reader reads one committed run.
type Reader struct {
	store blobstore.BlobStore
	opts  options
	dir   string
	m     *Manifest
}

// Open opens the run published through the CURRENT pointer.
func Open(ctx context.Context, store blobstore.BlobStore, opts ...Option) (*Reader, error) {
	cur, err := blobstore.ReadAll(ctx, store, blobstore.CurrentName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNoCommit
		}
		return nil, err
	}
	name := strings.TrimSpace(string(cur))
	return openManifest(ctx, store, name, opts)
}

// OpenRun opens a run by id, whether or not it is the current one.
func OpenRun(ctx context.Context, store blobstore.BlobStore, runID string, opts ...Option) (*Reader, error) {
	return openManifest(ctx, store, runDir(runID)+ManifestName, opts)
}

// ListRuns returns the ids of all runs with a manifest.
func ListRuns(ctx context.Context, store blobstore.BlobStore) ([]string, error) {
	names, err := store.List(ctx, "runs/")
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, n := range names {
		rest, ok := strings.CutPrefix(n, "runs/")
		if !ok {
			continue
		}
		if id, ok := strings.CutSuffix(rest, "/"+ManifestName); ok && !strings.Contains(id, "/") {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func openManifest(ctx context.Context, store blobstore.BlobStore, name string, opts []Option) (*Reader, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	dir, ok := strings.CutSuffix(name, ManifestName)
	if !ok {
		return nil, fmt.Errorf("%w: manifest name %q", ErrCorrupt, name)
	}
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("archive: read manifest: %w", err)
	}
	m := new(Manifest)
	if err := o.codec.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", ErrCorrupt, err)
	}
	if err := m.CheckFormat(); err != nil {
		return nil, err
	}
	return &Reader{store: store, opts: o, dir: dir, m: m}, nil
}

// Manifest returns the manifest of the run.
func (r *Reader) Manifest() *Manifest { return r.m }

// Settings returns the slice layout of the run.
func (r *Reader) Settings(ctx context.Context) ([]geometry.Param, error) {
	data, err := r.read(ctx, r.m.Settings)
	if err != nil {
		return nil, err
	}
	return persistence.ReadSettings(bytes.NewReader(data))
}

// Event returns the hits of event.
func (r *Reader) Event(ctx context.Context, event int) ([]model.Hit, error) {
	e, ok := r.m.Find(event)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEvent, event)
	}
	data, err := r.read(ctx, e.Input)
	if err != nil {
		return nil, err
	}
	return persistence.ReadEvent(bytes.NewReader(data))
}

// Result returns a view of the result buffer of event. Events archived
// without a result yield ErrUnknownEvent.
func (r *Reader) Result(ctx context.Context, event int) (*resultbuf.View, error) {
	e, ok := r.m.Find(event)
	if !ok || e.Result == nil {
		return nil, fmt.Errorf("%w: no result for %d", ErrUnknownEvent, event)
	}
	data, err := r.read(ctx, *e.Result)
	if err != nil {
		return nil, err
	}
	return resultbuf.NewView(data)
}

// Tracks returns the archived tracks of event. Events archived without
// tracks yield ErrUnknownEvent.
func (r *Reader) Tracks(ctx context.Context, event int) (*persistence.Tracks, error) {
	e, ok := r.m.Find(event)
	if !ok || e.TrackFile == nil {
		return nil, fmt.Errorf("%w: no tracks for %d", ErrUnknownEvent, event)
	}
	data, err := r.read(ctx, *e.TrackFile)
	if err != nil {
		return nil, err
	}
	t, err := persistence.ReadTracks(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, e.TrackFile.Name, err)
	}
	return t, nil
}

func (r *Reader) read(ctx context.Context, e Entry) ([]byte, error) {
	if err := r.opts.rc.AcquireIO(ctx, int(e.Size)); err != nil {
		return nil, err
	}
	block, err := blobstore.ReadAll(ctx, r.store, r.dir+e.Name)
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", e.Name, err)
	}
	if int64(len(block)) != e.Size {
		return nil, fmt.Errorf("%w: %s: size %d, manifest %d", ErrCorrupt, e.Name, len(block), e.Size)
	}
	if err := hash.Verify(block, e.Checksum); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, e.Name, err)
	}
	data, err := compress.Decode(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, e.Name, err)
	}
	return data, nil
}
