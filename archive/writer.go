package archive

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/tpctrack/blobstore"
	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/internal/compress"
	"github.com/hupe1980/tpctrack/internal/hash"
	"github.com/hupe1980/tpctrack/model"
	"github.com/hupe1980/tpctrack/persistence"
	"github.com/hupe1980/tpctrack/resultbuf"
)

// Event is one event handed to Writer.AddEvent.
type Event struct {
	ID   int
	Hits []model.Hit
	// Result is an encoded result buffer, or nil.
	Result []byte
	// Dropped is the number of tracks that did not fit into Result.
	Dropped int
	// Tracks are the reconstructed tracks with their hit indices, or nil.
	Tracks *persistence.Tracks
}

// Writer archives one run. It is safe for concurrent use.
type Writer struct {
	store blobstore.BlobStore
	opts  options
	dir   string

	mu        sync.Mutex
	m         Manifest
	committed bool
}

// NewWriter starts a new run with a fresh id and stores its settings.
func NewWriter(ctx context.Context, store blobstore.BlobStore, params []geometry.Param, opts ...Option) (*Writer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.New().String()
	w := &Writer{
		store: store,
		opts:  o,
		dir:   runDir(id),
		m: Manifest{
			Format:    FormatVersion,
			RunID:     id,
			CreatedAt: time.Now().UTC(),
			Labels:    o.labels,
		},
	}

	var buf bytes.Buffer
	if err := persistence.WriteSettings(&buf, params); err != nil {
		return nil, err
	}
	e, err := w.put(ctx, "settings.blk", o.inputCompression, buf.Bytes())
	if err != nil {
		return nil, err
	}
	w.m.Settings = e

	if o.logger != nil {
		o.logger.Info("archive run started", "run", id, "slices", len(params))
	}
	return w, nil
}

// RunID returns the id of the run.
func (w *Writer) RunID() string { return w.m.RunID }

// AddEvent stores the hits, the result buffer and the tracks of one event.
func (w *Writer) AddEvent(ctx context.Context, ev Event) error {
	w.mu.Lock()
	if w.committed {
		w.mu.Unlock()
		return ErrCommitted
	}
	if _, ok := w.m.Find(ev.ID); ok {
		w.mu.Unlock()
		return fmt.Errorf("archive: event %d already added", ev.ID)
	}
	w.mu.Unlock()

	entry := EventEntry{Event: ev.ID, Hits: len(ev.Hits), Dropped: ev.Dropped}

	var buf bytes.Buffer
	if err := persistence.WriteEvent(&buf, ev.Hits); err != nil {
		return err
	}
	in, err := w.put(ctx, eventName(ev.ID), w.opts.inputCompression, buf.Bytes())
	if err != nil {
		return err
	}
	entry.Input = in

	if ev.Result != nil {
		l, err := resultbuf.ReadLayout(ev.Result)
		if err != nil {
			return fmt.Errorf("event %d: %w", ev.ID, err)
		}
		entry.Tracks, entry.Clusters = l.Tracks, l.Clusters
		res, err := w.put(ctx, resultName(ev.ID), w.opts.resultCompression, ev.Result[:l.Size])
		if err != nil {
			return err
		}
		entry.Result = &res
	}

	if ev.Tracks != nil {
		buf.Reset()
		if err := persistence.WriteTracks(&buf, ev.Tracks); err != nil {
			return fmt.Errorf("event %d: %w", ev.ID, err)
		}
		tf, err := w.put(ctx, tracksName(ev.ID), w.opts.resultCompression, buf.Bytes())
		if err != nil {
			return err
		}
		entry.TrackFile = &tf
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.committed {
		return ErrCommitted
	}
	w.m.Events = append(w.m.Events, entry)
	return nil
}

// Commit writes the manifest and publishes the run through the CURRENT
// pointer. Commit-aware stores return blobstore.ErrConcurrentModification
// when another writer committed in between.
func (w *Writer) Commit(ctx context.Context) (*Manifest, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.committed {
		return nil, ErrCommitted
	}

	sort.Slice(w.m.Events, func(i, j int) bool { return w.m.Events[i].Event < w.m.Events[j].Event })
	data, err := w.opts.codec.Marshal(&w.m)
	if err != nil {
		return nil, fmt.Errorf("archive: encode manifest: %w", err)
	}
	name := w.dir + ManifestName
	if err := w.store.Put(ctx, name, data); err != nil {
		return nil, fmt.Errorf("archive: write manifest: %w", err)
	}
	if err := w.store.Put(ctx, blobstore.CurrentName, []byte(name)); err != nil {
		return nil, fmt.Errorf("archive: commit: %w", err)
	}
	w.committed = true

	if w.opts.logger != nil {
		w.opts.logger.Info("archive run committed", "run", w.m.RunID, "events", len(w.m.Events))
	}
	m := w.m
	return &m, nil
}

func (w *Writer) put(ctx context.Context, name string, c compress.Codec, data []byte) (Entry, error) {
	block, err := compress.Encode(c, data)
	if err != nil {
		return Entry{}, fmt.Errorf("archive: compress %s: %w", name, err)
	}
	if err := w.opts.rc.AcquireIO(ctx, len(block)); err != nil {
		return Entry{}, err
	}
	if err := w.store.Put(ctx, w.dir+name, block); err != nil {
		return Entry{}, fmt.Errorf("archive: put %s: %w", name, err)
	}
	return Entry{
		Name:        name,
		Size:        int64(len(block)),
		RawSize:     int64(len(data)),
		Compression: compress.Codec(block[0]).String(),
		Checksum:    hash.CRC32C(block),
	}, nil
}
