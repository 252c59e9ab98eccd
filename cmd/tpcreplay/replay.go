package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/tpctrack"
	"github.com/hupe1980/tpctrack/archive"
	"github.com/hupe1980/tpctrack/blobstore"
	"github.com/hupe1980/tpctrack/boundary"
	"github.com/hupe1980/tpctrack/catalog"
	"github.com/hupe1980/tpctrack/codec"
	"github.com/hupe1980/tpctrack/engine"
	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/model"
	"github.com/hupe1980/tpctrack/persistence"
	"github.com/hupe1980/tpctrack/resource"
	"github.com/hupe1980/tpctrack/resultbuf"
	"golang.org/x/sync/errgroup"
)

// Summary is printed when a replay completes.
type Summary struct {
	RunID     string            `json:"run_id,omitempty"`
	Events    int64             `json:"events"`
	Failed    int64             `json:"failed"`
	Truncated int64             `json:"truncated"`
	Duration  time.Duration     `json:"duration_ns"`
	Stats     engine.Statistics `json:"stats"`
}

type job struct {
	id   int
	hits []model.Hit
}

type replay struct {
	cfg     Config
	logger  *tpctrack.Logger
	metrics tpctrack.MetricsCollector
	rc      *resource.Controller
	writer  *archive.Writer
	cat     *catalog.Catalog

	events    atomic.Int64
	failed    atomic.Int64
	truncated atomic.Int64

	mu    sync.Mutex
	stats engine.Statistics
}

// run replays all events of cfg.Input and writes a Summary to out.
func run(ctx context.Context, cfg Config, logger *tpctrack.Logger, mc tpctrack.MetricsCollector, out io.Writer) error {
	start := time.Now()
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	r := &replay{
		cfg:     cfg,
		logger:  logger,
		metrics: mc,
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes:   cfg.MemoryLimit,
			MaxWorkers:         int64(cfg.Trackers * workers),
			EventsPerSec:       cfg.EventsPerSec,
			IOLimitBytesPerSec: cfg.IOLimit,
		}),
	}

	in, err := openStore(ctx, cfg.Input, "")
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	params, err := r.readSettings(ctx, in)
	if err != nil {
		return err
	}
	events, err := blobstore.ReadAll(ctx, in, cfg.Events)
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}

	if cfg.Archive != "" {
		if r.writer, err = r.openArchive(ctx, params); err != nil {
			return err
		}
		r.logger = r.logger.WithRun(r.writer.RunID())
	}
	if cfg.Catalog != "" {
		if r.cat, err = catalog.Open(ctx, cfg.Catalog); err != nil {
			return err
		}
		defer r.cat.Close()
	}

	if err := r.replay(ctx, params, events, workers); err != nil {
		return err
	}

	sum := Summary{
		Events:    r.events.Load(),
		Failed:    r.failed.Load(),
		Truncated: r.truncated.Load(),
		Stats:     r.stats,
	}
	if r.writer != nil {
		m, err := r.writer.Commit(ctx)
		if err != nil {
			return err
		}
		sum.RunID = m.RunID
	}
	sum.Duration = time.Since(start)

	r.logger.InfoContext(ctx, "replay completed",
		"events", sum.Events,
		"failed", sum.Failed,
		"truncated", sum.Truncated,
		"tracks", sum.Stats.Tracks,
		"duration", sum.Duration,
	)
	data, err := codec.Default.Marshal(&sum)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}

func (r *replay) readSettings(ctx context.Context, in blobstore.BlobStore) ([]geometry.Param, error) {
	data, err := blobstore.ReadAll(ctx, in, r.cfg.Settings)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return persistence.ReadSettings(bytes.NewReader(data))
}

func (r *replay) openArchive(ctx context.Context, params []geometry.Param) (*archive.Writer, error) {
	store, err := openStore(ctx, r.cfg.Archive, r.cfg.DDBTable)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	input, result, _ := r.cfg.compression()
	return archive.NewWriter(ctx, store, params,
		archive.WithCompression(input, result),
		archive.WithLabels(map[string]string{
			"input":  r.cfg.Input,
			"events": r.cfg.Events,
		}),
		archive.WithResourceController(r.rc),
		archive.WithLogger(r.logger.Logger),
	)
}

func (r *replay) newComponent(params []geometry.Param, workers int) (*boundary.Component, error) {
	budget, _ := r.cfg.budget()
	policy, _ := r.cfg.duplicatePolicy()
	tr, err := tpctrack.New(params,
		tpctrack.WithWorkers(workers),
		tpctrack.WithRefit(r.cfg.Refit),
		tpctrack.WithEventBudget(budget),
		tpctrack.WithDuplicatePolicy(policy),
		tpctrack.WithGeometryCheck(!r.cfg.LenientGeometry),
		tpctrack.WithZCut(float32(r.cfg.ZCut)),
		tpctrack.WithResourceController(r.rc),
		tpctrack.WithMetricsCollector(r.metrics),
		tpctrack.WithLogger(r.logger),
	)
	if err != nil {
		return nil, err
	}
	return boundary.New(tr, r.logger), nil
}

func (r *replay) replay(ctx context.Context, params []geometry.Param, events []byte, workers int) error {
	comps := make([]*boundary.Component, r.cfg.Trackers)
	for i := range comps {
		c, err := r.newComponent(params, workers)
		if err != nil {
			return err
		}
		comps[i] = c
	}

	jobs := make(chan job)
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(jobs)
		dec := persistence.NewDecoder(resource.NewRateLimitedReader(ctx, bytes.NewReader(events), r.rc))
		for id := 0; ; id++ {
			hs, err := dec.Event()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("event %d: %w", id, err)
			}
			if err := r.rc.AcquireEvent(ctx); err != nil {
				return err
			}
			select {
			case jobs <- job{id: id, hits: hs}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	for _, comp := range comps {
		eg.Go(func() error {
			defer func() { r.mergeStats(comp.Tracker().Statistics()) }()
			out := make([]byte, r.cfg.OutputSize)
			for j := range jobs {
				if err := r.process(ctx, comp, out, j); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return eg.Wait()
}

func (r *replay) process(ctx context.Context, comp *boundary.Component, out []byte, j job) error {
	blocks, err := boundary.BlocksBySlice(j.hits)
	if err != nil {
		return fmt.Errorf("event %d: %w", j.id, err)
	}
	reply, err := comp.Process(ctx, j.id, blocks, out)
	r.events.Add(1)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, boundary.ErrMalformedBlock) {
			return err
		}
		// One bad event does not end the replay.
		r.failed.Add(1)
		r.logger.WithEvent(j.id).ErrorContext(ctx, "event failed", "error", err)
		return nil
	}
	if reply.Status == boundary.StatusInsufficientSpace {
		r.truncated.Add(1)
	}

	if r.writer != nil {
		tracks, err := comp.Tracker().Engine().SavedTracks()
		if err != nil {
			return err
		}
		err = r.writer.AddEvent(ctx, archive.Event{
			ID:      j.id,
			Hits:    j.hits,
			Result:  out[:reply.Size],
			Dropped: reply.Omitted,
			Tracks:  tracks,
		})
		if err != nil {
			return err
		}
	}
	if r.cat != nil {
		st := reply.Event.Stats
		err := r.cat.Record(ctx, catalog.Summary{
			RunID:       r.runID(),
			Event:       j.id,
			Hits:        reply.Event.Hits,
			DroppedHits: reply.Event.DroppedHits,
			Tracks:      reply.Event.Tracks,
			Clusters:    clusterCount(out[:reply.Size]),
			Omitted:     reply.Omitted,
			Truncated:   reply.Status == boundary.StatusInsufficientSpace,
			Partition:   st.StageTime[engine.StagePartition],
			Slices:      st.StageTime[engine.StageSlices],
			Merge:       st.StageTime[engine.StageMerge],
			Resolve:     st.StageTime[engine.StageResolve],
			SliceCPU:    st.SliceTime,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func clusterCount(buf []byte) int {
	l, err := resultbuf.ReadLayout(buf)
	if err != nil {
		return 0
	}
	return l.Clusters
}

func (r *replay) runID() string {
	if r.writer != nil {
		return r.writer.RunID()
	}
	return "local"
}

func (r *replay) mergeStats(s engine.Statistics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Merge(s)
}
