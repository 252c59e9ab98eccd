package tpctrack

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/tpctrack/engine"
	"github.com/hupe1980/tpctrack/resultbuf"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus; cmd/tpcreplay ships such a collector.
type MetricsCollector interface {
	// RecordFindTracks is called after each reconstruction.
	RecordFindTracks(duration time.Duration, hits, tracks int, err error)

	// RecordStage is called after each completed pipeline stage.
	RecordStage(stage string, duration time.Duration)

	// RecordRefit is called after each refit pass.
	RecordRefit(duration time.Duration, attempted, accepted int)

	// RecordEncode is called after each result encoding.
	RecordEncode(res resultbuf.Result, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFindTracks(time.Duration, int, int, error) {}
func (NoopMetricsCollector) RecordStage(string, time.Duration)               {}
func (NoopMetricsCollector) RecordRefit(time.Duration, int, int)             {}
func (NoopMetricsCollector) RecordEncode(resultbuf.Result, error)            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	EventCount      atomic.Int64
	EventErrors     atomic.Int64
	EventTotalNanos atomic.Int64
	HitCount        atomic.Int64
	TrackCount      atomic.Int64
	StageNanos      [engine.NumStages]atomic.Int64
	RefitAttempted  atomic.Int64
	RefitAccepted   atomic.Int64
	EncodeCount     atomic.Int64
	EncodeBytes     atomic.Int64
	TracksOmitted   atomic.Int64
}

// RecordFindTracks implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFindTracks(duration time.Duration, hits, tracks int, err error) {
	b.EventCount.Add(1)
	b.EventTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EventErrors.Add(1)
		return
	}
	b.HitCount.Add(int64(hits))
	b.TrackCount.Add(int64(tracks))
}

// RecordStage implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStage(stage string, duration time.Duration) {
	for s := engine.Stage(0); s < engine.NumStages; s++ {
		if s.String() == stage {
			b.StageNanos[s].Add(duration.Nanoseconds())
			return
		}
	}
}

// RecordRefit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRefit(_ time.Duration, attempted, accepted int) {
	b.RefitAttempted.Add(int64(attempted))
	b.RefitAccepted.Add(int64(accepted))
}

// RecordEncode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEncode(res resultbuf.Result, _ error) {
	b.EncodeCount.Add(1)
	b.EncodeBytes.Add(int64(res.BytesWritten))
	b.TracksOmitted.Add(int64(res.TracksDropped))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		EventCount:     b.EventCount.Load(),
		EventErrors:    b.EventErrors.Load(),
		HitCount:       b.HitCount.Load(),
		TrackCount:     b.TrackCount.Load(),
		RefitAttempted: b.RefitAttempted.Load(),
		RefitAccepted:  b.RefitAccepted.Load(),
		EncodeCount:    b.EncodeCount.Load(),
		EncodeBytes:    b.EncodeBytes.Load(),
		TracksOmitted:  b.TracksOmitted.Load(),
	}
	if s.EventCount > 0 {
		s.EventAvgNanos = b.EventTotalNanos.Load() / s.EventCount
	}
	for i := range b.StageNanos {
		s.StageNanos[i] = b.StageNanos[i].Load()
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EventCount     int64
	EventErrors    int64
	EventAvgNanos  int64
	HitCount       int64
	TrackCount     int64
	StageNanos     [engine.NumStages]int64
	RefitAttempted int64
	RefitAccepted  int64
	EncodeCount    int64
	EncodeBytes    int64
	TracksOmitted  int64
}

// observer forwards engine events to a MetricsCollector.
type observer struct {
	mc MetricsCollector
}

func (o observer) OnFindTracks(d time.Duration, hits, tracks int, err error) {
	o.mc.RecordFindTracks(d, hits, tracks, err)
}

func (o observer) OnStage(stage engine.Stage, d time.Duration) {
	o.mc.RecordStage(stage.String(), d)
}

func (o observer) OnRefit(d time.Duration, attempted, accepted int) {
	o.mc.RecordRefit(d, attempted, accepted)
}
