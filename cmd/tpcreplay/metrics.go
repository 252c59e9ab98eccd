package main

import (
	"time"

	"github.com/hupe1980/tpctrack/resultbuf"
	"github.com/prometheus/client_golang/prometheus"
)

// promCollector implements tpctrack.MetricsCollector.
type promCollector struct {
	events        *prometheus.CounterVec
	eventLatency  prometheus.Histogram
	hits          prometheus.Counter
	tracks        prometheus.Counter
	stageLatency  *prometheus.HistogramVec
	refits        *prometheus.CounterVec
	resultBytes   prometheus.Histogram
	tracksOmitted prometheus.Counter
}

func newPromCollector(reg prometheus.Registerer) *promCollector {
	c := &promCollector{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tpctrack_events_total",
			Help: "Events reconstructed",
		}, []string{"status"}),
		eventLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tpctrack_event_duration_seconds",
			Help:    "Reconstruction time per event",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tpctrack_hits_total",
			Help: "Hits of reconstructed events",
		}),
		tracks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tpctrack_tracks_total",
			Help: "Tracks found",
		}),
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tpctrack_stage_duration_seconds",
			Help:    "Pipeline stage time per event",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		}, []string{"stage"}),
		refits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tpctrack_refits_total",
			Help: "Track refits by outcome",
		}, []string{"result"}),
		resultBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tpctrack_result_bytes",
			Help:    "Encoded result buffer size",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 14),
		}),
		tracksOmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tpctrack_tracks_omitted_total",
			Help: "Tracks dropped from full result buffers",
		}),
	}
	reg.MustRegister(c.events, c.eventLatency, c.hits, c.tracks, c.stageLatency, c.refits, c.resultBytes, c.tracksOmitted)
	return c
}

func (c *promCollector) RecordFindTracks(d time.Duration, hits, tracks int, err error) {
	if err != nil {
		c.events.WithLabelValues("error").Inc()
		return
	}
	c.events.WithLabelValues("success").Inc()
	c.eventLatency.Observe(d.Seconds())
	c.hits.Add(float64(hits))
	c.tracks.Add(float64(tracks))
}

func (c *promCollector) RecordStage(stage string, d time.Duration) {
	c.stageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

func (c *promCollector) RecordRefit(_ time.Duration, attempted, accepted int) {
	c.refits.WithLabelValues("accepted").Add(float64(accepted))
	c.refits.WithLabelValues("rejected").Add(float64(attempted - accepted))
}

func (c *promCollector) RecordEncode(res resultbuf.Result, _ error) {
	c.resultBytes.Observe(float64(res.BytesWritten))
	c.tracksOmitted.Add(float64(res.TracksDropped))
}
