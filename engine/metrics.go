package engine

import "time"

// MetricsObserver receives tracker events.
type MetricsObserver interface {
	// OnFindTracks is called when FindTracks returns.
	OnFindTracks(duration time.Duration, hits, tracks int, err error)

	// OnStage is called after each completed stage.
	OnStage(stage Stage, duration time.Duration)

	// OnRefit is called when RefitAll returns.
	OnRefit(duration time.Duration, attempted, accepted int)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnFindTracks(time.Duration, int, int, error) {}
func (NoopMetricsObserver) OnStage(Stage, time.Duration)               {}
func (NoopMetricsObserver) OnRefit(time.Duration, int, int)            {}
