package engine

import "time"

// Stage identifies a FindTracks stage.
type Stage int

const (
	StagePartition Stage = iota
	StageSlices
	StageMerge
	StageResolve

	NumStages = 4
)

func (s Stage) String() string {
	switch s {
	case StagePartition:
		return "partition"
	case StageSlices:
		return "slices"
	case StageMerge:
		return "merge"
	case StageResolve:
		return "resolve"
	default:
		return "unknown"
	}
}

// Statistics accumulates over all events seen by a tracker. It is never
// reset by StartEvent.
type Statistics struct {
	Events    int64
	StageTime [NumStages]time.Duration
	// SliceTime is the summed run time of all slice trackers. With more than
	// one worker it exceeds StageTime[StageSlices].
	SliceTime time.Duration

	Hits        int64
	Tracks      int64
	DroppedHits int64

	Refits         int64
	RefitsAccepted int64
}

// Merge adds o to s.
func (s *Statistics) Merge(o Statistics) {
	s.Events += o.Events
	for i := range s.StageTime {
		s.StageTime[i] += o.StageTime[i]
	}
	s.SliceTime += o.SliceTime
	s.Hits += o.Hits
	s.Tracks += o.Tracks
	s.DroppedHits += o.DroppedHits
	s.Refits += o.Refits
	s.RefitsAccepted += o.RefitsAccepted
}

// Total returns the summed stage time.
func (s *Statistics) Total() time.Duration {
	var d time.Duration
	for _, v := range s.StageTime {
		d += v
	}
	return d
}

// Sub returns s minus an earlier snapshot o of the same tracker.
func (s Statistics) Sub(o Statistics) Statistics {
	s.Events -= o.Events
	for i := range s.StageTime {
		s.StageTime[i] -= o.StageTime[i]
	}
	s.SliceTime -= o.SliceTime
	s.Hits -= o.Hits
	s.Tracks -= o.Tracks
	s.DroppedHits -= o.DroppedHits
	s.Refits -= o.Refits
	s.RefitsAccepted -= o.RefitsAccepted
	return s
}
