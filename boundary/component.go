// Package boundary adapts the tracker to a framework that delivers raw
// per-patch cluster blocks and expects the result in a fixed-size output
// region.
package boundary

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/tpctrack"
	"github.com/hupe1980/tpctrack/model"
)

// Status is the outcome of Process.
type Status int

const (
	// StatusOK means the complete result was written.
	StatusOK Status = iota
	// StatusInsufficientSpace means only a prefix of complete tracks fit.
	StatusInsufficientSpace
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInsufficientSpace:
		return "insufficient-space"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Reply describes the result written by Process.
type Reply struct {
	Status Status
	// Size is the number of bytes written to the output region.
	Size   int
	Tracks int
	// Omitted counts tracks that did not fit.
	Omitted int
	// Event summarizes the reconstruction.
	Event tpctrack.EventResult
}

// Component runs one tracker on framework events.
//
// Memory admission belongs to the tracker: give it a resource.Controller
// with tpctrack.WithResourceController and every event reserves its hits
// once.
type Component struct {
	tr     *tpctrack.Tracker
	hits   []model.Hit
	logger *tpctrack.Logger
}

// New creates a component around tr.
func New(tr *tpctrack.Tracker, logger *tpctrack.Logger) *Component {
	if logger == nil {
		logger = tpctrack.NoopLogger()
	}
	return &Component{tr: tr, logger: logger}
}

// Tracker returns the wrapped tracker.
func (c *Component) Tracker() *tpctrack.Tracker { return c.tr }

// Process decodes blocks, reconstructs event and encodes the result into
// out. Running out of space is reported through the Reply, not as an
// error.
func (c *Component) Process(ctx context.Context, event int, blocks []Block, out []byte) (Reply, error) {
	c.hits = c.hits[:0]
	for _, b := range blocks {
		var err error
		if c.hits, err = b.AppendHits(c.hits); err != nil {
			return Reply{}, fmt.Errorf("event %d: %w", event, err)
		}
	}

	ev, err := c.tr.Event(ctx, event, c.hits)
	if err != nil {
		return Reply{}, err
	}

	res, err := c.tr.Encode(ctx, out)
	reply := Reply{Size: res.BytesWritten, Tracks: res.TracksWritten, Omitted: res.TracksDropped, Event: ev}
	switch {
	case errors.Is(err, tpctrack.ErrInsufficientSpace):
		reply.Status = StatusInsufficientSpace
		c.logger.WithEvent(event).Warn("output region too small",
			"size", len(out),
			"needed", c.tr.EstimateSize(),
			"omitted", reply.Omitted,
		)
	case err != nil:
		return Reply{}, err
	}
	return reply, nil
}
