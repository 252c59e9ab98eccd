package resource

import (
	"context"
	"io"
)

// RateLimitedWriter throttles writes through a Controller's IO limit.
type RateLimitedWriter struct {
	ctx context.Context
	w   io.Writer
	rc  *Controller
}

// NewRateLimitedWriter wraps w.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) *RateLimitedWriter {
	return &RateLimitedWriter{ctx: ctx, w: w, rc: rc}
}

func (w *RateLimitedWriter) Write(p []byte) (int, error) {
	if err := w.rc.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// RateLimitedReader throttles reads through a Controller's IO limit.
type RateLimitedReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewRateLimitedReader wraps r.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{ctx: ctx, r: r, rc: rc}
}

// Read charges the bytes actually read.
func (r *RateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		if werr := r.rc.AcquireIO(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
