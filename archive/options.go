package archive

import (
	"log/slog"

	"github.com/hupe1980/tpctrack/codec"
	"github.com/hupe1980/tpctrack/internal/compress"
	"github.com/hupe1980/tpctrack/resource"
)

type options struct {
	codec             codec.Codec
	inputCompression  compress.Codec
	resultCompression compress.Codec
	labels            map[string]string
	rc                *resource.Controller
	logger            *slog.Logger
}

func defaultOptions() options {
	return options{
		codec:             codec.Default,
		inputCompression:  compress.Zstd,
		resultCompression: compress.LZ4,
	}
}

// Option configures a Writer or Reader.
type Option func(*options)

// WithCodec sets the manifest codec.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithCompression sets the block compression of inputs (settings and
// events) and of result buffers.
func WithCompression(input, result compress.Codec) Option {
	return func(o *options) {
		o.inputCompression = input
		o.resultCompression = result
	}
}

// WithLabels attaches free-form labels to the manifest.
func WithLabels(labels map[string]string) Option {
	return func(o *options) {
		o.labels = labels
	}
}

// WithResourceController throttles blob transfers by the controller's IO
// limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
