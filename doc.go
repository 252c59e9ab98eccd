// Package tpctrack reconstructs charged-particle tracks in a time
// projection chamber from the clusters of one event at a time.
//
// The chamber is divided into slices. A Tracker partitions the hits of an
// event by slice, reconstructs every slice concurrently with a slice
// tracker, merges the slice tracks into global tracks, resolves their
// clusters back to the input hits and optionally refits them. Results
// are encoded into a compact, relocatable buffer (package resultbuf).
//
// # Quick Start
//
//	params := geometry.Default(geometry.DefaultSlices)
//	tr, err := tpctrack.New(params,
//	    tpctrack.WithWorkers(8),
//	    tpctrack.WithRefit(true),
//	    tpctrack.WithLogger(tpctrack.NewJSONLogger(slog.LevelInfo)),
//	)
//	if err != nil {
//	    return err
//	}
//	res, err := tr.Event(ctx, eventID, hits)
//	buf := make([]byte, tr.EstimateSize())
//	enc, err := tr.Encode(buf)
//
// Encode never writes a partial track: when the destination is too small
// it keeps the longest prefix of complete tracks and returns
// ErrInsufficientSpace together with the number of omitted tracks.
//
// # Replay
//
// Package archive stores settings, events and result buffers of replay
// runs in any blobstore.BlobStore (local, S3, MinIO, Azure); package
// catalog keeps per-event summaries in SQLite. cmd/tpcreplay ties them
// together.
package tpctrack
