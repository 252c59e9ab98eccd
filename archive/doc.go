// Package archive stores replay runs in a blobstore.
//
// A run is a set of immutable blobs under runs/<run id>/:
//
//	settings.blk       slice layout, text format, zstd
//	event-NNNNNN.blk   hits of one event, text format, zstd
//	result-NNNNNN.blk  encoded result buffer of one event, lz4
//	MANIFEST.json      entries for every blob above
//
// Every block is framed by internal/compress and additionally checksummed
// as stored in the manifest. A run becomes visible to Open once its
// manifest name is written to blobstore.CurrentName.
package archive
