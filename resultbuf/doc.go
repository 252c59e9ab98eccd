// Package resultbuf defines the flat binary result buffer handed to
// downstream consumers.
//
// A buffer is one contiguous little-endian byte slice:
//
//	header     trackCount int32, clusterCount int32
//	tracks     trackCount records of TrackRecordSize bytes
//	sourceIDs  clusterCount uint32 packed (slice, row, cluster) ids
//	extIDs     clusterCount int32 external cluster ids
//	amps       clusterCount uint8 quantized amplitudes
//
// Sub-array offsets are derived from the header counts only, so a buffer
// can be copied, persisted or memory-mapped and viewed in place.
package resultbuf
