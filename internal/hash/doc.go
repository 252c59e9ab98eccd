// Package hash provides the CRC32-Castagnoli checksums used by archive
// blocks and manifests.
//
// One-shot:
//
//	sum := hash.CRC32C(data)
//	err := hash.Verify(data, sum)
//
// Streaming:
//
//	w := hash.NewWriter(dst)
//	io.Copy(w, src)
//	sum := w.Sum()
package hash
