// Package mmap maps persisted result buffers read-only into memory.
//
// A result buffer written by resultbuf is position independent, so a mapped
// file can be viewed in place without decoding:
//
//	m, err := mmap.Open("event-0001.trk")
//	if err != nil { ... }
//	defer m.Close()
//	view, err := resultbuf.NewView(m.Bytes())
//
// Unix systems use mmap(2) and madvise(2); Windows uses
// CreateFileMapping/MapViewOfFile and ignores access hints.
//
// Bytes and Region are safe for concurrent readers. Close is idempotent;
// callers must not touch returned slices after it.
package mmap
