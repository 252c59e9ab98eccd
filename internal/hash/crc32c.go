package hash

import (
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// MismatchError is returned when a payload does not match its recorded
// checksum.
type MismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// Verify checks data against the expected CRC32C.
func Verify(data []byte, expected uint32) error {
	if actual := CRC32C(data); actual != expected {
		return &MismatchError{Expected: expected, Actual: actual}
	}
	return nil
}

// Writer forwards writes to w while computing their CRC32C.
type Writer struct {
	w io.Writer
	h hash.Hash32
	n int64
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, h: NewCRC32C()}
}

// Write implements io.Writer. Only bytes accepted by w are hashed.
func (cw *Writer) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.h.Write(p[:n])
	cw.n += int64(n)
	return n, err
}

// Sum returns the checksum of everything written so far.
func (cw *Writer) Sum() uint32 { return cw.h.Sum32() }

// Size returns the number of bytes written.
func (cw *Writer) Size() int64 { return cw.n }
