// Package compress frames archive payloads as self-describing compressed
// blocks.
//
// Block layout (little endian):
//
//	[codec uint8][rawSize uint32][storedSize uint32][crc32c uint32][data...]
//
// The checksum covers the uncompressed payload. A block whose compressed
// form saves less than a tenth of the input is stored raw with codec None.
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/tpctrack/internal/hash"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the compression algorithm of a block.
type Codec uint8

const (
	// None stores the payload as is.
	None Codec = 0
	// LZ4 favours speed, used for per-event result buffers.
	LZ4 Codec = 1
	// Zstd favours ratio, used for settings and event replays.
	Zstd Codec = 2
)

// HeaderSize is the size of the block header.
const HeaderSize = 13

var (
	// ErrCorrupt is returned for blocks that cannot be decoded.
	ErrCorrupt = errors.New("compress: corrupt block")
	// ErrUnknownCodec is returned for an unsupported codec byte or name.
	ErrUnknownCodec = errors.New("compress: unknown codec")
)

// String returns the codec name.
func (c Codec) String() string {
	switch c {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Codec(%d)", uint8(c))
	}
}

// ParseCodec maps a codec name to its Codec.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownCodec, s)
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Encode returns data framed as a block compressed with c.
func Encode(c Codec, data []byte) ([]byte, error) {
	var packed []byte
	switch c {
	case None:
	case LZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, err
		}
		packed = dst[:n] // n == 0 means incompressible
	case Zstd:
		enc := getZstdEncoder()
		packed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, c)
	}

	if len(packed) == 0 || float64(len(packed)) > float64(len(data))*0.9 {
		c, packed = None, data
	}

	out := make([]byte, HeaderSize+len(packed))
	out[0] = byte(c)
	binary.LittleEndian.PutUint32(out[1:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[5:], uint32(len(packed)))
	binary.LittleEndian.PutUint32(out[9:], hash.CRC32C(data))
	copy(out[HeaderSize:], packed)
	return out, nil
}

// Decode returns the payload of a block and verifies its checksum.
func Decode(block []byte) ([]byte, error) {
	if len(block) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrCorrupt, len(block), HeaderSize)
	}
	c := Codec(block[0])
	raw := binary.LittleEndian.Uint32(block[1:])
	stored := binary.LittleEndian.Uint32(block[5:])
	sum := binary.LittleEndian.Uint32(block[9:])
	if uint64(len(block)-HeaderSize) != uint64(stored) {
		return nil, fmt.Errorf("%w: stored size %d, have %d", ErrCorrupt, stored, len(block)-HeaderSize)
	}
	data := block[HeaderSize:]

	var out []byte
	switch c {
	case None:
		if stored != raw {
			return nil, fmt.Errorf("%w: raw block size mismatch", ErrCorrupt)
		}
		out = data
	case LZ4:
		out = make([]byte, raw)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint32(n) != raw {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
	case Zstd:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(data, make([]byte, 0, raw))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint32(len(decoded)) != raw {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		out = decoded
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, c)
	}

	if err := hash.Verify(out, sum); err != nil {
		return nil, err
	}
	return out, nil
}
