package boundary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hupe1980/tpctrack/internal/conv"
	"github.com/hupe1980/tpctrack/model"
)

// Wire layout of a cluster block (little endian):
//
//	header: [slice uint16][patch uint16][count uint32]
//	record: [id int32][row uint16][flags uint16][x y z errY errZ amp float32]
const (
	BlockHeaderSize = 8
	RecordSize      = 32
)

// ErrMalformedBlock is returned for cluster blocks that do not match their
// header.
var ErrMalformedBlock = errors.New("boundary: malformed cluster block")

// Block is the raw cluster block of one slice readout patch.
type Block struct {
	Data []byte
}

// BlockHeader identifies the origin of a block.
type BlockHeader struct {
	Slice int
	Patch int
	Count int
}

// ReadHeader decodes and checks the header of b.
func (b Block) ReadHeader() (BlockHeader, error) {
	if len(b.Data) < BlockHeaderSize {
		return BlockHeader{}, fmt.Errorf("%w: %d bytes", ErrMalformedBlock, len(b.Data))
	}
	h := BlockHeader{
		Slice: int(binary.LittleEndian.Uint16(b.Data[0:])),
		Patch: int(binary.LittleEndian.Uint16(b.Data[2:])),
		Count: int(binary.LittleEndian.Uint32(b.Data[4:])),
	}
	if want := BlockHeaderSize + h.Count*RecordSize; want != len(b.Data) {
		return BlockHeader{}, fmt.Errorf("%w: slice %d patch %d: %d records need %d bytes, have %d",
			ErrMalformedBlock, h.Slice, h.Patch, h.Count, want, len(b.Data))
	}
	return h, nil
}

// AppendHits decodes the records of b as hits of the block's slice and
// appends them to dst.
func (b Block) AppendHits(dst []model.Hit) ([]model.Hit, error) {
	h, err := b.ReadHeader()
	if err != nil {
		return dst, err
	}
	for i := 0; i < h.Count; i++ {
		r := b.Data[BlockHeaderSize+i*RecordSize:]
		dst = append(dst, model.Hit{
			ID:    int32(binary.LittleEndian.Uint32(r[0:])),
			Slice: h.Slice,
			Row:   int(binary.LittleEndian.Uint16(r[4:])),
			X:     f32(r[8:]),
			Y:     f32(r[12:]),
			Z:     f32(r[16:]),
			ErrY:  f32(r[20:]),
			ErrZ:  f32(r[24:]),
			Amp:   f32(r[28:]),
		})
	}
	return dst, nil
}

// EncodeBlock builds the block of slice/patch holding hs. Hit slices are
// ignored. Values outside the wire field widths fail with conv.ErrOverflow.
func EncodeBlock(slice, patch int, hs []model.Hit) (Block, error) {
	s, err := conv.IntToUint16(slice)
	if err != nil {
		return Block{}, fmt.Errorf("slice: %w", err)
	}
	p, err := conv.IntToUint16(patch)
	if err != nil {
		return Block{}, fmt.Errorf("patch: %w", err)
	}
	n, err := conv.IntToUint32(len(hs))
	if err != nil {
		return Block{}, err
	}

	data := make([]byte, BlockHeaderSize+len(hs)*RecordSize)
	binary.LittleEndian.PutUint16(data[0:], s)
	binary.LittleEndian.PutUint16(data[2:], p)
	binary.LittleEndian.PutUint32(data[4:], n)
	for i := range hs {
		h := &hs[i]
		row, err := conv.IntToUint16(h.Row)
		if err != nil {
			return Block{}, fmt.Errorf("hit %d row: %w", h.ID, err)
		}
		r := data[BlockHeaderSize+i*RecordSize:]
		binary.LittleEndian.PutUint32(r[0:], uint32(h.ID))
		binary.LittleEndian.PutUint16(r[4:], row)
		putF32(r[8:], h.X)
		putF32(r[12:], h.Y)
		putF32(r[16:], h.Z)
		putF32(r[20:], h.ErrY)
		putF32(r[24:], h.ErrZ)
		putF32(r[28:], h.Amp)
	}
	return Block{Data: data}, nil
}

// BlocksBySlice packs hs into one patch-0 block per slice, in slice order.
func BlocksBySlice(hs []model.Hit) ([]Block, error) {
	bySlice := make(map[int][]model.Hit)
	for _, h := range hs {
		bySlice[h.Slice] = append(bySlice[h.Slice], h)
	}
	slices := make([]int, 0, len(bySlice))
	for s := range bySlice {
		slices = append(slices, s)
	}
	sort.Ints(slices)

	out := make([]Block, len(slices))
	for i, s := range slices {
		b, err := EncodeBlock(s, 0, bySlice[s])
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func f32(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) }

func putF32(b []byte, v float32) { binary.LittleEndian.PutUint32(b, math.Float32bits(v)) }
