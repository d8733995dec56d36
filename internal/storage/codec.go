package storage

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"voxelcore/internal/world"
)

// Chunk blobs are little-endian uint16 block ids in chunk index order,
// compressed with zstd.

type zstdCoder struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// coder builds the shared encoder and decoder on first use. Both are safe
// for concurrent EncodeAll/DecodeAll calls.
var coder = sync.OnceValues(func() (*zstdCoder, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("storage: create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("storage: create zstd decoder: %w", err)
	}
	return &zstdCoder{enc: enc, dec: dec}, nil
})

// EncodeBlocks serialises a chunk buffer.
func EncodeBlocks(blocks []world.BlockType) ([]byte, error) {
	z, err := coder()
	if err != nil {
		return nil, err
	}
	raw := make([]byte, 2*len(blocks))
	for i, b := range blocks {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(b))
	}
	return z.enc.EncodeAll(raw, nil), nil
}

// DecodeBlocks reverses EncodeBlocks.
func DecodeBlocks(data []byte) ([]world.BlockType, error) {
	z, err := coder()
	if err != nil {
		return nil, err
	}
	raw, err := z.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: decompress chunk: %w", err)
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("storage: odd chunk blob length %d", len(raw))
	}
	blocks := make([]world.BlockType, len(raw)/2)
	for i := range blocks {
		blocks[i] = world.BlockType(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return blocks, nil
}
