// Package snapshot decodes chunk snapshots and block deltas received from a
// server and applies them to the world.
package snapshot

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"voxelcore/internal/world"
)

var (
	ErrOddLength = errors.New("snapshot: truncated uint16 data")
	ErrTooLarge  = errors.New("snapshot: decoded data exceeds limit")
)

// DecodeRaw reads little-endian uint16 block ids.
func DecodeRaw(b []byte) ([]world.BlockType, error) {
	if len(b)%2 != 0 {
		return nil, ErrOddLength
	}
	out := make([]world.BlockType, len(b)/2)
	for i := range out {
		out[i] = world.BlockType(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return out, nil
}

// DecodeRLE reads (value, run) pairs of little-endian uint16. Decoding stops
// with ErrTooLarge once more than limit blocks would be produced; limit <= 0
// disables the check.
func DecodeRLE(b []byte, limit int) ([]world.BlockType, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("snapshot: rle length %d is not a multiple of 4", len(b))
	}
	var out []world.BlockType
	for i := 0; i < len(b); i += 4 {
		val := world.BlockType(binary.LittleEndian.Uint16(b[i:]))
		run := int(binary.LittleEndian.Uint16(b[i+2:]))
		if limit > 0 && len(out)+run > limit {
			return nil, ErrTooLarge
		}
		for _n := 0; _n < run; _n++ {
			out = append(out, val)
		}
	}
	return out, nil
}

// EncodeRLE is the inverse of DecodeRLE. Runs longer than 65535 are split.
func EncodeRLE(blocks []world.BlockType) []byte {
	var out []byte
	for i := 0; i < len(blocks); {
		j := i + 1
		for j < len(blocks) && blocks[j] == blocks[i] && j-i < 0xFFFF {
			j++
		}
		out = binary.LittleEndian.AppendUint16(out, uint16(blocks[i]))
		out = binary.LittleEndian.AppendUint16(out, uint16(j-i))
		i = j
	}
	return out
}

// EncodeRaw is the inverse of DecodeRaw.
func EncodeRaw(blocks []world.BlockType) []byte {
	out := make([]byte, 0, 2*len(blocks))
	for _, b := range blocks {
		out = binary.LittleEndian.AppendUint16(out, uint16(b))
	}
	return out
}

// DecodeBase64 decodes a base64 payload as RLE or raw block data.
func DecodeBase64(s string, rle bool, limit int) ([]world.BlockType, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot: base64: %w", err)
	}
	if rle {
		return DecodeRLE(b, limit)
	}
	if limit > 0 && len(b)/2 > limit {
		return nil, ErrTooLarge
	}
	return DecodeRaw(b)
}
