package world

import "fmt"

// ChunkCoord addresses a chunk in chunk units.
type ChunkCoord struct {
	X, Y, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("%d,%d,%d", c.X, c.Y, c.Z)
}

// ChunkKey packs a ChunkCoord into 64 bits, 21 bits per axis.
// Coordinates outside [MinChunkCoord, MaxChunkCoord] alias other chunks.
type ChunkKey uint64

const (
	keyBits = 21
	keyMask = 1<<keyBits - 1
	keySign = 1 << (keyBits - 1)

	MinChunkCoord = -keySign
	MaxChunkCoord = keySign - 1
)

// Valid reports whether every axis of c survives packing into a ChunkKey.
func (c ChunkCoord) Valid() bool {
	return inKeyRange(c.X) && inKeyRange(c.Y) && inKeyRange(c.Z)
}

func inKeyRange(v int) bool {
	return v >= MinChunkCoord && v <= MaxChunkCoord
}

// Key returns the packed map key for c.
func (c ChunkCoord) Key() ChunkKey {
	return ChunkKey(uint64(c.X)&keyMask |
		(uint64(c.Y)&keyMask)<<keyBits |
		(uint64(c.Z)&keyMask)<<(2*keyBits))
}

// Coord unpacks the key.
func (k ChunkKey) Coord() ChunkCoord {
	return ChunkCoord{
		X: unpackAxis(uint64(k)),
		Y: unpackAxis(uint64(k) >> keyBits),
		Z: unpackAxis(uint64(k) >> (2 * keyBits)),
	}
}

func unpackAxis(v uint64) int {
	v &= keyMask
	if v&keySign != 0 {
		return int(v) - (1 << keyBits)
	}
	return int(v)
}

// Size holds chunk dimensions in blocks.
type Size struct {
	X, Y, Z int
}

// DefaultSize is a 16-block cube.
var DefaultSize = Size{X: 16, Y: 16, Z: 16}

// Volume is the number of cells in a chunk.
func (s Size) Volume() int { return s.X * s.Y * s.Z }

// Dim returns the size along axis 0 (x), 1 (y) or 2 (z).
func (s Size) Dim(axis int) int {
	switch axis {
	case 0:
		return s.X
	case 1:
		return s.Y
	default:
		return s.Z
	}
}

// Contains reports whether the local coordinate is inside the chunk.
func (s Size) Contains(x, y, z int) bool {
	return x >= 0 && x < s.X && y >= 0 && y < s.Y && z >= 0 && z < s.Z
}

// Index is the flat cell index, x fastest then y then z.
func (s Size) Index(x, y, z int) int {
	return x + s.X*(y+s.Y*z)
}

// ChunkOf returns the chunk holding world block (x, y, z) and the local
// coordinates inside it.
func (s Size) ChunkOf(x, y, z int) (ChunkCoord, int, int, int) {
	return ChunkCoord{X: floorDiv(x, s.X), Y: floorDiv(y, s.Y), Z: floorDiv(z, s.Z)},
		mod(x, s.X), mod(y, s.Y), mod(z, s.Z)
}

// Origin returns the world block coordinate of the chunk's (0,0,0) cell.
func (s Size) Origin(c ChunkCoord) (int, int, int) {
	return c.X * s.X, c.Y * s.Y, c.Z * s.Z
}

// floorDiv rounds toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mod returns a value in [0, b) for b > 0.
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// FloorDiv is floorDiv for callers outside the package.
func FloorDiv(a, b int) int { return floorDiv(a, b) }

// FloorMod is mod for callers outside the package.
func FloorMod(a, b int) int { return mod(a, b) }
