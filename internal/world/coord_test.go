package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexIsUniqueAndInRange(t *testing.T) {
	s := Size{X: 4, Y: 3, Z: 2}
	seen := make(map[int]bool)
	for z := 0; z < s.Z; z++ {
		for y := 0; y < s.Y; y++ {
			for x := 0; x < s.X; x++ {
				i := s.Index(x, y, z)
				assert.GreaterOrEqual(t, i, 0)
				assert.Less(t, i, s.Volume())
				assert.False(t, seen[i], "duplicate index %d", i)
				seen[i] = true
			}
		}
	}
	assert.Equal(t, 1, s.Index(1, 0, 0))
	assert.Equal(t, 4, s.Index(0, 1, 0))
	assert.Equal(t, 12, s.Index(0, 0, 1))
}

func TestChunkOfNegativeCoordinates(t *testing.T) {
	s := DefaultSize
	cases := []struct {
		x, y, z    int
		chunk      ChunkCoord
		lx, ly, lz int
	}{
		{0, 0, 0, ChunkCoord{0, 0, 0}, 0, 0, 0},
		{15, 16, 31, ChunkCoord{0, 1, 1}, 15, 0, 15},
		{-1, -16, -17, ChunkCoord{-1, -1, -2}, 15, 0, 15},
		{-33, 5, 40, ChunkCoord{-3, 0, 2}, 15, 5, 8},
	}
	for _, tc := range cases {
		c, lx, ly, lz := s.ChunkOf(tc.x, tc.y, tc.z)
		assert.Equal(t, tc.chunk, c, "block %d,%d,%d", tc.x, tc.y, tc.z)
		assert.Equal(t, [3]int{tc.lx, tc.ly, tc.lz}, [3]int{lx, ly, lz})

		ox, oy, oz := s.Origin(c)
		assert.Equal(t, [3]int{tc.x, tc.y, tc.z}, [3]int{ox + lx, oy + ly, oz + lz})
	}
}

func TestFloorDivAndMod(t *testing.T) {
	assert.Equal(t, -1, FloorDiv(-1, 16))
	assert.Equal(t, -2, FloorDiv(-17, 16))
	assert.Equal(t, 1, FloorDiv(16, 16))
	assert.Equal(t, 15, FloorMod(-1, 16))
	assert.Equal(t, 0, FloorMod(-16, 16))
}

func TestChunkKeyRoundTrip(t *testing.T) {
	const lim = 1 << 20
	coords := []ChunkCoord{
		{0, 0, 0},
		{1, -1, 2},
		{-5, 7, -9},
		{lim - 1, -lim, 0},
		{-lim, lim - 1, -lim},
	}
	keys := make(map[ChunkKey]bool)
	for _, c := range coords {
		k := c.Key()
		assert.Equal(t, c, k.Coord())
		assert.False(t, keys[k], "key collision for %v", c)
		keys[k] = true
	}
}

func TestChunkKeyRange(t *testing.T) {
	for _, c := range []ChunkCoord{
		{MinChunkCoord, 0, MaxChunkCoord},
		{0, MaxChunkCoord, MinChunkCoord},
	} {
		assert.True(t, c.Valid())
		assert.Equal(t, c, c.Key().Coord())
	}

	past := ChunkCoord{X: MaxChunkCoord + 1}
	assert.False(t, past.Valid())
	assert.False(t, ChunkCoord{Z: MinChunkCoord - 1}.Valid())
	assert.Equal(t, ChunkCoord{X: MinChunkCoord}.Key(), past.Key())

	cs := NewChunkStore(DefaultSize)
	assert.True(t, cs.AddChunk(NewChunk(MinChunkCoord, 0, 0, DefaultSize)))
	assert.False(t, cs.AddChunk(NewChunk(past.X, 0, 0, DefaultSize)))
	assert.Nil(t, cs.GetChunk(past))
	assert.False(t, cs.HasChunk(past))
	assert.NotNil(t, cs.GetChunk(ChunkCoord{X: MinChunkCoord}))
}
