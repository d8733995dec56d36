package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/world"
)

func sampleBlocks(n int) []world.BlockType {
	blocks := make([]world.BlockType, n)
	for i := range blocks {
		blocks[i] = world.BlockType(i % 13)
	}
	blocks[n-1] = 0xBEEF
	return blocks
}

func encodeBlocks(t *testing.T, blocks []world.BlockType) []byte {
	t.Helper()
	data, err := EncodeBlocks(blocks)
	require.NoError(t, err)
	return data
}

func TestCodecRoundTrip(t *testing.T) {
	blocks := sampleBlocks(world.DefaultSize.Volume())
	data := encodeBlocks(t, blocks)
	assert.Less(t, len(data), 2*len(blocks))

	got, err := DecodeBlocks(data)
	require.NoError(t, err)
	assert.Equal(t, blocks, got)
}

func TestCoderIsBuiltOnce(t *testing.T) {
	a, err := coder()
	require.NoError(t, err)
	b, err := coder()
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.NotNil(t, a.enc)
	assert.NotNil(t, a.dec)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeBlocks([]byte("not zstd"))
	assert.Error(t, err)
}

func TestChunkKey(t *testing.T) {
	assert.Equal(t, "chunk:-1:0:7", ChunkKey(world.ChunkCoord{X: -1, Y: 0, Z: 7}))
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put("a", []byte{1, 2, 3}))
	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	require.NoError(t, s.Put("a", []byte{4}))
	got, err = s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, got)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	testStore(t, s)
	assert.Equal(t, 1, s.Len())
}

func TestBadgerStoreInMemory(t *testing.T) {
	s, err := OpenBadger("")
	require.NoError(t, err)
	defer s.Close()
	testStore(t, s)
}

func TestBadgerStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenBadger(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(ChunkKey(world.ChunkCoord{X: 3}), encodeBlocks(t, []world.BlockType{7, 7})))
	require.NoError(t, s.Close())

	s, err = OpenBadger(dir)
	require.NoError(t, err)
	defer s.Close()
	data, err := s.Get(ChunkKey(world.ChunkCoord{X: 3}))
	require.NoError(t, err)
	blocks, err := DecodeBlocks(data)
	require.NoError(t, err)
	assert.Equal(t, []world.BlockType{7, 7}, blocks)
}
