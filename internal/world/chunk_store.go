package world

import "sort"

// ChunkStore manages the storage and retrieval of loaded chunks.
// It is owned by the simulation goroutine and is not safe for concurrent use.
type ChunkStore struct {
	size     Size
	chunks   map[ChunkKey]*Chunk
	modCount uint64 // Increases on any chunk add/remove
}

// NewChunkStore creates a new chunk store.
func NewChunkStore(size Size) *ChunkStore {
	return &ChunkStore{
		size:   size,
		chunks: make(map[ChunkKey]*Chunk),
	}
}

// GetChunk returns the chunk at the specified chunk coordinates, or nil.
// Coordinates whose key aliases a stored chunk report nil.
func (cs *ChunkStore) GetChunk(coord ChunkCoord) *Chunk {
	c := cs.chunks[coord.Key()]
	if c == nil || c.Coord() != coord {
		return nil
	}
	return c
}

// GetChunkFromBlockCoords returns the chunk containing the block at the specified world coordinates.
func (cs *ChunkStore) GetChunkFromBlockCoords(x, y, z int) *Chunk {
	coord, _, _, _ := cs.size.ChunkOf(x, y, z)
	return cs.GetChunk(coord)
}

// HasChunk checks if a chunk is loaded.
func (cs *ChunkStore) HasChunk(coord ChunkCoord) bool {
	return cs.GetChunk(coord) != nil
}

// AddChunk adds a populated chunk. An existing chunk at the same coordinate
// is kept and chunks outside the key range are refused.
func (cs *ChunkStore) AddChunk(chunk *Chunk) bool {
	if !chunk.Coord().Valid() {
		return false
	}
	key := chunk.Coord().Key()
	if _, ok := cs.chunks[key]; ok {
		return false
	}
	cs.chunks[key] = chunk
	cs.modCount++
	return true
}

// Get returns the block type at the specified world coordinates, air when unloaded.
func (cs *ChunkStore) Get(x, y, z int) BlockType {
	coord, lx, ly, lz := cs.size.ChunkOf(x, y, z)
	chunk := cs.GetChunk(coord)
	if chunk == nil {
		return BlockTypeAir
	}
	return chunk.GetBlock(lx, ly, lz)
}

// MarkNeighborsDirty flags the loaded chunks that share a face with the
// block at local (lx, ly, lz) of coord.
func (cs *ChunkStore) MarkNeighborsDirty(coord ChunkCoord, lx, ly, lz int) {
	mark := func(dx, dy, dz int) {
		if nb := cs.GetChunk(ChunkCoord{X: coord.X + dx, Y: coord.Y + dy, Z: coord.Z + dz}); nb != nil {
			nb.MarkDirty()
		}
	}
	if lx == 0 {
		mark(-1, 0, 0)
	} else if lx == cs.size.X-1 {
		mark(1, 0, 0)
	}
	if ly == 0 {
		mark(0, -1, 0)
	} else if ly == cs.size.Y-1 {
		mark(0, 1, 0)
	}
	if lz == 0 {
		mark(0, 0, -1)
	} else if lz == cs.size.Z-1 {
		mark(0, 0, 1)
	}
}

// MarkAllNeighborsDirty flags the six face neighbours of coord.
func (cs *ChunkStore) MarkAllNeighborsDirty(coord ChunkCoord) {
	for _, d := range faceOffsets {
		if nb := cs.GetChunk(ChunkCoord{X: coord.X + d[0], Y: coord.Y + d[1], Z: coord.Z + d[2]}); nb != nil {
			nb.MarkDirty()
		}
	}
}

var faceOffsets = [6][3]int{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// Len returns the number of loaded chunks.
func (cs *ChunkStore) Len() int {
	return len(cs.chunks)
}

// GetModCount returns the current modification count of the chunk map.
func (cs *ChunkStore) GetModCount() uint64 {
	return cs.modCount
}

// Coords returns the loaded chunk coordinates in a stable order.
func (cs *ChunkStore) Coords() []ChunkCoord {
	out := make([]ChunkCoord, 0, len(cs.chunks))
	for key := range cs.chunks {
		out = append(out, key.Coord())
	}
	sortCoords(out)
	return out
}

// Dirty returns the loaded chunks whose dirty flag is set, in a stable order.
func (cs *ChunkStore) Dirty() []*Chunk {
	var out []*Chunk
	for _, c := range cs.chunks {
		if c.IsDirty() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return coordLess(out[i].Coord(), out[j].Coord()) })
	return out
}

// EvictExcept removes every chunk whose key is not in keep.
// Returns the removed coordinates.
func (cs *ChunkStore) EvictExcept(keep map[ChunkKey]struct{}) []ChunkCoord {
	var removed []ChunkCoord
	for key := range cs.chunks {
		if _, ok := keep[key]; ok {
			continue
		}
		delete(cs.chunks, key)
		cs.modCount++
		removed = append(removed, key.Coord())
	}
	return removed
}

func sortCoords(cs []ChunkCoord) {
	sort.Slice(cs, func(i, j int) bool { return coordLess(cs[i], cs[j]) })
}

func coordLess(a, b ChunkCoord) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	return a.X < b.X
}
