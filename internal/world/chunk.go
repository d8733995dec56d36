package world

// Chunk is a dense sx*sy*sz block array addressed by local coordinates.
type Chunk struct {
	X, Y, Z int
	size    Size
	blocks  []BlockType
	dirty   bool
}

// NewChunk creates an all-air chunk at the specified chunk coordinates.
func NewChunk(x, y, z int, size Size) *Chunk {
	return &Chunk{
		X:      x,
		Y:      y,
		Z:      z,
		size:   size,
		blocks: make([]BlockType, size.Volume()),
		dirty:  true,
	}
}

// Coord returns the chunk coordinate.
func (c *Chunk) Coord() ChunkCoord {
	return ChunkCoord{X: c.X, Y: c.Y, Z: c.Z}
}

// Size returns the chunk dimensions.
func (c *Chunk) Size() Size {
	return c.size
}

// GetBlock returns the block at local coordinates, or air when out of range.
func (c *Chunk) GetBlock(x, y, z int) BlockType {
	if !c.size.Contains(x, y, z) {
		return BlockTypeAir
	}
	return c.blocks[c.size.Index(x, y, z)]
}

// SetBlock sets the block at local coordinates. Out-of-range writes are ignored.
func (c *Chunk) SetBlock(x, y, z int, blockType BlockType) {
	if !c.size.Contains(x, y, z) {
		return
	}
	idx := c.size.Index(x, y, z)
	if c.blocks[idx] != blockType {
		c.blocks[idx] = blockType
		c.dirty = true
	}
}

// IsAir checks if the block at the specified local coordinates is air
func (c *Chunk) IsAir(x, y, z int) bool {
	return c.GetBlock(x, y, z) == BlockTypeAir
}

// Replace overwrites the whole buffer. It reports false and leaves the
// chunk untouched when the length does not match.
func (c *Chunk) Replace(blocks []BlockType) bool {
	if len(blocks) != len(c.blocks) {
		return false
	}
	copy(c.blocks, blocks)
	c.dirty = true
	return true
}

// Snapshot returns a copy of the block buffer.
func (c *Chunk) Snapshot() []BlockType {
	out := make([]BlockType, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// IsDirty returns whether the chunk has been modified since its last mesh build.
func (c *Chunk) IsDirty() bool {
	return c.dirty
}

// MarkDirty flags the chunk for a mesh rebuild.
func (c *Chunk) MarkDirty() {
	c.dirty = true
}

// SetClean marks the chunk as clean (not modified)
func (c *Chunk) SetClean() {
	c.dirty = false
}

// CountNonAir returns the number of non-air cells.
func (c *Chunk) CountNonAir() int {
	n := 0
	for _, b := range c.blocks {
		if b != BlockTypeAir {
			n++
		}
	}
	return n
}
