package meshing

import (
	"go.uber.org/zap"

	"voxelcore/internal/metrics"
	"voxelcore/internal/world"
)

// ChunkSource is the part of the world the cache reads. *world.World satisfies it.
type ChunkSource interface {
	BlockSource
	DirtyChunks() []*world.Chunk
	HasChunk(cx, cy, cz int) bool
}

// Cache keeps the current mesh of every loaded chunk that has visible faces.
type Cache struct {
	pool    *WorkerPool
	meshes  map[world.ChunkKey]*Mesh
	quads   int
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewCache creates an empty cache that builds meshes with pool.
func NewCache(pool *WorkerPool, log *zap.Logger, m *metrics.Metrics) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		pool:    pool,
		meshes:  make(map[world.ChunkKey]*Mesh),
		log:     log,
		metrics: m,
	}
}

// RebuildDirty remeshes every dirty chunk, clears the dirty flags and
// returns how many chunks were rebuilt.
func (c *Cache) RebuildDirty(src ChunkSource) int {
	defer c.metrics.Track("meshing.RebuildDirty")()
	dirty := src.DirtyChunks()
	if len(dirty) == 0 {
		return 0
	}
	meshes := c.pool.BuildAll(src, dirty)
	for i, ch := range dirty {
		ch.SetClean()
		key := ch.Coord().Key()
		if old := c.meshes[key]; old != nil {
			c.quads -= old.Quads()
		}
		if meshes[i] == nil {
			delete(c.meshes, key)
			continue
		}
		c.meshes[key] = meshes[i]
		c.quads += meshes[i].Quads()
	}
	c.metrics.SetMeshQuads(c.quads)
	c.log.Debug("rebuilt chunk meshes", zap.Int("chunks", len(dirty)), zap.Int("quads", c.quads))
	return len(dirty)
}

// Prune drops meshes of chunks that are no longer loaded.
func (c *Cache) Prune(src ChunkSource) int {
	removed := 0
	for key, m := range c.meshes {
		coord := key.Coord()
		if src.HasChunk(coord.X, coord.Y, coord.Z) {
			continue
		}
		c.quads -= m.Quads()
		delete(c.meshes, key)
		removed++
	}
	if removed > 0 {
		c.metrics.SetMeshQuads(c.quads)
	}
	return removed
}

// Get returns the cached mesh for a chunk or nil.
func (c *Cache) Get(coord world.ChunkCoord) *Mesh {
	return c.meshes[coord.Key()]
}

// Meshes calls fn for every cached mesh.
func (c *Cache) Meshes(fn func(*Mesh)) {
	for _, m := range c.meshes {
		fn(m)
	}
}

// Len returns the number of cached meshes.
func (c *Cache) Len() int { return len(c.meshes) }

// Quads returns the total quad count across cached meshes.
func (c *Cache) Quads() int { return c.quads }
