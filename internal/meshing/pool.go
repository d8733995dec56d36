package meshing

import (
	"sync"

	"github.com/alitto/pond/v2"

	"voxelcore/internal/registry"
	"voxelcore/internal/world"
)

// WorkerPool builds chunk meshes in parallel. Builds only read the world,
// so callers must not mutate it until BuildAll returns.
type WorkerPool struct {
	pool  pond.Pool
	reg   *registry.Registry
	tiles TileSource
}

// NewWorkerPool creates a mesh worker pool. With workers <= 1 meshes are
// built on the calling goroutine.
func NewWorkerPool(workers int, reg *registry.Registry, tiles TileSource) *WorkerPool {
	p := &WorkerPool{reg: reg, tiles: tiles}
	if workers > 1 {
		p.pool = pond.NewPool(workers)
	}
	return p
}

// BuildAll meshes every chunk and returns the results in input order.
func (p *WorkerPool) BuildAll(src BlockSource, chunks []*world.Chunk) []*Mesh {
	out := make([]*Mesh, len(chunks))
	if p.pool == nil || len(chunks) < 2 {
		for i, c := range chunks {
			out[i] = BuildMesh(src, p.reg, p.tiles, c)
		}
		return out
	}

	var wg sync.WaitGroup
	for i, c := range chunks {
		i, c := i, c // per-iteration copies for the worker closure
		wg.Add(1)
		p.pool.Submit(func() {
			defer wg.Done()
			out[i] = BuildMesh(src, p.reg, p.tiles, c)
		})
	}
	wg.Wait()
	return out
}

// Shutdown stops the workers after queued builds finish.
func (p *WorkerPool) Shutdown() {
	if p.pool != nil {
		p.pool.StopAndWait()
	}
}
