package world

import (
	"context"
	"math"

	"go.uber.org/zap"

	"voxelcore/internal/metrics"
)

// Persister is the asynchronous chunk blob store seen by the world.
// Load and Save must not block; finished loads are delivered on Loaded
// and applied by Pump on the simulation goroutine. Every Load produces
// exactly one completion; Blocks is nil when nothing usable is stored.
type Persister interface {
	Load(coord ChunkCoord)
	Save(coord ChunkCoord, blocks []BlockType)
	Loaded() <-chan Loaded
}

// Loaded is a completed persistence read.
type Loaded struct {
	Coord  ChunkCoord
	Blocks []BlockType
}

// Options configures a World.
type Options struct {
	Size       Size
	ViewRadius int
	Generator  TerrainGenerator
	Persister  Persister
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// StreamResult reports the work done by one UpdateStreaming call.
type StreamResult struct {
	Loaded  int
	Evicted int
}

// World owns the loaded chunks and exposes global block access.
// All methods must be called from the simulation goroutine.
type World struct {
	size       Size
	viewRadius int
	gen        TerrainGenerator
	store      *ChunkStore
	persister  Persister
	log        *zap.Logger
	metrics    *metrics.Metrics

	// chunks with a load in flight
	loading map[ChunkKey]*pendingLoad

	streamed     bool
	streamCenter ChunkCoord
	streamMods   uint64
	keep         map[ChunkKey]struct{}
}

// pendingLoad is a persistence read in flight. Edits made before it
// completes are kept here and the chunk is not saved until they have been
// replayed over the stored blob.
type pendingLoad struct {
	edits []BlockEdit
}

// New creates a world. Zero-valued options fall back to a 16^3 chunk size,
// view radius 2, an empty generator and a no-op logger.
func New(opts Options) *World {
	if opts.Size.Volume() <= 0 {
		opts.Size = DefaultSize
	}
	if opts.ViewRadius < 0 {
		opts.ViewRadius = 0
	}
	if opts.Generator == nil {
		opts.Generator = EmptyGenerator{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &World{
		size:       opts.Size,
		viewRadius: opts.ViewRadius,
		gen:        opts.Generator,
		store:      NewChunkStore(opts.Size),
		persister:  opts.Persister,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		loading:    make(map[ChunkKey]*pendingLoad),
	}
}

// NewEmpty creates an all-air world with default chunk size and view radius 2.
func NewEmpty() *World {
	return New(Options{Size: DefaultSize, ViewRadius: 2})
}

// Size returns the chunk dimensions.
func (w *World) Size() Size { return w.size }

// ViewRadius returns the streaming radius in chunks.
func (w *World) ViewRadius() int { return w.viewRadius }

// SetViewRadius changes the streaming radius; the next UpdateStreaming recomputes the set.
func (w *World) SetViewRadius(r int) {
	if r < 0 {
		r = 0
	}
	if r != w.viewRadius {
		w.viewRadius = r
		w.streamed = false
	}
}

// Generator returns the terrain generator.
func (w *World) Generator() TerrainGenerator { return w.gen }

// ensureChunk returns the chunk at coord, generating it on first access.
func (w *World) ensureChunk(coord ChunkCoord) *Chunk {
	if c := w.store.GetChunk(coord); c != nil {
		return c
	}
	c := NewChunk(coord.X, coord.Y, coord.Z, w.size)
	w.gen.PopulateChunk(c)
	if !coord.Valid() {
		// past the addressable range: readable, never stored
		return c
	}
	requestLoad := false
	if w.persister != nil {
		if pl, ok := w.loading[coord.Key()]; ok {
			// evicted and streamed back before the earlier read finished
			replay(c, pl.edits)
		} else {
			w.loading[coord.Key()] = &pendingLoad{}
			requestLoad = true
		}
	}
	w.store.AddChunk(c)
	w.store.MarkAllNeighborsDirty(coord)
	w.metrics.IncGenerated()
	w.metrics.SetLoaded(w.store.Len())
	if requestLoad {
		w.persister.Load(coord)
	}
	return c
}

// GetBlock returns the block at world coordinates, generating the owning
// chunk if needed. Chunks beyond MinChunkCoord/MaxChunkCoord are generated
// per call and edits to them are discarded.
func (w *World) GetBlock(x, y, z int) BlockType {
	coord, lx, ly, lz := w.size.ChunkOf(x, y, z)
	return w.ensureChunk(coord).GetBlock(lx, ly, lz)
}

// LoadedBlock returns the block at world coordinates without generating; unloaded cells read as air.
func (w *World) LoadedBlock(x, y, z int) BlockType {
	return w.store.Get(x, y, z)
}

// SetBlock mutates the owning chunk, marks it and any touched neighbour
// dirty and requests a save of the chunk.
func (w *World) SetBlock(x, y, z int, id BlockType) {
	coord, lx, ly, lz := w.size.ChunkOf(x, y, z)
	c := w.ensureChunk(coord)
	c.SetBlock(lx, ly, lz, id)
	c.MarkDirty()
	w.store.MarkNeighborsDirty(coord, lx, ly, lz)
	w.edited(c, BlockEdit{X: lx, Y: ly, Z: lz, Block: id})
}

// edited persists a locally changed chunk. While its load is in flight
// the edits are queued instead, so the stored contents are not overwritten
// by the generated buffer.
func (w *World) edited(c *Chunk, edits ...BlockEdit) {
	if w.persister == nil || !c.Coord().Valid() {
		return
	}
	if pl, ok := w.loading[c.Coord().Key()]; ok {
		pl.edits = append(pl.edits, edits...)
		return
	}
	w.persister.Save(c.Coord(), c.Snapshot())
}

func replay(c *Chunk, edits []BlockEdit) {
	for _, e := range edits {
		c.SetBlock(e.X, e.Y, e.Z, e.Block)
	}
}

// ApplyChunk replaces a chunk's contents from an external snapshot. Data of
// the wrong length, or for a chunk outside the key range, is ignored and
// false is returned.
func (w *World) ApplyChunk(cx, cy, cz int, blocks []BlockType) bool {
	coord := ChunkCoord{X: cx, Y: cy, Z: cz}
	if !coord.Valid() {
		w.metrics.IncDropped("chunk_range")
		return false
	}
	c := w.ensureChunk(coord)
	if !c.Replace(blocks) {
		w.log.Debug("ignoring chunk snapshot",
			zap.Stringer("chunk", coord),
			zap.Int("len", len(blocks)),
			zap.Int("want", w.size.Volume()),
		)
		w.metrics.IncDropped("snapshot_length")
		return false
	}
	w.store.MarkAllNeighborsDirty(coord)
	// a full snapshot supersedes whatever the store holds
	delete(w.loading, coord.Key())
	w.edited(c)
	return true
}

// ApplyDelta applies local-coordinate edits to one chunk. Edits outside the
// chunk bounds, or to a chunk outside the key range, are skipped. Returns
// the number applied.
func (w *World) ApplyDelta(cx, cy, cz int, edits []BlockEdit) int {
	if len(edits) == 0 {
		return 0
	}
	coord := ChunkCoord{X: cx, Y: cy, Z: cz}
	if !coord.Valid() {
		w.metrics.IncDropped("chunk_range")
		return 0
	}
	c := w.ensureChunk(coord)
	applied := make([]BlockEdit, 0, len(edits))
	for _, e := range edits {
		if !w.size.Contains(e.X, e.Y, e.Z) {
			continue
		}
		c.SetBlock(e.X, e.Y, e.Z, e.Block)
		w.store.MarkNeighborsDirty(coord, e.X, e.Y, e.Z)
		applied = append(applied, e)
	}
	if len(applied) < len(edits) {
		w.metrics.IncDropped("delta_bounds")
	}
	if len(applied) > 0 {
		c.MarkDirty()
		w.edited(c, applied...)
	}
	return len(applied)
}

// Pump applies finished persistence loads. A blob replaces the chunk only
// if the chunk is still loaded, no full snapshot arrived since the request
// and the blob has the exact chunk volume. Edits made while the load was in
// flight are replayed over it and the result is saved.
func (w *World) Pump() int {
	if w.persister == nil {
		return 0
	}
	applied := 0
	ch := w.persister.Loaded()
	for {
		select {
		case res := <-ch:
			if w.applyLoaded(res) {
				applied++
			}
		default:
			return applied
		}
	}
}

func (w *World) applyLoaded(res Loaded) bool {
	if !res.Coord.Valid() {
		return false
	}
	key := res.Coord.Key()
	pl, ok := w.loading[key]
	if !ok {
		return false
	}
	delete(w.loading, key)

	c := w.store.GetChunk(res.Coord)
	if c == nil {
		w.saveDetached(res, pl.edits)
		return false
	}
	restored := false
	switch {
	case res.Blocks == nil:
	case c.Replace(res.Blocks):
		replay(c, pl.edits)
		w.store.MarkAllNeighborsDirty(res.Coord)
		w.metrics.IncStoreLoaded()
		restored = true
	default:
		w.log.Debug("discarding persisted chunk", zap.Stringer("chunk", res.Coord), zap.Int("len", len(res.Blocks)))
		w.metrics.IncDropped("persisted_length")
	}
	if len(pl.edits) > 0 {
		w.persister.Save(res.Coord, c.Snapshot())
	}
	return restored
}

// saveDetached merges the edits of an evicted chunk into its stored blob,
// or into freshly generated terrain when nothing usable was stored.
func (w *World) saveDetached(res Loaded, edits []BlockEdit) {
	if len(edits) == 0 {
		return
	}
	c := NewChunk(res.Coord.X, res.Coord.Y, res.Coord.Z, w.size)
	if !c.Replace(res.Blocks) {
		w.gen.PopulateChunk(c)
	}
	replay(c, edits)
	w.persister.Save(res.Coord, c.blocks)
}

// FlushEdits waits for the loads that hold back saves of edited chunks and
// applies them as Pump does. Call it before closing the persister.
func (w *World) FlushEdits(ctx context.Context) error {
	if w.persister == nil {
		return nil
	}
	for w.heldSaves() > 0 {
		select {
		case res := <-w.persister.Loaded():
			w.applyLoaded(res)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (w *World) heldSaves() int {
	n := 0
	for _, pl := range w.loading {
		if len(pl.edits) > 0 {
			n++
		}
	}
	return n
}

// dropLoading forgets the load of an evicted chunk unless it holds edits.
func (w *World) dropLoading(coord ChunkCoord) {
	key := coord.Key()
	if pl, ok := w.loading[key]; ok && len(pl.edits) == 0 {
		delete(w.loading, key)
	}
}

// Chunk returns a loaded chunk or nil.
func (w *World) Chunk(cx, cy, cz int) *Chunk {
	return w.store.GetChunk(ChunkCoord{X: cx, Y: cy, Z: cz})
}

// HasChunk reports whether the chunk is loaded.
func (w *World) HasChunk(cx, cy, cz int) bool {
	return w.store.HasChunk(ChunkCoord{X: cx, Y: cy, Z: cz})
}

// LoadedChunks returns the loaded chunk coordinates in a stable order.
func (w *World) LoadedChunks() []ChunkCoord {
	return w.store.Coords()
}

// LoadedCount returns the number of resident chunks.
func (w *World) LoadedCount() int {
	return w.store.Len()
}

// DirtyChunks returns the loaded chunks waiting for a mesh rebuild.
func (w *World) DirtyChunks() []*Chunk {
	return w.store.Dirty()
}

// SurfaceHeightAt returns the generator's surface height for a column.
func (w *World) SurfaceHeightAt(x, z int) int {
	return w.gen.HeightAt(x, z)
}

// ChunkAt returns the chunk coordinate containing a world-space point.
func (w *World) ChunkAt(x, y, z float64) ChunkCoord {
	coord, _, _, _ := w.size.ChunkOf(int(math.Floor(x)), int(math.Floor(y)), int(math.Floor(z)))
	return coord
}

// IsLoadedAt reports whether the chunk containing a world-space point is loaded.
func (w *World) IsLoadedAt(x, y, z float64) bool {
	return w.store.HasChunk(w.ChunkAt(x, y, z))
}
