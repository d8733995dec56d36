package storage

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"voxelcore/internal/metrics"
	"voxelcore/internal/world"
)

// PersisterOptions configures an AsyncPersister.
type PersisterOptions struct {
	Workers        int     // pool size, default 2
	SavesPerSecond float64 // 0 disables throttling
	Burst          int
	QueueSize      int // buffered completions, default 256
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
}

// AsyncPersister implements world.Persister on top of a Store. Loads and
// saves run on a worker pool; completed loads are handed back on Loaded.
// Saves of one chunk are coalesced: at most one write per chunk is in
// flight and only the newest snapshot waiting behind it is written.
type AsyncPersister struct {
	store   Store
	pool    pond.Pool
	limiter *rate.Limiter
	loaded  chan world.Loaded
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	pending map[world.ChunkKey]*pendingSave
	closed  bool
}

type pendingSave struct {
	latest []world.BlockType
	queued bool // latest has not been handed to a writer yet
}

var _ world.Persister = (*AsyncPersister)(nil)

// NewAsyncPersister starts the worker pool. The persister owns store and
// closes it in Close.
func NewAsyncPersister(store Store, opts PersisterOptions) *AsyncPersister {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	limit := rate.Inf
	if opts.SavesPerSecond > 0 {
		limit = rate.Limit(opts.SavesPerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncPersister{
		store:   store,
		pool:    pond.NewPool(opts.Workers),
		limiter: rate.NewLimiter(limit, opts.Burst),
		loaded:  make(chan world.Loaded, opts.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
		log:     opts.Logger.With(zap.String("component", "persister")),
		metrics: opts.Metrics,
		pending: make(map[world.ChunkKey]*pendingSave),
	}
}

// Loaded returns the completion channel drained by World.Pump.
func (p *AsyncPersister) Loaded() <-chan world.Loaded { return p.loaded }

// Load requests the stored blob of a chunk. Every request gets one
// completion; Blocks is nil when the blob is missing, unreadable or
// corrupt. A save that has not reached the store yet is served directly.
func (p *AsyncPersister) Load(coord world.ChunkCoord) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if ps, ok := p.pending[coord.Key()]; ok {
		blocks := slices.Clone(ps.latest)
		p.mu.Unlock()
		p.pool.Submit(func() { p.deliver(world.Loaded{Coord: coord, Blocks: blocks}) })
		return
	}
	p.mu.Unlock()

	p.pool.Submit(func() {
		p.deliver(world.Loaded{Coord: coord, Blocks: p.read(coord)})
	})
}

func (p *AsyncPersister) read(coord world.ChunkCoord) []world.BlockType {
	data, err := p.store.Get(ChunkKey(coord))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		p.log.Debug("chunk load failed", zap.Stringer("chunk", coord), zap.Error(err))
		p.metrics.IncDropped("load_error")
		return nil
	}
	blocks, err := DecodeBlocks(data)
	if err != nil {
		p.log.Debug("corrupt chunk blob", zap.Stringer("chunk", coord), zap.Error(err))
		p.metrics.IncDropped("load_corrupt")
		return nil
	}
	return blocks
}

// deliver blocks until the completion is queued or the persister closes.
func (p *AsyncPersister) deliver(l world.Loaded) {
	select {
	case p.loaded <- l:
	case <-p.ctx.Done():
	}
}

// Save queues a snapshot of a chunk. blocks must not be modified afterwards.
func (p *AsyncPersister) Save(coord world.ChunkCoord, blocks []world.BlockType) {
	key := coord.Key()
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.metrics.IncDropped("save_closed")
		return
	}
	if ps, ok := p.pending[key]; ok {
		ps.latest = blocks
		ps.queued = true
		p.mu.Unlock()
		return
	}
	p.pending[key] = &pendingSave{latest: blocks, queued: true}
	p.mu.Unlock()

	p.pool.Submit(func() { p.drain(coord) })
}

// drain writes the newest snapshot of coord until no newer one is queued.
func (p *AsyncPersister) drain(coord world.ChunkCoord) {
	key := coord.Key()
	for {
		p.mu.Lock()
		ps := p.pending[key]
		if !ps.queued {
			delete(p.pending, key)
			p.mu.Unlock()
			return
		}
		ps.queued = false
		blocks := ps.latest
		p.mu.Unlock()

		// a cancelled wait means Close is flushing; write anyway
		_ = p.limiter.Wait(p.ctx)
		data, err := EncodeBlocks(blocks)
		if err == nil {
			err = p.store.Put(ChunkKey(coord), data)
		}
		if err != nil {
			p.log.Warn("chunk save failed", zap.Stringer("chunk", coord), zap.Error(err))
			p.metrics.IncDropped("save_error")
			continue
		}
		p.metrics.IncSaved()
	}
}

// Pending returns the number of chunks with a save in flight.
func (p *AsyncPersister) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Close stops accepting work, flushes queued saves without throttling and
// closes the store.
func (p *AsyncPersister) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.limiter.SetLimit(rate.Inf)
	p.cancel()
	p.pool.StopAndWait()
	return p.store.Close()
}
