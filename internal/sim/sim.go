// Package sim ties the world, physics, meshing and entities together into a
// single-threaded simulation advanced in fixed ticks.
package sim

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"voxelcore/internal/atlas"
	"voxelcore/internal/entity"
	"voxelcore/internal/meshing"
	"voxelcore/internal/metrics"
	"voxelcore/internal/physics"
	"voxelcore/internal/profiling"
	"voxelcore/internal/registry"
	"voxelcore/internal/snapshot"
	"voxelcore/internal/world"
)

// Frame is what a Renderer receives after the ticks of one frame.
type Frame struct {
	Meshes   *meshing.Cache
	Entities []*entity.Entity
	Focus    *entity.Entity
	Alpha    float64 // fraction of a tick not yet simulated
	Tick     uint64
}

// Renderer draws a frame. GPU upload lives behind this interface.
type Renderer interface {
	Render(f Frame)
}

// Options configures a Simulation. World and Registry are required.
type Options struct {
	World       *world.World
	Registry    *registry.Registry
	Tiles       meshing.TileSource
	Gravity     float64
	MaxStep     float64
	Reach       float64
	MeshWorkers int
	SlowTick    time.Duration
	Inbox       *snapshot.Inbox
	Renderer    Renderer
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// TickStats summarises the work done by the last Tick.
type TickStats struct {
	Restored int
	Applied  int
	Stream   world.StreamResult
	Remeshed int
	Duration time.Duration
}

// Simulation owns every simulation subsystem. All methods must be called
// from one goroutine.
type Simulation struct {
	world    *world.World
	reg      *registry.Registry
	engine   *physics.Engine
	pool     *meshing.WorkerPool
	meshes   *meshing.Cache
	entities *entity.Manager
	applier  *snapshot.Applier
	inbox    *snapshot.Inbox
	renderer Renderer
	log      *zap.Logger
	metrics  *metrics.Metrics

	focus    uuid.UUID
	reach    float64
	slowTick time.Duration
	ticks    uint64
	last     TickStats
}

type fullTiles struct{}

func (fullTiles) TileFor(world.BlockType) atlas.UV { return atlas.Full }

// New builds a simulation around an existing world.
func New(opts Options) *Simulation {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Tiles == nil {
		opts.Tiles = fullTiles{}
	}
	engine := physics.NewEngine(opts.World, opts.Registry)
	if opts.Gravity != 0 {
		engine.Gravity = opts.Gravity
	}
	if opts.MaxStep > 0 {
		engine.MaxStep = opts.MaxStep
	}
	reach := opts.Reach
	if reach <= 0 || reach > physics.MaxReachDistance {
		reach = physics.MaxReachDistance
	}
	if reach < physics.MinReachDistance {
		reach = physics.MinReachDistance
	}

	pool := meshing.NewWorkerPool(opts.MeshWorkers, opts.Registry, opts.Tiles)
	return &Simulation{
		world:    opts.World,
		reg:      opts.Registry,
		engine:   engine,
		pool:     pool,
		meshes:   meshing.NewCache(pool, opts.Logger, opts.Metrics),
		entities: entity.NewManager(opts.Metrics),
		applier:  snapshot.NewApplier(opts.World, opts.Logger, opts.Metrics),
		inbox:    opts.Inbox,
		renderer: opts.Renderer,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		reach:    reach,
		slowTick: opts.SlowTick,
	}
}

func (s *Simulation) World() *world.World        { return s.world }
func (s *Simulation) Engine() *physics.Engine    { return s.engine }
func (s *Simulation) Entities() *entity.Manager  { return s.entities }
func (s *Simulation) Meshes() *meshing.Cache     { return s.meshes }
func (s *Simulation) Applier() *snapshot.Applier { return s.applier }
func (s *Simulation) Ticks() uint64              { return s.ticks }
func (s *Simulation) LastTick() TickStats        { return s.last }

// Spawn adds an entity to the simulation.
func (s *Simulation) Spawn(e *entity.Entity) { s.entities.Add(e) }

// SetFocus selects the entity the world streams around.
func (s *Simulation) SetFocus(id uuid.UUID) { s.focus = id }

// Focus returns the focus entity or nil.
func (s *Simulation) Focus() *entity.Entity { return s.entities.Get(s.focus) }

// Tick advances the simulation by dt: persisted chunks and network
// snapshots first, then streaming around the focus, entity physics and
// finally the meshes of chunks changed by any of those.
func (s *Simulation) Tick(dt float64) {
	profiling.ResetTick()
	start := time.Now()
	defer s.metrics.Track("sim.Tick")()

	var st TickStats
	st.Restored = s.world.Pump()
	if s.inbox != nil {
		st.Applied = s.inbox.Drain(s.applier)
	}

	if f := s.Focus(); f != nil {
		p := f.Body.Pos
		c := s.world.ChunkAt(p.X(), p.Y(), p.Z())
		st.Stream = s.world.UpdateStreaming(c.X, c.Y, c.Z)
		if st.Stream.Evicted > 0 {
			s.meshes.Prune(s.world)
		}
	}

	s.entities.Step(s.engine, s.world, dt)
	st.Remeshed = s.meshes.RebuildDirty(s.world)

	s.ticks++
	st.Duration = time.Since(start)
	s.last = st
	if s.slowTick > 0 && st.Duration > s.slowTick {
		s.log.Warn("slow tick",
			zap.Uint64("tick", s.ticks),
			zap.Duration("took", st.Duration),
			zap.String("top", profiling.TopN(5)),
		)
	}
}

// Render hands the current state to the renderer, if any.
func (s *Simulation) Render(alpha float64) {
	if s.renderer == nil {
		return
	}
	s.renderer.Render(Frame{
		Meshes:   s.meshes,
		Entities: s.entities.All(),
		Focus:    s.Focus(),
		Alpha:    alpha,
		Tick:     s.ticks,
	})
}

// Close stops the mesh workers.
func (s *Simulation) Close() {
	s.pool.Shutdown()
}
