package entity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"voxelcore/internal/metrics"
	"voxelcore/internal/physics"
)

// Stepper integrates one body. *physics.Engine satisfies it.
type Stepper interface {
	Step(b *physics.Body, dt float64)
}

// Area reports whether the terrain around a position is loaded.
// *world.World satisfies it.
type Area interface {
	IsLoadedAt(x, y, z float64) bool
}

// pickRadius is the sphere tested by Pick around an entity centre.
const pickRadius = 0.6

// Manager owns the live entities in insertion order. Not safe for
// concurrent use; it runs on the simulation goroutine.
type Manager struct {
	entities []*Entity
	byID     map[uuid.UUID]*Entity
	metrics  *metrics.Metrics
}

// NewManager creates an empty manager.
func NewManager(m *metrics.Metrics) *Manager {
	return &Manager{byID: make(map[uuid.UUID]*Entity), metrics: m}
}

// Add registers an entity.
func (m *Manager) Add(e *Entity) {
	if _, ok := m.byID[e.ID]; ok {
		return
	}
	m.entities = append(m.entities, e)
	m.byID[e.ID] = e
}

// Remove marks an entity dead; it is dropped on the next Step.
func (m *Manager) Remove(id uuid.UUID) bool {
	e, ok := m.byID[id]
	if ok {
		e.Kill()
	}
	return ok
}

// Get returns a live entity or nil.
func (m *Manager) Get(id uuid.UUID) *Entity {
	if e := m.byID[id]; e != nil && !e.dead {
		return e
	}
	return nil
}

// All returns a copy of the entity list.
func (m *Manager) All() []*Entity {
	out := make([]*Entity, len(m.entities))
	copy(out, m.entities)
	return out
}

// Len returns the number of tracked entities.
func (m *Manager) Len() int { return len(m.entities) }

// Step advances every entity by dt and removes the dead ones. Entities
// whose chunk area reports unloaded are frozen: they neither move nor age.
// A nil area treats everything as loaded.
func (m *Manager) Step(s Stepper, area Area, dt float64) {
	defer m.metrics.Track("entity.Step")()

	alive := 0
	for _, e := range m.entities {
		if !e.dead && (area == nil || area.IsLoadedAt(e.Body.Pos.X(), e.Body.Pos.Y(), e.Body.Pos.Z())) {
			s.Step(&e.Body, dt)
			if e.Drop != nil {
				e.Drop.age(e, dt)
			}
		}
		if e.dead {
			delete(m.byID, e.ID)
			continue
		}
		m.entities[alive] = e
		alive++
	}
	clear(m.entities[alive:])
	m.entities = m.entities[:alive]
}

// Pick returns the nearest entity whose centre lies within pickRadius of
// the ray, along with its distance. exclude is skipped (usually the caster).
func (m *Manager) Pick(origin, dir mgl64.Vec3, maxDist float64, exclude uuid.UUID) (*Entity, float64) {
	l := dir.Len()
	if l == 0 {
		return nil, 0
	}
	dir = dir.Mul(1 / l)

	var best *Entity
	bestT := math.Inf(1)
	for _, e := range m.entities {
		if e.dead || e.ID == exclude {
			continue
		}
		v := e.Body.Pos.Sub(origin)
		t := v.Dot(dir)
		if t < 0 || t > maxDist {
			continue
		}
		closest := origin.Add(dir.Mul(t))
		if e.Body.Pos.Sub(closest).LenSqr() < pickRadius*pickRadius && t < bestT {
			best, bestT = e, t
		}
	}
	if best == nil {
		return nil, 0
	}
	return best, bestT
}
