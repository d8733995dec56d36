package physics

import (
	"math"

	"voxelcore/internal/registry"
)

const (
	DefaultGravity = -9.8
	DefaultMaxStep = 0.05

	// MaxStepTime bounds the time one Step integrates; the rest is dropped.
	MaxStepTime = 0.25

	nudgeStep    = 1e-3
	maxNudges    = 4096
	minRemaining = 1e-6
)

// Engine integrates bodies against the voxel grid.
type Engine struct {
	Gravity float64
	MaxStep float64

	src BlockSource
	reg *registry.Registry
}

// NewEngine creates an engine with default gravity and substep size.
func NewEngine(src BlockSource, reg *registry.Registry) *Engine {
	return &Engine{
		Gravity: DefaultGravity,
		MaxStep: DefaultMaxStep,
		src:     src,
		reg:     reg,
	}
}

// Collides reports whether a box overlaps solid voxels.
func (e *Engine) Collides(b *Body) bool {
	return Collides(e.src, e.reg, b.Pos, b.Half)
}

// Step advances b by dt, capped at MaxStepTime, in substeps of at most
// MaxStep. Each substep applies gravity, then moves and resolves the axes
// in X, Y, Z order so that a blocked axis does not cancel motion along the
// others.
func (e *Engine) Step(b *Body, dt float64) {
	b.Contacts = Contacts{}
	maxStep := e.MaxStep
	if maxStep <= 0 {
		maxStep = DefaultMaxStep
	}

	for t := math.Min(dt, MaxStepTime); t > minRemaining; {
		h := math.Min(maxStep, t)
		t -= h

		b.Vel[1] += e.Gravity * h
		next := b.Pos.Add(b.Vel.Mul(h))

		pos := b.Pos
		for axis := 0; axis < 3; axis++ {
			p := pos
			p[axis] = next[axis]
			if !Collides(e.src, e.reg, p, b.Half) {
				pos = p
				continue
			}

			n := contactNormal(e.src, e.reg, p, b.Half, axis, next[axis]-pos[axis])
			b.Vel[axis] = 0
			b.Contacts.Normals = append(b.Contacts.Normals, n)
			if n.Y() > 0.5 {
				b.Contacts.OnGround = true
			}
			for i := 0; i < maxNudges && Collides(e.src, e.reg, p, b.Half); i++ {
				p = p.Add(n.Mul(nudgeStep))
			}
			pos = p
		}
		b.Pos = pos
	}
}
