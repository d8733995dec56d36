package entity

import (
	"github.com/go-gl/mathgl/mgl64"

	"voxelcore/internal/world"
)

const (
	// DespawnAge is how long a drop lives, in seconds.
	DespawnAge = 300.0
	// PickupDelay is the time before a fresh drop may be collected.
	PickupDelay = 0.5
)

// DropState is set for KindDrop.
type DropState struct {
	Item  world.BlockType
	Count int
	Age   float64
}

// NewDrop creates an item drop tossed upward with vel.
func NewDrop(pos, vel mgl64.Vec3, item world.BlockType, count int) *Entity {
	e := newEntity(KindDrop, pos, DropHalf)
	e.Body.Vel = vel
	e.Drop = &DropState{Item: item, Count: count}
	return e
}

// age advances a drop and kills it once it reaches DespawnAge.
func (d *DropState) age(e *Entity, dt float64) {
	d.Age += dt
	if d.Age >= DespawnAge {
		e.dead = true
	}
}

// CanPickup reports whether the pickup delay has passed.
func (d *DropState) CanPickup() bool {
	return d.Age >= PickupDelay
}
