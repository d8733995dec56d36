// Package entity holds the simulated actors: players, mobs and item drops.
// All kinds share a physics body; kind-specific state lives in an optional
// record that is set only for that kind.
package entity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"voxelcore/internal/physics"
)

// Kind is the closed set of entity variants.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindMob
	KindDrop
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindMob:
		return "mob"
	case KindDrop:
		return "drop"
	}
	return "unknown"
}

// Default half extents of the bounding boxes.
var (
	HumanoidHalf = mgl64.Vec3{0.3, 0.9, 0.3}
	DropHalf     = mgl64.Vec3{0.25, 0.25, 0.25}
)

const DefaultMobHealth = 10.0

// Entity is one simulated actor.
type Entity struct {
	ID   uuid.UUID
	Kind Kind
	Body physics.Body

	// view angles in radians; yaw 0 looks down +Z
	Yaw, Pitch float64

	Mob  *MobState
	Drop *DropState

	dead bool
}

// MobState is set for KindMob.
type MobState struct {
	Health float64
}

func newEntity(kind Kind, pos, half mgl64.Vec3) *Entity {
	return &Entity{
		ID:   uuid.New(),
		Kind: kind,
		Body: physics.Body{Pos: pos, Half: half},
	}
}

// NewPlayer creates a player centred at pos.
func NewPlayer(pos mgl64.Vec3) *Entity {
	return newEntity(KindPlayer, pos, HumanoidHalf)
}

// NewMob creates a mob with default health.
func NewMob(pos mgl64.Vec3) *Entity {
	e := newEntity(KindMob, pos, HumanoidHalf)
	e.Mob = &MobState{Health: DefaultMobHealth}
	return e
}

// Damage subtracts health from a mob and reports whether it died.
// Other kinds ignore damage.
func (e *Entity) Damage(amount float64) bool {
	if e.Mob == nil || e.dead {
		return false
	}
	e.Mob.Health -= amount
	if e.Mob.Health <= 0 {
		e.dead = true
	}
	return e.dead
}

// Dead reports whether the entity should be removed.
func (e *Entity) Dead() bool { return e.dead }

// Kill marks the entity for removal.
func (e *Entity) Kill() { e.dead = true }

// Eye is the camera position. The camera sits at the body centre.
func (e *Entity) Eye() mgl64.Vec3 { return e.Body.Pos }

// Forward is the unit view direction from Yaw and Pitch.
func (e *Entity) Forward() mgl64.Vec3 {
	cp := math.Cos(e.Pitch)
	return mgl64.Vec3{math.Sin(e.Yaw) * cp, math.Sin(e.Pitch), math.Cos(e.Yaw) * cp}
}

// OnGround reports the ground contact from the last physics step.
func (e *Entity) OnGround() bool { return e.Body.Contacts.OnGround }
