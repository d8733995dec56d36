package entity

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/physics"
	"voxelcore/internal/registry"
	"voxelcore/internal/world"
)

type noStep struct{ calls int }

func (s *noStep) Step(*physics.Body, float64) { s.calls++ }

func TestConstructors(t *testing.T) {
	p := NewPlayer(mgl64.Vec3{1, 2, 3})
	assert.Equal(t, KindPlayer, p.Kind)
	assert.Equal(t, HumanoidHalf, p.Body.Half)
	assert.Nil(t, p.Mob)
	assert.NotEqual(t, uuid.Nil, p.ID)

	m := NewMob(mgl64.Vec3{})
	require.NotNil(t, m.Mob)
	assert.Equal(t, DefaultMobHealth, m.Mob.Health)

	d := NewDrop(mgl64.Vec3{}, mgl64.Vec3{0, 4, 0}, world.BlockTypeDirt, 3)
	assert.Equal(t, DropHalf, d.Body.Half)
	assert.Equal(t, 4.0, d.Body.Vel.Y())
	assert.Equal(t, "drop", d.Kind.String())
}

func TestDamage(t *testing.T) {
	m := NewMob(mgl64.Vec3{})
	assert.False(t, m.Damage(4))
	assert.True(t, m.Damage(6))
	assert.True(t, m.Dead())
	assert.False(t, m.Damage(1), "already dead")

	p := NewPlayer(mgl64.Vec3{})
	assert.False(t, p.Damage(100))
	assert.False(t, p.Dead())
}

func TestForward(t *testing.T) {
	e := NewPlayer(mgl64.Vec3{})
	f := e.Forward()
	assert.InDeltaSlice(t, []float64{0, 0, 1}, f[:], 1e-9)
	e.Pitch = -math.Pi / 2
	f = e.Forward()
	assert.InDeltaSlice(t, []float64{0, -1, 0}, f[:], 1e-9)
}

func TestManagerRemovesDeadAndDespawned(t *testing.T) {
	m := NewManager(nil)
	mob := NewMob(mgl64.Vec3{})
	drop := NewDrop(mgl64.Vec3{}, mgl64.Vec3{}, world.BlockTypeStone, 1)
	player := NewPlayer(mgl64.Vec3{})
	m.Add(mob)
	m.Add(drop)
	m.Add(player)
	m.Add(player)
	require.Equal(t, 3, m.Len())

	s := &noStep{}
	m.Step(s, nil, 1)
	assert.Equal(t, 3, s.calls)
	assert.True(t, drop.Drop.CanPickup())

	assert.True(t, m.Remove(mob.ID))
	assert.Nil(t, m.Get(mob.ID))
	m.Step(s, nil, DespawnAge)
	assert.Equal(t, 1, m.Len())
	assert.Same(t, player, m.Get(player.ID))
	assert.Nil(t, m.Get(drop.ID))
	assert.False(t, m.Remove(drop.ID))
}

func TestPlayerLandsOnFlatWorld(t *testing.T) {
	w := world.New(world.Options{Generator: world.NewFlatGenerator(4), ViewRadius: 1})
	w.UpdateStreaming(0, 0, 0)
	engine := physics.NewEngine(w, registry.Default())
	m := NewManager(nil)
	p := NewPlayer(mgl64.Vec3{0.5, 10, 0.5})
	m.Add(p)

	for _n := 0; _n < 120; _n++ {
		m.Step(engine, w, 1.0/60)
	}
	assert.True(t, p.OnGround())
	assert.InDelta(t, 5.9, p.Body.Pos.Y(), 0.01)
}

type loadedBelow float64

func (a loadedBelow) IsLoadedAt(x, _, _ float64) bool { return x < float64(a) }

func TestStepFreezesEntitiesOutsideLoadedArea(t *testing.T) {
	m := NewManager(nil)
	near := NewMob(mgl64.Vec3{0.5, 10, 0.5})
	far := NewMob(mgl64.Vec3{500.5, 10, 0.5})
	drop := NewDrop(mgl64.Vec3{500.5, 10, 0.5}, mgl64.Vec3{}, world.BlockTypeStone, 1)
	m.Add(near)
	m.Add(far)
	m.Add(drop)

	s := &noStep{}
	m.Step(s, loadedBelow(100), DespawnAge)
	assert.Equal(t, 1, s.calls)
	assert.Equal(t, 3, m.Len(), "frozen drops do not age out")
	assert.False(t, drop.Drop.CanPickup())

	m.Step(s, loadedBelow(1000), DespawnAge)
	assert.Equal(t, 4, s.calls)
	assert.Equal(t, 2, m.Len())
}

func TestPick(t *testing.T) {
	m := NewManager(nil)
	caster := NewPlayer(mgl64.Vec3{0, 0, 0})
	near := NewMob(mgl64.Vec3{0.2, 0, 3})
	far := NewMob(mgl64.Vec3{0, 0, 5})
	off := NewMob(mgl64.Vec3{2, 0, 1})
	for _, e := range []*Entity{caster, far, off, near} {
		m.Add(e)
	}

	got, dist := m.Pick(caster.Eye(), mgl64.Vec3{0, 0, 2}, 10, caster.ID)
	assert.Same(t, near, got)
	assert.InDelta(t, 3.0, dist, 1e-9)

	got, _ = m.Pick(caster.Eye(), mgl64.Vec3{0, 0, 1}, 2, caster.ID)
	assert.Nil(t, got)

	got, _ = m.Pick(caster.Eye(), mgl64.Vec3{0, 0, -1}, 10, caster.ID)
	assert.Nil(t, got)
}
