package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/registry"
	"voxelcore/internal/world"
)

var playerHalf = mgl64.Vec3{0.3, 0.9, 0.3}

func floorWorld(size int) *world.World {
	w := world.NewEmpty()
	for x := -size; x <= size; x++ {
		for z := -size; z <= size; z++ {
			w.SetBlock(x, 0, z, world.BlockTypeStone)
		}
	}
	return w
}

func TestStepRestingOnGround(t *testing.T) {
	w := world.NewEmpty()
	w.SetBlock(0, 0, 0, world.BlockTypeStone)
	e := NewEngine(w, registry.Default())

	b := &Body{Pos: mgl64.Vec3{0.5, 1.9, 0.5}, Half: playerHalf}
	e.Step(b, 1.0/60.0)

	assert.True(t, b.Contacts.OnGround)
	assert.Equal(t, 0.0, b.Vel.Y())
	require.Len(t, b.Contacts.Normals, 1)
	assert.InDelta(t, 1.0, b.Contacts.Normals[0].Y(), 1e-9)
	assert.InDelta(t, 1.9, b.Pos.Y(), 0.01)
	assert.False(t, e.Collides(b))
}

func TestStepFallsOntoFloor(t *testing.T) {
	w := floorWorld(3)
	e := NewEngine(w, registry.Default())

	b := &Body{Pos: mgl64.Vec3{0.5, 6, 0.5}, Half: playerHalf}
	for _n := 0; _n < 120; _n++ {
		e.Step(b, 1.0/60.0)
	}
	assert.True(t, b.Contacts.OnGround)
	assert.InDelta(t, 1.9, b.Pos.Y(), 0.01)
	assert.Equal(t, 0.0, b.Vel.Y())
}

func TestStepLargeDtDoesNotTunnel(t *testing.T) {
	w := floorWorld(2)
	e := NewEngine(w, registry.Default())

	b := &Body{Pos: mgl64.Vec3{0.5, 3, 0.5}, Vel: mgl64.Vec3{0, -20, 0}, Half: playerHalf}
	e.Step(b, 0.2)

	assert.True(t, b.Contacts.OnGround)
	assert.GreaterOrEqual(t, b.Pos.Y()-b.Half.Y(), 1.0)
	assert.Less(t, b.Pos.Y(), 2.0)
}

func TestStepSlidesAlongWall(t *testing.T) {
	w := floorWorld(4)
	for z := -4; z <= 4; z++ {
		for y := 1; y <= 3; y++ {
			w.SetBlock(2, y, z, world.BlockTypeStone)
		}
	}
	e := NewEngine(w, registry.Default())

	b := &Body{Pos: mgl64.Vec3{1.0, 1.9, 0.5}, Vel: mgl64.Vec3{4, 0, 2}, Half: playerHalf}
	for _n := 0; _n < 30; _n++ {
		b.Vel[0] = 4
		b.Vel[2] = 2
		e.Step(b, 1.0/60.0)
	}

	assert.LessOrEqual(t, b.Pos.X()+b.Half.X(), 2.0+1e-9)
	assert.Greater(t, b.Pos.Z(), 1.0, "motion along the wall must survive")
	assert.True(t, b.Contacts.OnGround)

	var sawWall bool
	for _, n := range b.Contacts.Normals {
		if n.X() < -0.5 {
			sawWall = true
		}
	}
	assert.True(t, sawWall)
}

func TestContactsResetEachStep(t *testing.T) {
	w := world.NewEmpty()
	w.SetBlock(0, 0, 0, world.BlockTypeStone)
	e := NewEngine(w, registry.Default())

	b := &Body{Pos: mgl64.Vec3{0.5, 1.9, 0.5}, Half: playerHalf}
	e.Step(b, 1.0/60.0)
	require.True(t, b.Contacts.OnGround)

	b.Pos = mgl64.Vec3{0.5, 40, 0.5}
	e.Step(b, 1.0/60.0)
	assert.False(t, b.Contacts.OnGround)
	assert.Empty(t, b.Contacts.Normals)
}

func TestLeavesAreSolidWaterIsNot(t *testing.T) {
	w := world.NewEmpty()
	reg := registry.Default()
	w.SetBlock(0, 0, 0, world.BlockTypeLeaves)
	w.SetBlock(3, 0, 0, world.BlockTypeWater)

	assert.True(t, Collides(w, reg, mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0.1, 0.1, 0.1}))
	assert.False(t, Collides(w, reg, mgl64.Vec3{3.5, 0.5, 0.5}, mgl64.Vec3{0.1, 0.1, 0.1}))
}

func TestCollidesTouchingFaceIsClear(t *testing.T) {
	w := world.NewEmpty()
	reg := registry.Default()
	w.SetBlock(0, 0, 0, world.BlockTypeStone)

	tests := []struct {
		name string
		pos  mgl64.Vec3
		want bool
	}{
		{"resting on top", mgl64.Vec3{0.5, 1.9, 0.5}, false},
		{"touching +x side", mgl64.Vec3{1.3, 0.5, 0.5}, false},
		{"touching -x side", mgl64.Vec3{-0.3, 0.5, 0.5}, false},
		{"sunk into top", mgl64.Vec3{0.5, 1.85, 0.5}, true},
		{"overlapping corner", mgl64.Vec3{1.2, 1.8, 1.2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Collides(w, reg, tt.pos, playerHalf))
		})
	}
}

func TestGroundBelow(t *testing.T) {
	w := floorWorld(1)
	reg := registry.Default()

	top, ok := GroundBelow(w, reg, 0.5, 10, 0.5, 32)
	require.True(t, ok)
	assert.Equal(t, 1.0, top)

	_, ok = GroundBelow(w, reg, 20.5, 10, 0.5, 8)
	assert.False(t, ok)
}

func TestStepCapsLongFrames(t *testing.T) {
	e := NewEngine(world.NewEmpty(), registry.Default())

	capped := &Body{Pos: mgl64.Vec3{0.5, 100, 0.5}, Vel: mgl64.Vec3{1, 0, 0}, Half: playerHalf}
	e.Step(capped, MaxStepTime)

	stalled := &Body{Pos: mgl64.Vec3{0.5, 100, 0.5}, Vel: mgl64.Vec3{1, 0, 0}, Half: playerHalf}
	e.Step(stalled, 1e9)

	assert.Equal(t, capped.Pos, stalled.Pos)
	assert.Equal(t, capped.Vel, stalled.Vel)
	assert.InDelta(t, 0.75, stalled.Pos.X(), 1e-9)
}

func TestPhysicsReadsOnlyLoadedChunks(t *testing.T) {
	w := world.New(world.Options{Generator: world.NewFlatGenerator(4)})
	reg := registry.Default()
	e := NewEngine(w, reg)

	b := &Body{Pos: mgl64.Vec3{0.5, 5.9, 0.5}, Half: playerHalf}
	e.Step(b, 1.0/60.0)
	assert.False(t, b.Contacts.OnGround, "unloaded terrain is air")
	assert.False(t, Collides(w, reg, mgl64.Vec3{0.5, 2, 0.5}, playerHalf))
	_, ok := GroundBelow(w, reg, 0.5, 10, 0.5, 16)
	assert.False(t, ok)
	assert.False(t, Raycast(w, reg, mgl64.Vec3{0.5, 10, 0.5}, mgl64.Vec3{0, -1, 0}, 8).Hit)
	assert.Zero(t, w.LoadedCount())

	w.UpdateStreaming(0, 0, 0)
	e.Step(b, 1.0/60.0)
	assert.True(t, b.Contacts.OnGround)
}

func BenchmarkStep(b *testing.B) {
	w := floorWorld(4)
	e := NewEngine(w, registry.Default())
	body := &Body{Pos: mgl64.Vec3{0.5, 1.9, 0.5}, Half: playerHalf}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Step(body, 1.0/60.0)
	}
}
