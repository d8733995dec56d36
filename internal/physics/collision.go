package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"voxelcore/internal/registry"
	"voxelcore/internal/world"
)

// BlockSource is the voxel accessor physics and raycasting read from.
// Reads never generate terrain: cells in unloaded chunks are air.
// *world.World satisfies it.
type BlockSource interface {
	LoadedBlock(x, y, z int) world.BlockType
}

// Body is the physics-relevant part of an entity: centre position,
// velocity and half extents of its axis-aligned box.
type Body struct {
	Pos      mgl64.Vec3
	Vel      mgl64.Vec3
	Half     mgl64.Vec3
	Contacts Contacts
}

// Contacts is rebuilt by every Step.
type Contacts struct {
	OnGround bool
	Normals  []mgl64.Vec3
}

// minCell is the voxel containing a box's lower face coordinate.
func minCell(v float64) int {
	return int(math.Floor(v))
}

// maxCell is the last voxel a box's upper face reaches into. A face lying
// exactly on a voxel boundary does not enter the next voxel.
func maxCell(v float64) int {
	return int(math.Ceil(v)) - 1
}

func solidAt(src BlockSource, reg *registry.Registry, x, y, z int) bool {
	return reg.Of(src.LoadedBlock(x, y, z)).Solid
}

// Collides reports whether the box centred at pos overlaps any solid voxel.
func Collides(src BlockSource, reg *registry.Registry, pos, half mgl64.Vec3) bool {
	minX, maxX := minCell(pos.X()-half.X()), maxCell(pos.X()+half.X())
	minY, maxY := minCell(pos.Y()-half.Y()), maxCell(pos.Y()+half.Y())
	minZ, maxZ := minCell(pos.Z()-half.Z()), maxCell(pos.Z()+half.Z())
	for z := minZ; z <= maxZ; z++ {
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				if solidAt(src, reg, x, y, z) {
					return true
				}
			}
		}
	}
	return false
}

// contactNormal samples the six face centres of the box at pos. A solid
// voxel under a face pushes the normal away from it. When the samples cancel
// or miss, the normal opposes the motion along axis; with no motion it points up.
func contactNormal(src BlockSource, reg *registry.Registry, pos, half mgl64.Vec3, axis int, motion float64) mgl64.Vec3 {
	cx, cy, cz := minCell(pos.X()), minCell(pos.Y()), minCell(pos.Z())
	var n mgl64.Vec3
	if solidAt(src, reg, minCell(pos.X()-half.X()), cy, cz) {
		n[0]++
	}
	if solidAt(src, reg, maxCell(pos.X()+half.X()), cy, cz) {
		n[0]--
	}
	if solidAt(src, reg, cx, minCell(pos.Y()-half.Y()), cz) {
		n[1]++
	}
	if solidAt(src, reg, cx, maxCell(pos.Y()+half.Y()), cz) {
		n[1]--
	}
	if solidAt(src, reg, cx, cy, minCell(pos.Z()-half.Z())) {
		n[2]++
	}
	if solidAt(src, reg, cx, cy, maxCell(pos.Z()+half.Z())) {
		n[2]--
	}
	if l := n.Len(); l > 1e-6 {
		return n.Mul(1 / l)
	}

	var fallback mgl64.Vec3
	switch {
	case motion > 0:
		fallback[axis] = -1
	case motion < 0:
		fallback[axis] = 1
	default:
		fallback[1] = 1
	}
	return fallback
}

// GroundBelow scans down from y for the first solid voxel under (x, z)
// and returns the height of its top face. ok is false when nothing solid
// is found within depth blocks.
func GroundBelow(src BlockSource, reg *registry.Registry, x, y, z float64, depth int) (top float64, ok bool) {
	bx, bz := minCell(x), minCell(z)
	start := minCell(y)
	for by := start; by >= start-depth; by-- {
		if solidAt(src, reg, bx, by, bz) {
			return float64(by + 1), true
		}
	}
	return 0, false
}
