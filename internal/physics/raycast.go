package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"voxelcore/internal/registry"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 5.0
)

// Hit stores the result of a raycast. Block is the voxel hit, Normal the
// face entered (zero when the ray starts inside a solid voxel) and T the
// distance travelled along the normalised direction.
type Hit struct {
	Hit    bool
	Block  [3]int
	Normal [3]int
	T      float64
}

// Adjacent returns the voxel in front of the hit face, where a placed block goes.
func (h Hit) Adjacent() [3]int {
	return [3]int{h.Block[0] + h.Normal[0], h.Block[1] + h.Normal[1], h.Block[2] + h.Normal[2]}
}

// Raycast walks the voxel grid from origin along dir (Amanatides & Woo) and
// returns the first solid voxel within maxDist.
func Raycast(src BlockSource, reg *registry.Registry, origin, dir mgl64.Vec3, maxDist float64) Hit {
	cell := [3]int{minCell(origin.X()), minCell(origin.Y()), minCell(origin.Z())}
	if solidAt(src, reg, cell[0], cell[1], cell[2]) {
		return Hit{Hit: true, Block: cell}
	}

	l := dir.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(maxDist, 0) || math.IsNaN(maxDist) {
		return Hit{}
	}
	dir = dir.Mul(1 / l)

	var (
		step   [3]int
		tMax   [3]float64
		tDelta [3]float64
	)
	for i := 0; i < 3; i++ {
		d := dir[i]
		if d > 0 {
			step[i] = 1
		} else {
			step[i] = -1
		}
		if d == 0 {
			// never crosses a boundary on this axis
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
			continue
		}
		boundary := float64(cell[i])
		if step[i] > 0 {
			boundary++
		}
		tMax[i] = (boundary - origin[i]) / d
		tDelta[i] = math.Abs(1 / d)
	}

	for {
		var axis int
		if tMax[0] < tMax[1] {
			if tMax[0] < tMax[2] {
				axis = 0
			} else {
				axis = 2
			}
		} else {
			if tMax[1] < tMax[2] {
				axis = 1
			} else {
				axis = 2
			}
		}

		dist := tMax[axis]
		if dist > maxDist {
			return Hit{}
		}
		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]

		if solidAt(src, reg, cell[0], cell[1], cell[2]) {
			var n [3]int
			n[axis] = -step[axis]
			return Hit{Hit: true, Block: cell, Normal: n, T: dist}
		}
	}
}
