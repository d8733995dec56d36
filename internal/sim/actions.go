package sim

import (
	"github.com/go-gl/mathgl/mgl64"

	"voxelcore/internal/entity"
	"voxelcore/internal/physics"
	"voxelcore/internal/world"
)

const (
	attackReach  = 3.0
	pickupRadius = 1.0
)

// dropToss is the initial velocity of a drop spawned by Break.
var dropToss = mgl64.Vec3{0, 4, 0}

// Target casts the view ray of e against the world.
func (s *Simulation) Target(e *entity.Entity) physics.Hit {
	return physics.Raycast(s.world, s.reg, e.Eye(), e.Forward(), s.reach)
}

// Break removes the targeted block, spawns a drop for it and returns the
// removed id.
func (s *Simulation) Break(e *entity.Entity) (world.BlockType, bool) {
	hit := s.Target(e)
	if !hit.Hit {
		return world.BlockTypeAir, false
	}
	x, y, z := hit.Block[0], hit.Block[1], hit.Block[2]
	id := s.world.GetBlock(x, y, z)
	s.world.SetBlock(x, y, z, world.BlockTypeAir)
	center := mgl64.Vec3{float64(x) + 0.5, float64(y) + 0.5, float64(z) + 0.5}
	s.entities.Add(entity.NewDrop(center, dropToss, id, 1))
	return id, true
}

// Place puts id against the targeted face. It fails when the cell is
// occupied by a block or would overlap an entity.
func (s *Simulation) Place(e *entity.Entity, id world.BlockType) bool {
	hit := s.Target(e)
	if !hit.Hit || hit.Normal == [3]int{} {
		return false
	}
	cell := hit.Adjacent()
	if s.world.GetBlock(cell[0], cell[1], cell[2]) != world.BlockTypeAir {
		return false
	}
	if s.reg.IsSolid(id) {
		for _, other := range s.entities.All() {
			if other.Kind != entity.KindDrop && overlapsCell(other.Body, cell) {
				return false
			}
		}
	}
	s.world.SetBlock(cell[0], cell[1], cell[2], id)
	return true
}

func overlapsCell(b physics.Body, cell [3]int) bool {
	for i := 0; i < 3; i++ {
		lo, hi := b.Pos[i]-b.Half[i], b.Pos[i]+b.Half[i]
		if hi <= float64(cell[i]) || lo >= float64(cell[i]+1) {
			return false
		}
	}
	return true
}

// Attack damages the entity in front of e when no block is closer and
// returns it along with whether it died.
func (s *Simulation) Attack(e *entity.Entity, damage float64) (*entity.Entity, bool) {
	target, dist := s.entities.Pick(e.Eye(), e.Forward(), attackReach, e.ID)
	if target == nil {
		return nil, false
	}
	if hit := s.Target(e); hit.Hit && hit.T < dist {
		return nil, false
	}
	return target, target.Damage(damage)
}

// CollectDrops removes the drops within reach of e whose pickup delay has
// passed and returns their contents.
func (s *Simulation) CollectDrops(e *entity.Entity) []entity.DropState {
	var out []entity.DropState
	for _, other := range s.entities.All() {
		if other.Drop == nil || other.Dead() || !other.Drop.CanPickup() {
			continue
		}
		if other.Body.Pos.Sub(e.Body.Pos).LenSqr() < pickupRadius*pickupRadius {
			out = append(out, *other.Drop)
			other.Kill()
		}
	}
	return out
}
