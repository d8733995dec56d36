package registry

import (
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/world"
)

// Definition defines the physical and visual properties of a block type
type Definition struct {
	ID       world.BlockType
	Name     string
	Opaque   bool
	Solid    bool
	Color    mgl32.Vec3
	Hardness float32
}

// FileName is the atlas tile name: lower case, spaces as underscores.
func (d Definition) FileName() string {
	return strings.ReplaceAll(strings.ToLower(d.Name), " ", "_") + ".png"
}

// Registry maps block ids to definitions. It is read-only once built and
// safe to share between goroutines.
type Registry struct {
	defs     map[world.BlockType]Definition
	names    map[string]world.BlockType
	fallback Definition
}

// New creates an empty registry whose unknown ids resolve to fallback.
func New(fallback Definition) *Registry {
	return &Registry{
		defs:     make(map[world.BlockType]Definition),
		names:    make(map[string]world.BlockType),
		fallback: fallback,
	}
}

// Register adds or replaces a definition.
func (r *Registry) Register(def Definition) {
	r.defs[def.ID] = def
	r.names[strings.ToLower(def.Name)] = def.ID
}

// Of returns the definition for id. Unknown ids return the fallback
// material, a solid opaque stone, so corrupt data degrades instead of failing.
func (r *Registry) Of(id world.BlockType) Definition {
	if def, ok := r.defs[id]; ok {
		return def
	}
	return r.fallback
}

// Known reports whether id has its own definition.
func (r *Registry) Known(id world.BlockType) bool {
	_, ok := r.defs[id]
	return ok
}

func (r *Registry) IsSolid(id world.BlockType) bool  { return r.Of(id).Solid }
func (r *Registry) IsOpaque(id world.BlockType) bool { return r.Of(id).Opaque }

// Lookup finds a block by case-insensitive name.
func (r *Registry) Lookup(name string) (world.BlockType, bool) {
	id, ok := r.names[strings.ToLower(name)]
	return id, ok
}

// IDs returns the registered ids in ascending order.
func (r *Registry) IDs() []world.BlockType {
	ids := make([]world.BlockType, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of registered blocks.
func (r *Registry) Len() int { return len(r.defs) }

var stone = Definition{ID: world.BlockTypeStone, Name: "Stone", Opaque: true, Solid: true, Color: mgl32.Vec3{0.6, 0.6, 0.6}, Hardness: 1.5}

// Default returns the stock block table.
func Default() *Registry {
	r := New(stone)
	for _, def := range []Definition{
		{ID: world.BlockTypeAir, Name: "Air"},
		{ID: world.BlockTypeGrass, Name: "Grass", Opaque: true, Solid: true, Color: mgl32.Vec3{0.3, 0.8, 0.3}, Hardness: 0.6},
		{ID: world.BlockTypeDirt, Name: "Dirt", Opaque: true, Solid: true, Color: mgl32.Vec3{0.42, 0.32, 0.26}, Hardness: 0.5},
		stone,
		{ID: world.BlockTypeSand, Name: "Sand", Opaque: true, Solid: true, Color: mgl32.Vec3{0.95, 0.90, 0.65}, Hardness: 0.5},
		{ID: world.BlockTypeWater, Name: "Water", Color: mgl32.Vec3{0.2, 0.4, 0.9}, Hardness: 1000},
		{ID: world.BlockTypeLog, Name: "Log", Opaque: true, Solid: true, Color: mgl32.Vec3{0.45, 0.35, 0.24}, Hardness: 2.0},
		// leaves block movement but not sight
		{ID: world.BlockTypeLeaves, Name: "Leaves", Solid: true, Color: mgl32.Vec3{0.25, 0.7, 0.25}, Hardness: 0.2},
		{ID: world.BlockTypePlanks, Name: "Planks", Opaque: true, Solid: true, Color: mgl32.Vec3{0.7, 0.56, 0.4}, Hardness: 1.5},
		{ID: world.BlockTypeCoalOre, Name: "Coal Ore", Opaque: true, Solid: true, Color: mgl32.Vec3{0.2, 0.2, 0.2}, Hardness: 3.0},
		{ID: world.BlockTypeIronOre, Name: "Iron Ore", Opaque: true, Solid: true, Color: mgl32.Vec3{0.7, 0.55, 0.4}, Hardness: 3.0},
		{ID: world.BlockTypeGoldOre, Name: "Gold Ore", Opaque: true, Solid: true, Color: mgl32.Vec3{0.9, 0.8, 0.3}, Hardness: 3.0},
		{ID: world.BlockTypeDiamondOre, Name: "Diamond Ore", Opaque: true, Solid: true, Color: mgl32.Vec3{0.3, 0.9, 0.9}, Hardness: 3.0},
	} {
		r.Register(def)
	}
	return r
}
