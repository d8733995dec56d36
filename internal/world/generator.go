package world

import (
	"math"
)

// TerrainGenerator fills freshly allocated chunks. Implementations must be
// pure functions of world coordinates and their own immutable settings.
type TerrainGenerator interface {
	PopulateChunk(c *Chunk)
	HeightAt(x, z int) int
}

// GeneratorSettings tunes the height field.
type GeneratorSettings struct {
	SeaLevel    int
	HeightRange float64
	Octaves     int
	Frequency   float64
	Persistence float64
	Lacunarity  float64
}

// DefaultGeneratorSettings returns the stock terrain shape.
func DefaultGeneratorSettings() GeneratorSettings {
	return GeneratorSettings{
		SeaLevel:    28,
		HeightRange: 40,
		Octaves:     4,
		Frequency:   0.01,
		Persistence: 0.5,
		Lacunarity:  2.0,
	}
}

const (
	ridgeOffset    = 1000
	ridgeSeedShift = 999
	treeSeedShift  = 5003
	trunkSeedShift = 5009

	treeChance  = 57
	trunkMin    = 4
	trunkRange  = 3
	canopyReach = 3
	canopyLow   = 2
	canopyHigh  = 5
	canopyMid   = 3
	canopyR     = 5
)

// Generator handles seeded terrain generation: a ridged height field,
// soil layers, ore pockets and trees.
type Generator struct {
	seed int64
	s    GeneratorSettings
}

// NewGenerator creates a new generator with default settings.
func NewGenerator(seed int64) *Generator {
	return NewGeneratorWithSettings(seed, DefaultGeneratorSettings())
}

// NewGeneratorWithSettings creates a generator with explicit settings.
func NewGeneratorWithSettings(seed int64, s GeneratorSettings) *Generator {
	return &Generator{seed: seed, s: s}
}

// Seed returns the world seed.
func (g *Generator) Seed() int64 { return g.seed }

func (g *Generator) fractal(x, z float64, seed int64) float64 {
	return octaveNoise2D(x, z, seed, g.s.Octaves, g.s.Frequency, g.s.Persistence, g.s.Lacunarity)
}

// mountainHeight blends base noise with a ridged second sample, in [0,1].
func (g *Generator) mountainHeight(x, z int) float64 {
	base := g.fractal(float64(x), float64(z), g.seed)
	rid := ridge(g.fractal(float64(x+ridgeOffset), float64(z+ridgeOffset), g.seed+ridgeSeedShift))
	return math.Min(1, base*0.5+rid*0.7)
}

// HeightAt computes world surface height (block Y) at world X,Z.
func (g *Generator) HeightAt(x, z int) int {
	return g.s.SeaLevel + int(math.Floor(g.mountainHeight(x, z)*g.s.HeightRange))
}

// terrainAt is the column fill plus ore replacement for one cell.
func (g *Generator) terrainAt(x, y, z, height int) BlockType {
	switch {
	case y <= height-6:
		return g.oreAt(x, y, z)
	case y <= height-1:
		return BlockTypeDirt
	case y == height:
		return BlockTypeGrass
	default:
		return BlockTypeAir
	}
}

func (g *Generator) oreAt(x, y, z int) BlockType {
	r := hash3(x, y, z, g.seed)
	switch {
	case y < 16 && r%197 == 0:
		return BlockTypeDiamondOre
	case y < 32 && r%101 == 0:
		return BlockTypeGoldOre
	case y < 48 && r%67 == 0:
		return BlockTypeIronOre
	case y < 64 && r%37 == 0:
		return BlockTypeCoalOre
	}
	return BlockTypeStone
}

func (g *Generator) hasTree(x, z int) bool {
	return hash2(x+13, z-7, g.seed+treeSeedShift)%treeChance == 0
}

func (g *Generator) trunkHeight(x, z int) int {
	return trunkMin + int(hash2(x, z, g.seed+trunkSeedShift)%trunkRange)
}

type treeSite struct {
	x, z, base, trunk int
}

// PopulateChunk fills a chunk. Trees rooted in neighbouring columns are
// evaluated too, so canopies crossing chunk borders come out identical
// whichever chunk is generated first.
func (g *Generator) PopulateChunk(c *Chunk) {
	size := c.Size()
	ox, oy, oz := size.Origin(c.Coord())

	w := size.X + 2*canopyReach
	d := size.Z + 2*canopyReach
	heights := make([]int, w*d)
	for iz := 0; iz < d; iz++ {
		for ix := 0; ix < w; ix++ {
			heights[iz*w+ix] = g.HeightAt(ox-canopyReach+ix, oz-canopyReach+iz)
		}
	}
	heightAt := func(wx, wz int) int {
		return heights[(wz-oz+canopyReach)*w+(wx-ox+canopyReach)]
	}

	for lz := 0; lz < size.Z; lz++ {
		for lx := 0; lx < size.X; lx++ {
			wx, wz := ox+lx, oz+lz
			h := heightAt(wx, wz)
			if oy > h {
				continue
			}
			for ly := 0; ly < size.Y; ly++ {
				if id := g.terrainAt(wx, oy+ly, wz, h); id != BlockTypeAir {
					c.SetBlock(lx, ly, lz, id)
				}
			}
		}
	}

	var trees []treeSite
	for wz := oz - canopyReach; wz < oz+size.Z+canopyReach; wz++ {
		for wx := ox - canopyReach; wx < ox+size.X+canopyReach; wx++ {
			if g.hasTree(wx, wz) {
				trees = append(trees, treeSite{x: wx, z: wz, base: heightAt(wx, wz) + 1, trunk: g.trunkHeight(wx, wz)})
			}
		}
	}
	top := oy + size.Y
	for _, t := range trees {
		if t.base+canopyHigh < oy || t.base >= top {
			continue
		}
		for i := 0; i < t.trunk; i++ {
			c.SetBlock(t.x-ox, t.base+i-oy, t.z-oz, BlockTypeLog)
		}
	}
	for _, t := range trees {
		if t.base+canopyHigh < oy || t.base+canopyLow >= top {
			continue
		}
		for dz := -canopyReach; dz <= canopyReach; dz++ {
			for dx := -canopyReach; dx <= canopyReach; dx++ {
				for dy := canopyLow; dy <= canopyHigh; dy++ {
					if abs(dx)+abs(dz)+abs(dy-canopyMid) > canopyR {
						continue
					}
					lx, ly, lz := t.x+dx-ox, t.base+dy-oy, t.z+dz-oz
					if size.Contains(lx, ly, lz) && c.GetBlock(lx, ly, lz) == BlockTypeAir {
						c.SetBlock(lx, ly, lz, BlockTypeLeaves)
					}
				}
			}
		}
	}
	c.dirty = true
}

// FlatGenerator builds a stone/dirt/grass slab whose grass layer sits at a fixed height.
type FlatGenerator struct {
	height int
}

// NewFlatGenerator creates a flat generator with the grass surface at height.
func NewFlatGenerator(height int) *FlatGenerator {
	return &FlatGenerator{height: height}
}

// HeightAt returns the fixed surface height.
func (g *FlatGenerator) HeightAt(x, z int) int {
	return g.height
}

// PopulateChunk fills everything up to the surface.
func (g *FlatGenerator) PopulateChunk(c *Chunk) {
	size := c.Size()
	_, oy, _ := size.Origin(c.Coord())
	for ly := 0; ly < size.Y; ly++ {
		wy := oy + ly
		var id BlockType
		switch {
		case wy > g.height:
			continue
		case wy == g.height:
			id = BlockTypeGrass
		case wy > g.height-4:
			id = BlockTypeDirt
		default:
			id = BlockTypeStone
		}
		for lz := 0; lz < size.Z; lz++ {
			for lx := 0; lx < size.X; lx++ {
				c.SetBlock(lx, ly, lz, id)
			}
		}
	}
	c.dirty = true
}

// EmptyGenerator leaves every chunk as air. Used for worlds fed entirely
// by snapshots and for tests.
type EmptyGenerator struct{}

// HeightAt reports no surface.
func (EmptyGenerator) HeightAt(x, z int) int { return math.MinInt32 }

// PopulateChunk does nothing.
func (EmptyGenerator) PopulateChunk(c *Chunk) {}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
