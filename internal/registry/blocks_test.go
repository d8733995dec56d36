package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/world"
)

func TestDefaultTable(t *testing.T) {
	r := Default()
	require.Equal(t, 13, r.Len())

	tests := []struct {
		id     world.BlockType
		name   string
		solid  bool
		opaque bool
	}{
		{world.BlockTypeAir, "Air", false, false},
		{world.BlockTypeGrass, "Grass", true, true},
		{world.BlockTypeStone, "Stone", true, true},
		{world.BlockTypeWater, "Water", false, false},
		{world.BlockTypeLeaves, "Leaves", true, false},
		{world.BlockTypeDiamondOre, "Diamond Ore", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := r.Of(tt.id)
			assert.Equal(t, tt.name, def.Name)
			assert.Equal(t, tt.solid, def.Solid)
			assert.Equal(t, tt.opaque, def.Opaque)
			assert.GreaterOrEqual(t, def.Hardness, float32(0))
		})
	}
}

func TestUnknownIDFallsBackToStone(t *testing.T) {
	r := Default()
	def := r.Of(world.BlockType(999))
	assert.Equal(t, "Stone", def.Name)
	assert.True(t, def.Solid)
	assert.True(t, def.Opaque)
	assert.False(t, r.Known(999))
	assert.True(t, r.IsSolid(999))
}

func TestLookupAndIDs(t *testing.T) {
	r := Default()
	id, ok := r.Lookup("coal ore")
	require.True(t, ok)
	assert.Equal(t, world.BlockTypeCoalOre, id)

	_, ok = r.Lookup("obsidian")
	assert.False(t, ok)

	ids := r.IDs()
	require.Len(t, ids, 13)
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "diamond_ore.png", Default().Of(world.BlockTypeDiamondOre).FileName())
	assert.Equal(t, "log.png", Default().Of(world.BlockTypeLog).FileName())
}
