package world

// BlockType identifies a block kind. Properties live in the registry.
type BlockType uint16

const (
	BlockTypeAir BlockType = iota
	BlockTypeGrass
	BlockTypeDirt
	BlockTypeStone
	BlockTypeSand
	BlockTypeWater
	BlockTypeLog
	BlockTypeLeaves
	BlockTypePlanks
	BlockTypeCoalOre
	BlockTypeIronOre
	BlockTypeGoldOre
	BlockTypeDiamondOre
)

// BlockEdit is a single local-coordinate change inside one chunk,
// as delivered by a network delta.
type BlockEdit struct {
	X, Y, Z int
	Block   BlockType
}
