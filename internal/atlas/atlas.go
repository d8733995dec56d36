// Package atlas packs one square tile per registered block into a single
// RGBA image and hands out the UV rectangle of each tile.
package atlas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"voxelcore/internal/registry"
	"voxelcore/internal/world"
)

// UV is a tile rectangle in normalised texture coordinates.
type UV struct {
	U0, V0, U1, V1 float32
}

// Full covers the whole texture; unknown blocks map to it.
var Full = UV{U0: 0, V0: 0, U1: 1, V1: 1}

// Atlas is an immutable tile grid.
type Atlas struct {
	tileSize int
	dim      int
	img      *image.RGBA
	tiles    map[world.BlockType]UV
	textured int
}

// Build lays out the registry's blocks in id order on a ceil(sqrt(n))
// square grid. A tile is read from dir/<file name> when dir is set and the
// file exists, scaled to tileSize; otherwise it is filled with the block colour.
func Build(reg *registry.Registry, tileSize int, dir string) (*Atlas, error) {
	if tileSize <= 0 {
		return nil, fmt.Errorf("atlas: tile size must be positive, got %d", tileSize)
	}
	ids := reg.IDs()
	dim := int(math.Ceil(math.Sqrt(float64(len(ids)))))
	if dim == 0 {
		dim = 1
	}
	side := dim * tileSize
	a := &Atlas{
		tileSize: tileSize,
		dim:      dim,
		img:      image.NewRGBA(image.Rect(0, 0, side, side)),
		tiles:    make(map[world.BlockType]UV, len(ids)),
	}

	for i, id := range ids {
		def := reg.Of(id)
		x := (i % dim) * tileSize
		y := (i / dim) * tileSize
		rect := image.Rect(x, y, x+tileSize, y+tileSize)

		src, err := loadTile(dir, def.FileName())
		if err != nil {
			return nil, err
		}
		if src != nil {
			draw.NearestNeighbor.Scale(a.img, rect, src, src.Bounds(), draw.Src, nil)
			a.textured++
		} else {
			draw.Draw(a.img, rect, image.NewUniform(toRGBA(def)), image.Point{}, draw.Src)
		}

		sf := float32(side)
		a.tiles[id] = UV{
			U0: float32(x) / sf,
			V0: float32(y) / sf,
			U1: float32(x+tileSize) / sf,
			V1: float32(y+tileSize) / sf,
		}
	}
	return a, nil
}

func loadTile(dir, name string) (image.Image, error) {
	if dir == "" {
		return nil, nil
	}
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("atlas: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("atlas: decode %s: %w", path, err)
	}
	return img, nil
}

func toRGBA(def registry.Definition) color.RGBA {
	c := def.Color
	return color.RGBA{
		R: uint8(math.Floor(float64(c.X()) * 255)),
		G: uint8(math.Floor(float64(c.Y()) * 255)),
		B: uint8(math.Floor(float64(c.Z()) * 255)),
		A: 255,
	}
}

// TileFor returns the UV rectangle of a block, or Full for unknown ids.
func (a *Atlas) TileFor(id world.BlockType) UV {
	if uv, ok := a.tiles[id]; ok {
		return uv
	}
	return Full
}

// Image returns the packed atlas image for upload.
func (a *Atlas) Image() *image.RGBA { return a.img }

// Dim returns the number of tiles per row.
func (a *Atlas) Dim() int { return a.dim }

// TileSize returns the edge length of a tile in pixels.
func (a *Atlas) TileSize() int { return a.tileSize }

// Textured returns how many tiles came from image files.
func (a *Atlas) Textured() int { return a.textured }
