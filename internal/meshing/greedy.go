package meshing

import (
	"voxelcore/internal/atlas"
	"voxelcore/internal/registry"
	"voxelcore/internal/world"
)

// BlockSource reads blocks across chunk borders without generating terrain.
// *world.World satisfies it.
type BlockSource interface {
	LoadedBlock(x, y, z int) world.BlockType
}

// TileSource maps block ids to atlas rectangles. *atlas.Atlas satisfies it.
type TileSource interface {
	TileFor(id world.BlockType) atlas.UV
}

// Mesh is an indexed triangle mesh in world space. Every quad contributes
// four vertices and six indices.
type Mesh struct {
	Coord     world.ChunkCoord
	Positions []float32 // xyz
	Normals   []float32 // xyz
	Colors    []float32 // rgb
	UVs       []float32 // uv
	Indices   []uint32
}

// Quads returns the number of quads in the mesh.
func (m *Mesh) Quads() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 6
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Positions) / 3
}

// face is one mask cell: the block whose face is visible and which side of
// the plane it faces.
type face struct {
	id   world.BlockType
	back bool
	set  bool
}

// visibleFace decides the face on the plane between a (lower) and b (upper).
// A block shows a face when it is solid, differs from its neighbour and the
// neighbour does not hide it. When both sides qualify the lower block wins.
func visibleFace(reg *registry.Registry, a, b world.BlockType) face {
	if a == b {
		return face{}
	}
	da, db := reg.Of(a), reg.Of(b)
	aFace := da.Solid && !db.Opaque
	bFace := db.Solid && !da.Opaque
	switch {
	case aFace:
		return face{id: a, set: true}
	case bFace:
		return face{id: b, back: true, set: true}
	}
	return face{}
}

// BuildMesh greedy-meshes one chunk. Faces on the chunk border consult the
// neighbouring chunk through src; unloaded neighbours read as air. Returns
// nil when the chunk has no visible faces.
func BuildMesh(src BlockSource, reg *registry.Registry, tiles TileSource, c *world.Chunk) *Mesh {
	if c == nil {
		return nil
	}
	size := c.Size()
	dims := [3]int{size.X, size.Y, size.Z}
	ox, oy, oz := size.Origin(c.Coord())
	origin := [3]int{ox, oy, oz}

	blockAt := func(p [3]int) world.BlockType {
		if size.Contains(p[0], p[1], p[2]) {
			return c.GetBlock(p[0], p[1], p[2])
		}
		return src.LoadedBlock(origin[0]+p[0], origin[1]+p[1], origin[2]+p[2])
	}

	m := &Mesh{Coord: c.Coord()}
	for d := 0; d < 3; d++ {
		u, v := (d+1)%3, (d+2)%3
		mask := make([]face, dims[u]*dims[v])

		// slice s compares layer s with layer s+1; the quad lies on plane s+1
		for s := -1; s < dims[d]; s++ {
			var p [3]int
			n := 0
			for p[v] = 0; p[v] < dims[v]; p[v]++ {
				for p[u] = 0; p[u] < dims[u]; p[u]++ {
					p[d] = s
					a := blockAt(p)
					q := p
					q[d] = s + 1
					f := visibleFace(reg, a, blockAt(q))
					// the chunk owns faces of its own blocks only
					if f.set && ((!f.back && s < 0) || (f.back && s+1 >= dims[d])) {
						f = face{}
					}
					mask[n] = f
					n++
				}
			}

			n = 0
			for j := 0; j < dims[v]; j++ {
				for i := 0; i < dims[u]; {
					f := mask[n]
					if !f.set {
						i++
						n++
						continue
					}
					w := 1
					for i+w < dims[u] && mask[n+w] == f {
						w++
					}
					h := 1
				grow:
					for ; j+h < dims[v]; h++ {
						for k := 0; k < w; k++ {
							if mask[n+k+h*dims[u]] != f {
								break grow
							}
						}
					}

					m.addQuad(reg, tiles, f, origin, d, u, v, s+1, i, j, w, h)

					for l := 0; l < h; l++ {
						for k := 0; k < w; k++ {
							mask[n+k+l*dims[u]] = face{}
						}
					}
					i += w
					n += w
				}
			}
		}
	}
	if len(m.Indices) == 0 {
		return nil
	}
	return m
}

// addQuad appends a w*h rectangle on plane along axis d, starting at (i, j)
// in the (u, v) axes. Front faces wind counter-clockwise seen from +d.
func (m *Mesh) addQuad(reg *registry.Registry, tiles TileSource, f face, origin [3]int, d, u, v, plane, i, j, w, h int) {
	var start, du, dv [3]int
	start[d], start[u], start[v] = plane, i, j
	du[u] = w
	dv[v] = h

	var corners [4][3]int
	for k := 0; k < 3; k++ {
		corners[0][k] = origin[k] + start[k]
		corners[1][k] = origin[k] + start[k] + du[k]
		corners[2][k] = origin[k] + start[k] + du[k] + dv[k]
		corners[3][k] = origin[k] + start[k] + dv[k]
	}

	t := tiles.TileFor(f.id)
	uvs := [4][2]float32{{t.U0, t.V0}, {t.U1, t.V0}, {t.U1, t.V1}, {t.U0, t.V1}}

	var normal [3]float32
	order := [4]int{0, 1, 2, 3}
	if f.back {
		normal[d] = -1
		order = [4]int{0, 3, 2, 1}
	} else {
		normal[d] = 1
	}
	col := reg.Of(f.id).Color

	base := uint32(len(m.Positions) / 3)
	for _, k := range order {
		m.Positions = append(m.Positions, float32(corners[k][0]), float32(corners[k][1]), float32(corners[k][2]))
		m.Normals = append(m.Normals, normal[0], normal[1], normal[2])
		m.Colors = append(m.Colors, col[0], col[1], col[2])
		m.UVs = append(m.UVs, uvs[k][0], uvs[k][1])
	}
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}
