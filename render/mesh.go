package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/voxelworld/world"
)

type Vec3 = world.Vec3

// Quad is one visible block face.
type Quad struct {
	Pos     [4]mgl32.Vec3
	Normal  mgl32.Vec3
	Texture int
	// Light is the brighter channel of the cell in front of the face, 0..1.
	Light float32
}

// MeshData is the CPU side of a chunk mesh.
type MeshData struct {
	ID      Vec3
	Quads   []Quad
	Indices []uint32
}

// quadIndices splits a quad into two triangles.
var quadIndices = [6]uint32{0, 1, 2, 0, 2, 3}

// faceCorners are the unit cube corners of each face, counter clockwise seen
// from outside, indexed by Direction.
var faceCorners = [6][4]mgl32.Vec3{
	world.PosX: {{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}},
	world.NegX: {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	world.PosY: {{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}},
	world.NegY: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	world.PosZ: {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	world.NegZ: {{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}},
}

// faceUV maps a corner to its texture coordinate, v pointing up on side faces.
func faceUV(d world.Direction, c mgl32.Vec3) mgl32.Vec2 {
	switch d.Axis() {
	case 0:
		return mgl32.Vec2{c.Z(), 1 - c.Y()}
	case 1:
		return mgl32.Vec2{c.X(), c.Z()}
	default:
		return mgl32.Vec2{c.X(), 1 - c.Y()}
	}
}

// BuildMesh emits a quad for every face of an opaque cube that borders a non
// opaque cell. neighbors are indexed by Direction; a nil neighbour counts as
// empty space so the edge of the loaded world stays closed.
func BuildMesh(reg *world.Registry, c *world.Chunk, neighbors [6]*world.Chunk) *MeshData {
	const w = world.ChunkWidth
	m := &MeshData{ID: c.Id()}
	origin := c.Id().Origin()
	for i, b := range c.Blocks() {
		if !reg.IsOpaque(b) {
			continue
		}
		l := world.LocalPos(i)
		t := reg.Type(b)
		base := mgl32.Vec3{float32(origin.X + l.X), float32(origin.Y + l.Y), float32(origin.Z + l.Z)}
		for _, d := range world.Directions {
			n := l.Neighbor(d)
			owner := c
			if n.X < 0 || n.Y < 0 || n.Z < 0 || n.X >= w || n.Y >= w || n.Z >= w {
				owner = neighbors[d]
				n = world.Vec3{X: world.FloorMod(n.X, w), Y: world.FloorMod(n.Y, w), Z: world.FloorMod(n.Z, w)}
			}
			var light float32
			if owner != nil {
				if reg.IsOpaque(owner.LocalBlock(n)) {
					continue
				}
				light = cellLight(owner, n)
			}
			m.addQuad(base, d, t.Draw.Textures[d], light)
		}
	}
	return m
}

func cellLight(c *world.Chunk, l Vec3) float32 {
	a := c.LocalLight(world.Artificial, l).Level()
	n := c.LocalLight(world.Natural, l).Level()
	if n > a {
		a = n
	}
	return float32(a) / float32(world.MaxLight)
}

func (m *MeshData) addQuad(base mgl32.Vec3, d world.Direction, texture int, light float32) {
	q := Quad{Normal: d.Normal(), Texture: texture, Light: light}
	for i, c := range faceCorners[d] {
		q.Pos[i] = base.Add(c)
	}
	first := uint32(len(m.Quads) * 4)
	for _, i := range quadIndices {
		m.Indices = append(m.Indices, first+i)
	}
	m.Quads = append(m.Quads, q)
}

func (m *MeshData) Faces() int {
	return len(m.Quads)
}

// VertexSize is the number of floats Vertices writes per vertex:
// pos(3) uv(2) normal(3) texture(1) light(1).
const VertexSize = 10

// Vertices appends the interleaved vertex data of every quad to buf.
func (m *MeshData) Vertices(buf []float32) []float32 {
	for _, q := range m.Quads {
		d := directionOf(q.Normal)
		for i, p := range q.Pos {
			uv := faceUV(d, faceCorners[d][i])
			buf = append(buf,
				p.X(), p.Y(), p.Z(),
				uv.X(), uv.Y(),
				q.Normal.X(), q.Normal.Y(), q.Normal.Z(),
				float32(q.Texture),
				q.Light,
			)
		}
	}
	return buf
}

func directionOf(n mgl32.Vec3) world.Direction {
	for _, d := range world.Directions {
		if d.Normal() == n {
			return d
		}
	}
	return world.PosY
}
