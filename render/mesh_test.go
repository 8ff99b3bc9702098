package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/voxelworld/world"
)

func testRegistry(t *testing.T) *world.Registry {
	t.Helper()
	reg := world.NewRegistry()
	if err := world.RegisterDefaults(reg); err != nil {
		t.Fatal(err)
	}
	return reg
}

func lookup(t *testing.T, reg *world.Registry, name string) world.BlockID {
	t.Helper()
	id, err := reg.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func chunkWith(id Vec3, blocks map[Vec3]world.BlockID) *world.Chunk {
	b := make([]world.BlockID, world.ChunkWidth*world.ChunkWidth*world.ChunkWidth)
	for l, v := range blocks {
		b[world.Index(l)] = v
	}
	return world.NewChunk(id, b)
}

func solidChunk(id Vec3, b world.BlockID) *world.Chunk {
	blocks := make([]world.BlockID, world.ChunkWidth*world.ChunkWidth*world.ChunkWidth)
	for i := range blocks {
		blocks[i] = b
	}
	return world.NewChunk(id, blocks)
}

func TestBuildMeshSingleBlock(t *testing.T) {
	reg := testRegistry(t)
	stone := lookup(t, reg, "stone")
	c := chunkWith(Vec3{1, 0, 0}, map[Vec3]world.BlockID{{3, 4, 5}: stone})
	m := BuildMesh(reg, c, [6]*world.Chunk{})
	if m.Faces() != 6 {
		t.Fatalf("%d faces, want 6", m.Faces())
	}
	if len(m.Indices) != 36 {
		t.Fatalf("%d indices, want 36", len(m.Indices))
	}
	for i, want := range []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7} {
		if m.Indices[i] != want {
			t.Fatalf("index %d = %d, want %d", i, m.Indices[i], want)
		}
	}
	min := mgl32.Vec3{35, 4, 5}
	for _, q := range m.Quads {
		// counter clockwise seen from outside
		n := q.Pos[1].Sub(q.Pos[0]).Cross(q.Pos[2].Sub(q.Pos[0]))
		if n.Normalize() != q.Normal {
			t.Errorf("quad with normal %v winds to %v", q.Normal, n)
		}
		for _, p := range q.Pos {
			d := p.Sub(min)
			for axis := 0; axis < 3; axis++ {
				if d[axis] != 0 && d[axis] != 1 {
					t.Fatalf("corner %v outside block %v", p, min)
				}
			}
		}
	}
}

func TestBuildMeshCulling(t *testing.T) {
	reg := testRegistry(t)
	stone := lookup(t, reg, "stone")
	glass := lookup(t, reg, "glass")
	leaves := lookup(t, reg, "leaves")
	const w = world.ChunkWidth

	tests := []struct {
		name      string
		blocks    map[Vec3]world.BlockID
		neighbors [6]*world.Chunk
		want      int
	}{
		{"pair", map[Vec3]world.BlockID{{1, 1, 1}: stone, {2, 1, 1}: stone}, [6]*world.Chunk{}, 10},
		{"glass neighbour", map[Vec3]world.BlockID{{1, 1, 1}: stone, {2, 1, 1}: glass}, [6]*world.Chunk{}, 6},
		{"leaves neighbour", map[Vec3]world.BlockID{{1, 1, 1}: stone, {2, 1, 1}: leaves}, [6]*world.Chunk{}, 10},
		{"edge next to absent chunk", map[Vec3]world.BlockID{{w - 1, 1, 1}: stone}, [6]*world.Chunk{}, 6},
		{"edge next to solid chunk", map[Vec3]world.BlockID{{w - 1, 1, 1}: stone},
			[6]*world.Chunk{world.PosX: solidChunk(Vec3{1, 0, 0}, stone)}, 5},
		{"edge next to empty chunk", map[Vec3]world.BlockID{{0, 1, 1}: stone},
			[6]*world.Chunk{world.NegX: world.NewChunk(Vec3{-1, 0, 0}, nil)}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := BuildMesh(reg, chunkWith(Vec3{}, tt.blocks), tt.neighbors)
			if m.Faces() != tt.want {
				t.Fatalf("%d faces, want %d", m.Faces(), tt.want)
			}
		})
	}
}

func TestBuildMeshLight(t *testing.T) {
	reg := testRegistry(t)
	glow := lookup(t, reg, "glowstone")
	w := newWorld(t, reg, func(id Vec3) []world.BlockID {
		if id != (Vec3{}) {
			return nil
		}
		b := make([]world.BlockID, world.ChunkWidth*world.ChunkWidth*world.ChunkWidth)
		b[world.Index(Vec3{5, 5, 5})] = glow
		return b
	})
	g := w.ChunkLoader().LoadCube(Vec3{}, 1)
	defer g.Release()
	tickUntil(t, w, func() bool { return w.Stats().Loaded == 27 })

	c := w.Chunks().Chunk(Vec3{})
	m := BuildMesh(reg, c, w.Chunks().Neighbors(Vec3{}))
	if m.Faces() != 6 {
		t.Fatalf("%d faces, want 6", m.Faces())
	}
	for _, q := range m.Quads {
		if want := float32(world.MaxLight-1) / world.MaxLight; q.Light != want {
			t.Errorf("face %v light %v, want %v", q.Normal, q.Light, want)
		}
	}
}

func TestVertices(t *testing.T) {
	reg := testRegistry(t)
	grass := lookup(t, reg, "grass")
	m := BuildMesh(reg, chunkWith(Vec3{}, map[Vec3]world.BlockID{{0, 0, 0}: grass}), [6]*world.Chunk{})
	v := m.Vertices(nil)
	if len(v) != m.Faces()*4*VertexSize {
		t.Fatalf("%d floats for %d faces", len(v), m.Faces())
	}
	textures := map[mgl32.Vec3]int{}
	for i := 0; i < len(v); i += VertexSize {
		n := mgl32.Vec3{v[i+5], v[i+6], v[i+7]}
		textures[n] = int(v[i+8])
		if u, w := v[i+3], v[i+4]; (u != 0 && u != 1) || (w != 0 && w != 1) {
			t.Fatalf("uv (%v,%v)", u, w)
		}
	}
	up, down := textures[world.PosY.Normal()], textures[world.NegY.Normal()]
	if up == down || up == textures[world.PosX.Normal()] {
		t.Fatalf("grass textures top %d bottom %d side %d", up, down, textures[world.PosX.Normal()])
	}
}
