package gen

import (
	"math/rand"

	"github.com/humboldt-xie/voxelworld/world"
)

// Box is an axis aligned block box, Min inclusive and Max exclusive.
type Box struct {
	Min, Max world.Vec3
}

func (b Box) Translate(v world.Vec3) Box {
	return Box{b.Min.Add(v), b.Max.Add(v)}
}

func (b Box) Overlaps(o Box) bool {
	return b.Min.X < o.Max.X && o.Min.X < b.Max.X &&
		b.Min.Y < o.Max.Y && o.Min.Y < b.Max.Y &&
		b.Min.Z < o.Max.Z && o.Min.Z < b.Max.Z
}

func (b Box) Union(o Box) Box {
	return Box{
		world.Vec3{minInt(b.Min.X, o.Min.X), minInt(b.Min.Y, o.Min.Y), minInt(b.Min.Z, o.Min.Z)},
		world.Vec3{maxInt(b.Max.X, o.Max.X), maxInt(b.Max.Y, o.Max.Y), maxInt(b.Max.Z, o.Max.Z)},
	}
}

func chunkBox(cid world.Vec3) Box {
	o := cid.Origin()
	w := world.ChunkWidth
	return Box{o, o.Add(world.Vec3{w, w, w})}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Terrain is what finders may ask about the world before it exists.
type Terrain interface {
	SurfaceY(x, z int) int
	BiomeAt(x, z int) BiomeID
}

// Structure writes its blocks relative to its placement origin.
type Structure interface {
	Generate(v *StructureView)
}

// Placement is a structure anchored in the world. Bounds are in world
// coordinates.
type Placement struct {
	Structure Structure
	Origin    world.Vec3
	Bounds    Box
}

// Finder proposes placements for one chunk. Place must be deterministic in
// cid and rng; the rng is derived from the world seed and cid.
type Finder interface {
	// MaxBounds is the largest box any placement may cover, relative to
	// its origin.
	MaxBounds() Box
	Place(cid world.Vec3, rng *rand.Rand, terrain Terrain, out []Placement) []Placement
}

// StructureView translates structure coordinates into the chunk being
// generated. Writes outside the chunk are dropped.
type StructureView struct {
	origin world.Vec3
	chunk  world.Vec3
	blocks []world.BlockID
}

func (v *StructureView) local(p world.Vec3) (int, bool) {
	l := v.origin.Add(p).Sub(v.chunk)
	if l.X < 0 || l.Y < 0 || l.Z < 0 || l.X >= world.ChunkWidth || l.Y >= world.ChunkWidth || l.Z >= world.ChunkWidth {
		return 0, false
	}
	return world.Index(l), true
}

// SetBlock writes id at p, relative to the placement origin.
func (v *StructureView) SetBlock(p world.Vec3, id world.BlockID) {
	if i, ok := v.local(p); ok {
		v.blocks[i] = id
	}
}

// Block returns the block at p, air outside the chunk.
func (v *StructureView) Block(p world.Vec3) world.BlockID {
	if i, ok := v.local(p); ok {
		return v.blocks[i]
	}
	return world.Air
}

type placementKey struct {
	finder int
	cid    world.Vec3
}

// placements returns the cached placements of finder i for chunk cid.
func (g *Generator) placements(i int, f Finder, cid world.Vec3) []Placement {
	key := placementKey{i, cid}
	if p, ok := g.placed.Get(key); ok {
		return p.([]Placement)
	}
	rng := g.seeder.PushInts(tagStructure, i, cid.X, cid.Y, cid.Z).Rand()
	p := f.Place(cid, rng, g, nil)
	g.placed.Add(key, p)
	return p
}

// reach returns how many chunks around a chunk may hold placements that
// overlap it, per axis.
func reach(bounds Box) world.Vec3 {
	w := world.ChunkWidth
	up := func(n int) int {
		return (n + w - 1) / w
	}
	return world.Vec3{
		up(maxInt(-bounds.Min.X, bounds.Max.X)),
		up(maxInt(-bounds.Min.Y, bounds.Max.Y)),
		up(maxInt(-bounds.Min.Z, bounds.Max.Z)),
	}
}

// overlay runs every structure that overlaps chunk cid.
func (g *Generator) overlay(cid world.Vec3, blocks []world.BlockID) {
	g.mu.RLock()
	finders := g.finders
	r := g.reach
	g.mu.RUnlock()
	if len(finders) == 0 {
		return
	}

	target := chunkBox(cid)
	view := &StructureView{chunk: cid.Origin(), blocks: blocks}
	for dy := -r.Y; dy <= r.Y; dy++ {
		for dz := -r.Z; dz <= r.Z; dz++ {
			for dx := -r.X; dx <= r.X; dx++ {
				n := cid.Add(world.Vec3{dx, dy, dz})
				for i, f := range finders {
					for _, p := range g.placements(i, f, n) {
						if !p.Bounds.Overlaps(target) {
							continue
						}
						view.origin = p.Origin
						p.Structure.Generate(view)
					}
				}
			}
		}
	}
}
