package gen

import (
	"math/rand"

	"github.com/humboldt-xie/voxelworld/world"
)

// TreeFinder plants trees on the surface. Density is the chance of each
// attempt to grow a tree, by biome.
type TreeFinder struct {
	Log, Leaves          world.BlockID
	Density              map[BiomeID]float64
	Attempts             int
	MinHeight, MaxHeight int
}

func (f *TreeFinder) MaxBounds() Box {
	return Box{world.Vec3{-2, 0, -2}, world.Vec3{3, f.MaxHeight + 2, 3}}
}

func (f *TreeFinder) Place(cid world.Vec3, rng *rand.Rand, terrain Terrain, out []Placement) []Placement {
	o := cid.Origin()
	for i := 0; i < f.Attempts; i++ {
		x := o.X + rng.Intn(world.ChunkWidth)
		z := o.Z + rng.Intn(world.ChunkWidth)
		roll := rng.Float64()
		height := f.MinHeight + rng.Intn(f.MaxHeight-f.MinHeight+1)
		if roll >= f.Density[terrain.BiomeAt(x, z)] {
			continue
		}
		// the chunk holding the base of the trunk places the tree
		y := terrain.SurfaceY(x, z) + 1
		if y < o.Y || y >= o.Y+world.ChunkWidth {
			continue
		}
		t := &tree{height: height, log: f.Log, leaves: f.Leaves}
		origin := world.Vec3{x, y, z}
		out = append(out, Placement{Structure: t, Origin: origin, Bounds: t.bounds().Translate(origin)})
	}
	return out
}

type tree struct {
	height      int
	log, leaves world.BlockID
}

func (t *tree) bounds() Box {
	return Box{world.Vec3{-2, 0, -2}, world.Vec3{3, t.height + 2, 3}}
}

func (t *tree) Generate(v *StructureView) {
	top := t.height - 1
	for dy := top - 2; dy <= top+1; dy++ {
		for dz := -2; dz <= 2; dz++ {
			for dx := -2; dx <= 2; dx++ {
				ry := dy - top
				if dx*dx+dz*dz+ry*ry > 5 {
					continue
				}
				p := world.Vec3{dx, dy, dz}
				if v.Block(p) == world.Air {
					v.SetBlock(p, t.leaves)
				}
			}
		}
	}
	for y := 0; y < t.height; y++ {
		v.SetBlock(world.Vec3{0, y, 0}, t.log)
	}
}

// LampFinder raises a rare pillar topped by a light source.
type LampFinder struct {
	Pillar, Lamp world.BlockID
	Chance       float64
	Height       int
}

func (f *LampFinder) MaxBounds() Box {
	return Box{world.Vec3{0, 0, 0}, world.Vec3{1, f.Height + 1, 1}}
}

func (f *LampFinder) Place(cid world.Vec3, rng *rand.Rand, terrain Terrain, out []Placement) []Placement {
	o := cid.Origin()
	x := o.X + rng.Intn(world.ChunkWidth)
	z := o.Z + rng.Intn(world.ChunkWidth)
	if rng.Float64() >= f.Chance {
		return out
	}
	y := terrain.SurfaceY(x, z) + 1
	if y < o.Y || y >= o.Y+world.ChunkWidth {
		return out
	}
	l := &lamp{pillar: f.Pillar, lamp: f.Lamp, height: f.Height}
	origin := world.Vec3{x, y, z}
	return append(out, Placement{Structure: l, Origin: origin, Bounds: f.MaxBounds().Translate(origin)})
}

type lamp struct {
	pillar, lamp world.BlockID
	height       int
}

func (l *lamp) Generate(v *StructureView) {
	for y := 0; y < l.height; y++ {
		v.SetBlock(world.Vec3{0, y, 0}, l.pillar)
	}
	v.SetBlock(world.Vec3{0, l.height, 0}, l.lamp)
}
