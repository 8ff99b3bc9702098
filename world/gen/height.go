package gen

import (
	"math"

	"github.com/humboldt-xie/voxelworld/world"
	"github.com/ojrac/opensimplex-go"
)

// kernelRadius is the arm length of the cross used to blend base heights.
const kernelRadius = 10

// biomeTerrain is an overworld biome with its noise fields materialized.
type biomeTerrain struct {
	base   float64
	height Layered
	layers []GroundLayer
	strata []opensimplex.Noise
}

// baseHeight averages the base height of the biomes on a cross around
// (x,z), 21 samples along each axis.
func (g *Generator) baseHeight(x, z int) float64 {
	var sum float64
	for d := -kernelRadius; d <= kernelRadius; d++ {
		sum += g.terrainAt(x+d, z).base
		sum += g.terrainAt(x, z+d).base
	}
	return sum / (2 * (2*kernelRadius + 1))
}

// detailHeight evaluates the biome noise at (x,z). Near biome borders the
// three neighbouring biomes are averaged.
func (g *Generator) detailHeight(x, z int) float64 {
	a := g.tiles.biomeAt(x, z)
	b := g.tiles.biomeAt(x+1, z)
	c := g.tiles.biomeAt(x, z+1)
	fx, fz := float64(x), float64(z)
	if a == b && a == c {
		return g.terrain[a].height.Eval2(fx, fz)
	}
	return (g.terrain[a].height.Eval2(fx, fz) +
		g.terrain[b].height.Eval2(fx, fz) +
		g.terrain[c].height.Eval2(fx, fz)) / 3
}

func (g *Generator) terrainAt(x, z int) *biomeTerrain {
	return g.terrain[g.tiles.biomeAt(x, z)]
}

// SurfaceY returns the y of the topmost ground block of column (x,z).
func (g *Generator) SurfaceY(x, z int) int {
	return int(math.Floor(g.baseHeight(x, z) + g.detailHeight(x, z)))
}

// BiomeAt returns the surface biome of column (x,z).
func (g *Generator) BiomeAt(x, z int) BiomeID {
	return g.tiles.biomeAt(x, z)
}

// heightMap holds the surface of every column of one chunk.
type heightMap [world.ChunkWidth * world.ChunkWidth]int

func (h *heightMap) at(lx, lz int) int {
	return h[lz*world.ChunkWidth+lx]
}

// heights computes the surface of every column of chunk cid, looking up
// each biome base only once. Results equal SurfaceY.
func (g *Generator) heights(cid world.Vec3) *heightMap {
	const w = world.ChunkWidth
	origin := cid.Origin()
	ext := w + 2*kernelRadius
	// base of every column in the chunk widened by the kernel radius
	bases := make([]float64, ext*ext)
	for dz := 0; dz < ext; dz++ {
		for dx := 0; dx < ext; dx++ {
			x, z := origin.X+dx-kernelRadius, origin.Z+dz-kernelRadius
			bases[dz*ext+dx] = g.terrainAt(x, z).base
		}
	}
	var h heightMap
	for lz := 0; lz < w; lz++ {
		for lx := 0; lx < w; lx++ {
			cx, cz := lx+kernelRadius, lz+kernelRadius
			var sum float64
			for d := -kernelRadius; d <= kernelRadius; d++ {
				sum += bases[cz*ext+cx+d]
				sum += bases[(cz+d)*ext+cx]
			}
			base := sum / (2 * (2*kernelRadius + 1))
			h[lz*w+lx] = int(math.Floor(base + g.detailHeight(origin.X+lx, origin.Z+lz)))
		}
	}
	return &h
}
