package gen

import (
	"github.com/humboldt-xie/voxelworld/world"
)

// maxLayers bounds the strata of one biome.
const maxLayers = 8

// strataScale is the horizontal size of thickness variations.
const strataScale = 32

// column is the ground profile of one column: layer i covers depths
// [ends[i-1], ends[i]) below the surface, depth 0 being the surface block.
type column struct {
	surface int
	n       int
	ends    [maxLayers]int
	blocks  [maxLayers]world.BlockID
}

func (g *Generator) column(x, z, surface int) column {
	t := g.terrainAt(x, z)
	c := column{surface: surface}
	depth := 0
	for i, l := range t.layers {
		if i == maxLayers {
			break
		}
		thickness := l.MinThickness
		if extra := l.MaxDepth - depth - l.MinThickness; extra > 0 {
			thickness += int(noise01(t.strata[i], float64(x)/strataScale, float64(z)/strataScale) * float64(extra))
		}
		if thickness < 0 {
			thickness = 0
		}
		depth += thickness
		c.ends[c.n] = depth
		c.blocks[c.n] = l.Block
		c.n++
	}
	return c
}

// blockAt returns the block of the column at height y.
func (c *column) blockAt(y int, ground world.BlockID) world.BlockID {
	depth := c.surface - y
	if depth < 0 {
		return world.Air
	}
	for i := 0; i < c.n; i++ {
		if depth < c.ends[i] {
			return c.blocks[i]
		}
	}
	return ground
}
