package gen

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/humboldt-xie/voxelworld/world"
	"golang.org/x/sync/singleflight"
)

const (
	// TileChunks is the side of a biome tile in chunks.
	TileChunks = 8
	tileSize   = TileChunks * world.ChunkWidth
	tileStride = tileSize + 1
)

// Seeder tags. Every independent random stream gets its own.
const (
	tagTerrain = iota + 1
	tagStrata
	tagStructure
	tagCorner = 5
	tagEdgeX  = 6
	tagEdgeZ  = 7
	tagFill   = 8
)

// tile is the biome grid of TileChunks×TileChunks chunks. It carries one
// extra row and column that equal the first ones of the next tiles.
type tile struct {
	grid []BiomeID
}

func (t *tile) at(x, z int) BiomeID {
	return t.grid[z*tileStride+x]
}

func (t *tile) set(x, z int, b BiomeID) {
	t.grid[z*tileStride+x] = b
}

type tileKey struct {
	x, z int
}

// tileCache builds and keeps recently used tiles.
type tileCache struct {
	seeder Seeder
	biomes []BiomeID
	cache  *lru.Cache
	group  singleflight.Group
}

func newTileCache(seeder Seeder, biomes []BiomeID, size int) *tileCache {
	cache, _ := lru.New(size)
	return &tileCache{seeder: seeder, biomes: biomes, cache: cache}
}

func (c *tileCache) get(tx, tz int) *tile {
	key := tileKey{tx, tz}
	if t, ok := c.cache.Get(key); ok {
		return t.(*tile)
	}
	v, _, _ := c.group.Do(fmt.Sprintf("%d,%d", tx, tz), func() (interface{}, error) {
		if t, ok := c.cache.Get(key); ok {
			return t, nil
		}
		t := c.build(tx, tz)
		c.cache.Add(key, t)
		return t, nil
	})
	return v.(*tile)
}

func (c *tileCache) biomeAt(x, z int) BiomeID {
	t := c.get(world.FloorDiv(x, tileSize), world.FloorDiv(z, tileSize))
	return t.at(world.FloorMod(x, tileSize), world.FloorMod(z, tileSize))
}

func (c *tileCache) pick(r *Rng) BiomeID {
	return c.biomes[r.Uint64()%uint64(len(c.biomes))]
}

// build fills the tile grid. Corners and borders are derived from seeds
// that neighbouring tiles share, so tiles agree on their common edges.
func (c *tileCache) build(tx, tz int) *tile {
	t := &tile{grid: make([]BiomeID, tileStride*tileStride)}

	corner := func(cx, cz int) BiomeID {
		return c.pick(c.seeder.PushInts(tagCorner, cx, cz).Rng())
	}
	t.set(0, 0, corner(tx, tz))
	t.set(tileSize, 0, corner(tx+1, tz))
	t.set(0, tileSize, corner(tx, tz+1))
	t.set(tileSize, tileSize, corner(tx+1, tz+1))

	// Edges along x at z=0 and z=tileSize, edges along z at x=0 and x=tileSize.
	edge := func(r *Rng, get func(i int) BiomeID, set func(i int, b BiomeID)) {
		for step := tileSize; step > 1; step /= 2 {
			for i := 0; i < tileSize; i += step {
				if r.Uint64()&1 == 0 {
					set(i+step/2, get(i))
				} else {
					set(i+step/2, get(i+step))
				}
			}
		}
	}
	for _, e := range []struct{ z, key int }{{0, tz}, {tileSize, tz + 1}} {
		z := e.z
		edge(c.seeder.PushInts(tagEdgeX, tx, e.key).Rng(),
			func(i int) BiomeID { return t.at(i, z) },
			func(i int, b BiomeID) { t.set(i, z, b) })
	}
	for _, e := range []struct{ x, key int }{{0, tx}, {tileSize, tx + 1}} {
		x := e.x
		edge(c.seeder.PushInts(tagEdgeZ, e.key, tz).Rng(),
			func(i int) BiomeID { return t.at(x, i) },
			func(i int, b BiomeID) { t.set(x, i, b) })
	}

	r := c.seeder.PushInts(tagFill, tx, tz).Rng()
	for step := tileSize; step > 1; step /= 2 {
		half := step / 2
		// edge midpoints of every square, borders excluded
		for z := 0; z <= tileSize; z += step {
			for x := 0; x < tileSize; x += step {
				if z != 0 && z != tileSize {
					if r.Uint64()&1 == 0 {
						t.set(x+half, z, t.at(x, z))
					} else {
						t.set(x+half, z, t.at(x+step, z))
					}
				}
			}
		}
		for z := 0; z < tileSize; z += step {
			for x := 0; x <= tileSize; x += step {
				if x != 0 && x != tileSize {
					if r.Uint64()&1 == 0 {
						t.set(x, z+half, t.at(x, z))
					} else {
						t.set(x, z+half, t.at(x, z+step))
					}
				}
			}
		}
		// centers copy one of their four edge midpoints
		for z := 0; z < tileSize; z += step {
			for x := 0; x < tileSize; x += step {
				b := byte(r.Uint64())
				var src BiomeID
				switch b & 3 {
				case 0:
					src = t.at(x+half, z)
				case 1:
					src = t.at(x+half, z+step)
				case 2:
					src = t.at(x, z+half)
				default:
					src = t.at(x+step, z+half)
				}
				t.set(x+half, z+half, src)
			}
		}
	}
	return t
}
