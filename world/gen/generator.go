package gen

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/humboldt-xie/voxelworld/world"
	"github.com/pkg/errors"
)

const (
	tileCacheSize      = 64
	placementCacheSize = 4096
)

// Generator turns a seed into chunks: biome map, height map, ground strata
// and structures. GenChunk is safe for concurrent use.
type Generator struct {
	seeder  Seeder
	biomes  *Biomes
	ground  world.BlockID
	tiles   *tileCache
	terrain map[BiomeID]*biomeTerrain
	placed  *lru.Cache

	mu      sync.RWMutex
	finders []Finder
	reach   world.Vec3
}

// NewGenerator materializes the noise of every overworld biome registered
// so far. Biomes registered later are not used.
func NewGenerator(seed int64, biomes *Biomes, ground world.BlockID) (*Generator, error) {
	ids := biomes.Overworld()
	if len(ids) == 0 {
		return nil, errors.Wrap(ErrUnknownBiome, "no overworld biome registered")
	}
	seeder := NewSeeder(seed)
	placed, _ := lru.New(placementCacheSize)
	g := &Generator{
		seeder:  seeder,
		biomes:  biomes,
		ground:  ground,
		tiles:   newTileCache(seeder, ids, tileCacheSize),
		terrain: make(map[BiomeID]*biomeTerrain),
		placed:  placed,
	}
	for _, id := range ids {
		b, _ := biomes.Get(id)
		ow := b.Overworld
		t := &biomeTerrain{
			base:   ow.Base,
			height: NewLayered(ow.Terrain, seeder.PushInts(tagTerrain, int(id)).NoiseStream()),
			layers: ow.Layers,
		}
		strata := seeder.PushInts(tagStrata, int(id)).NoiseStream()
		for range ow.Layers {
			t.strata = append(t.strata, strata.Next())
		}
		g.terrain[id] = t
	}
	return g, nil
}

// RegisterStructure adds a finder. Register all finders before the first
// GenChunk; placements already cached are not revisited.
func (g *Generator) RegisterStructure(f Finder) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.finders = append(g.finders, f)
	var bounds Box
	for _, f := range g.finders {
		bounds = bounds.Union(f.MaxBounds())
	}
	g.reach = reach(bounds)
}

func (g *Generator) Biomes() *Biomes {
	return g.biomes
}

// GenChunk returns the blocks of chunk cid, indexed like world.Index.
func (g *Generator) GenChunk(cid world.Vec3) []world.BlockID {
	const w = world.ChunkWidth
	blocks := make([]world.BlockID, w*w*w)
	heights := g.heights(cid)
	origin := cid.Origin()
	for lz := 0; lz < w; lz++ {
		for lx := 0; lx < w; lx++ {
			surface := heights.at(lx, lz)
			if surface < origin.Y {
				// column ends below this chunk
				continue
			}
			col := g.column(origin.X+lx, origin.Z+lz, surface)
			for ly := 0; ly < w; ly++ {
				b := col.blockAt(origin.Y+ly, g.ground)
				if b == world.Air {
					break
				}
				blocks[world.Index(world.Vec3{lx, ly, lz})] = b
			}
		}
	}
	g.overlay(cid, blocks)
	return blocks
}
