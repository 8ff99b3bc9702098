package gen

import (
	"sync"

	"github.com/humboldt-xie/voxelworld/world"
	"github.com/pkg/errors"
)

var (
	ErrDuplicateBiome = errors.New("duplicate biome name")
	ErrUnknownBiome   = errors.New("unknown biome")
)

type BiomeID uint16

// Env holds the climate scalars of a biome.
type Env struct {
	Moisture    float64
	Temperature float64
	Elevation   float64
	Magic       float64
}

// GroundLayer is one stratum under the surface. Its thickness varies
// between MinThickness and whatever is left above MaxDepth.
type GroundLayer struct {
	Block        world.BlockID
	MinThickness int
	MaxDepth     int
}

// Overworld holds the terrain shape of a surface biome.
type Overworld struct {
	Terrain []NoiseParams
	Base    float64
	Layers  []GroundLayer
}

type Biome struct {
	ID        BiomeID
	Name      string
	Env       Env
	Overworld *Overworld
}

// Biomes is the biome registry, filled at startup.
type Biomes struct {
	mu        sync.RWMutex
	list      []Biome
	byName    map[string]BiomeID
	overworld []BiomeID
}

func NewBiomes() *Biomes {
	return &Biomes{byName: make(map[string]BiomeID)}
}

func (b *Biomes) Register(name string, env Env) (BiomeID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.byName[name]; ok {
		return 0, errors.Wrapf(ErrDuplicateBiome, "register %q", name)
	}
	id := BiomeID(len(b.list))
	b.list = append(b.list, Biome{ID: id, Name: name, Env: env})
	b.byName[name] = id
	return id, nil
}

// RegisterOverworld makes id eligible for the surface biome map.
func (b *Biomes) RegisterOverworld(id BiomeID, terrain []NoiseParams, base float64, layers []GroundLayer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(id) >= len(b.list) {
		return errors.Wrapf(ErrUnknownBiome, "overworld %d", id)
	}
	if b.list[id].Overworld == nil {
		b.overworld = append(b.overworld, id)
	}
	b.list[id].Overworld = &Overworld{Terrain: terrain, Base: base, Layers: layers}
	return nil
}

func (b *Biomes) Get(id BiomeID) (Biome, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(id) >= len(b.list) {
		return Biome{}, false
	}
	return b.list[id], true
}

func (b *Biomes) Lookup(name string) (BiomeID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	id, ok := b.byName[name]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownBiome, "lookup %q", name)
	}
	return id, nil
}

// Overworld returns the surface biomes in registration order.
func (b *Biomes) Overworld() []BiomeID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]BiomeID(nil), b.overworld...)
}
