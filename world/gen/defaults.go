package gen

import (
	"github.com/humboldt-xie/voxelworld/world"
	"github.com/pkg/errors"
)

// RegisterDefaults registers the builtin overworld biomes. The blocks they
// are made of are looked up in reg.
func RegisterDefaults(biomes *Biomes, reg *world.Registry) error {
	names := []string{"stone", "dirt", "grass", "sand", "snow"}
	ids := make(map[string]world.BlockID)
	for _, n := range names {
		id, err := reg.Lookup(n)
		if err != nil {
			return errors.Wrap(err, "default biomes")
		}
		ids[n] = id
	}
	soil := func(top string) []GroundLayer {
		return []GroundLayer{
			{Block: ids[top], MinThickness: 1, MaxDepth: 1},
			{Block: ids["dirt"], MinThickness: 2, MaxDepth: 6},
		}
	}
	rolling := func(amp float64) []NoiseParams {
		return []NoiseParams{
			{Scale: 256, Amplitude: amp, Octaves: 4, Persistence: 0.5, Lacunarity: 2},
			{Scale: 32, Amplitude: amp / 8, Octaves: 2, Persistence: 0.5, Lacunarity: 2},
		}
	}

	defs := []struct {
		name    string
		env     Env
		terrain []NoiseParams
		base    float64
		layers  []GroundLayer
	}{
		{"plains", Env{Moisture: 0.5, Temperature: 0.6}, rolling(6), 8, soil("grass")},
		{"forest", Env{Moisture: 0.8, Temperature: 0.5, Magic: 0.2}, rolling(10), 12, soil("grass")},
		{"desert", Env{Moisture: 0.05, Temperature: 0.95}, rolling(4), 6, []GroundLayer{
			{Block: ids["sand"], MinThickness: 3, MaxDepth: 8},
		}},
		{"mountains", Env{Moisture: 0.4, Temperature: 0.3, Elevation: 1}, rolling(40), 40, []GroundLayer{
			{Block: ids["stone"], MinThickness: 1, MaxDepth: 1},
		}},
		{"tundra", Env{Moisture: 0.3, Temperature: 0.05, Elevation: 0.3}, rolling(8), 16, soil("snow")},
	}
	for _, d := range defs {
		id, err := biomes.Register(d.name, d.env)
		if err != nil {
			return err
		}
		if err := biomes.RegisterOverworld(id, d.terrain, d.base, d.layers); err != nil {
			return err
		}
	}
	return nil
}

// NewDefault builds a generator with the builtin biomes and structures.
// reg must hold the builtin blocks.
func NewDefault(seed int64, reg *world.Registry) (*Generator, error) {
	biomes := NewBiomes()
	if err := RegisterDefaults(biomes, reg); err != nil {
		return nil, err
	}
	lookup := func(names ...string) ([]world.BlockID, error) {
		var ids []world.BlockID
		for _, n := range names {
			id, err := reg.Lookup(n)
			if err != nil {
				return nil, errors.Wrap(err, "default generator")
			}
			ids = append(ids, id)
		}
		return ids, nil
	}
	ids, err := lookup("stone", "log", "leaves", "planks", "lamp")
	if err != nil {
		return nil, err
	}
	g, err := NewGenerator(seed, biomes, ids[0])
	if err != nil {
		return nil, err
	}

	plains, _ := biomes.Lookup("plains")
	forest, _ := biomes.Lookup("forest")
	tundra, _ := biomes.Lookup("tundra")
	g.RegisterStructure(&TreeFinder{
		Log:       ids[1],
		Leaves:    ids[2],
		Density:   map[BiomeID]float64{plains: 0.1, forest: 0.6, tundra: 0.05},
		Attempts:  8,
		MinHeight: 4,
		MaxHeight: 7,
	})
	g.RegisterStructure(&LampFinder{Pillar: ids[3], Lamp: ids[4], Chance: 0.02, Height: 3})
	return g, nil
}
