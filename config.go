package main

import (
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/humboldt-xie/voxelworld/render"
	"github.com/humboldt-xie/voxelworld/world"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// TextureConfig names the texture of each face. A name is either a builtin
// texture or a png file relative to the config file.
type TextureConfig struct {
	Default string `yaml:"default"`
	Left    string `yaml:"left"`
	Right   string `yaml:"right"`
	Top     string `yaml:"top"`
	Bottom  string `yaml:"bottom"`
	Front   string `yaml:"front"`
	Back    string `yaml:"back"`
}

// faces orders the names like world.Direction.
func (t *TextureConfig) faces() [6]string {
	names := [6]string{t.Right, t.Left, t.Top, t.Bottom, t.Front, t.Back}
	for i, n := range names {
		if n == "" {
			names[i] = t.Default
		}
	}
	return names
}

type ItemConfig struct {
	Name    string        `yaml:"name"`
	Model   string        `yaml:"model"` // air or cube
	Light   string        `yaml:"light"` // transparent, opaque or emit
	Level   uint8         `yaml:"level"`
	Texture TextureConfig `yaml:"texture"`
}

type WorldConfig struct {
	Seed           int64 `yaml:"seed"`
	RenderDistance int   `yaml:"render_distance"`
	Workers        int   `yaml:"workers"`
	TickMs         int   `yaml:"tick_ms"`
}

type Config struct {
	Items []ItemConfig `yaml:"items"`
	World WorldConfig  `yaml:"world"`

	dir string
}

// LoadConfig reads a yaml config. A missing file yields an empty config.
func LoadConfig(file string) (*Config, error) {
	config := &Config{dir: filepath.Dir(file)}
	data, err := ioutil.ReadFile(file)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return nil, errors.Wrapf(err, "parse %s", file)
	}
	return config, nil
}

func (item *ItemConfig) kinds(textures [6]int) (world.DrawKind, world.LightKind, error) {
	var draw world.DrawKind
	switch item.Model {
	case "", "cube":
		draw = world.Cube(textures)
	case "air":
		draw = world.Invisible()
	default:
		return draw, world.LightKind{}, errors.Errorf("item %q: unknown model %q", item.Name, item.Model)
	}
	var light world.LightKind
	switch item.Light {
	case "", "opaque":
		light = world.Opaque()
	case "transparent":
		light = world.Transparent()
	case "emit":
		if item.Level == 0 || item.Level > world.MaxLight {
			return draw, light, errors.Errorf("item %q: light level %d out of range", item.Name, item.Level)
		}
		light = world.Emitter(item.Level)
	default:
		return draw, light, errors.Errorf("item %q: unknown light %q", item.Name, item.Light)
	}
	return draw, light, nil
}

// Register adds the configured blocks to reg and their textures to atlas.
func (c *Config) Register(reg *world.Registry, atlas *render.Atlas) error {
	for _, item := range c.Items {
		var textures [6]int
		for i, name := range item.Texture.faces() {
			if name == "" {
				continue
			}
			tile, ok := atlas.Lookup(name)
			if !ok {
				var err error
				tile, err = atlas.Add(filepath.Join(c.dir, name))
				if err != nil {
					return errors.Wrapf(err, "item %q", item.Name)
				}
			}
			textures[i] = tile
		}
		draw, light, err := item.kinds(textures)
		if err != nil {
			return err
		}
		if _, err := reg.Register(item.Name, draw, light); err != nil {
			return err
		}
	}
	return nil
}

// WorldConfig merges the file with the command line; flags that were set
// explicitly win.
func (c *Config) WorldConfig(fs *flag.FlagSet) world.Config {
	cfg := world.DefaultConfig()
	if c.World.Seed != 0 {
		cfg.Seed = c.World.Seed
	}
	if c.World.RenderDistance > 0 {
		cfg.RenderDistance = c.World.RenderDistance
	}
	if c.World.Workers > 0 {
		cfg.GeneratorWorkers = c.World.Workers
	}
	if c.World.TickMs > 0 {
		cfg.TickInterval = time.Duration(c.World.TickMs) * time.Millisecond
	}
	fs.Visit(func(f *flag.Flag) {
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		switch v := getter.Get().(type) {
		case int64:
			if f.Name == "seed" {
				cfg.Seed = v
			}
		case int:
			switch f.Name {
			case "r":
				cfg.RenderDistance = v
			case "workers":
				cfg.GeneratorWorkers = v
			}
		}
	})
	return cfg
}
