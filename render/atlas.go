package render

import (
	"image"
	"image/color"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/humboldt-xie/voxelworld/world"
	"github.com/pkg/errors"
)

// AtlasTiles is the number of tiles per atlas row and column.
const AtlasTiles = 16

// Atlas packs square block textures into one image, row by row from the
// top left. A texture id is its tile index.
type Atlas struct {
	tile int
	img  *image.NRGBA
	ids  map[string]int
	next int
}

func NewAtlas(tile int) *Atlas {
	n := tile * AtlasTiles
	return &Atlas{
		tile: tile,
		img:  imaging.New(n, n, color.NRGBA{255, 0, 255, 255}),
		ids:  make(map[string]int),
	}
}

// Add loads the texture file at path once and returns its tile.
func (a *Atlas) Add(path string) (int, error) {
	path = filepath.Clean(path)
	if id, ok := a.ids[path]; ok {
		return id, nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "atlas")
	}
	return a.AddImage(path, img)
}

// AddImage scales img to a tile and stores it under name.
func (a *Atlas) AddImage(name string, img image.Image) (int, error) {
	if id, ok := a.ids[name]; ok {
		return id, nil
	}
	if a.next >= AtlasTiles*AtlasTiles {
		return 0, errors.Errorf("atlas full, cannot add %q", name)
	}
	id := a.next
	a.next++
	a.ids[name] = id
	b := img.Bounds()
	if b.Dx() != a.tile || b.Dy() != a.tile {
		img = imaging.Resize(img, a.tile, a.tile, imaging.Lanczos)
	}
	at := image.Pt(id%AtlasTiles*a.tile, id/AtlasTiles*a.tile)
	a.img = imaging.Paste(a.img, img, at)
	return id, nil
}

// Lookup returns the tile stored under name.
func (a *Atlas) Lookup(name string) (int, bool) {
	id, ok := a.ids[name]
	return id, ok
}

func (a *Atlas) Len() int {
	return a.next
}

func (a *Atlas) Image() *image.NRGBA {
	return a.img
}

func (a *Atlas) Save(path string) error {
	return errors.Wrap(imaging.Save(a.img, path), "save atlas")
}

var defaultColors = map[string]color.NRGBA{
	"stone":      {128, 128, 128, 255},
	"dirt":       {121, 85, 58, 255},
	"grass_top":  {96, 160, 64, 255},
	"grass_side": {110, 120, 60, 255},
	"sand":       {219, 207, 163, 255},
	"snow":       {240, 245, 250, 255},
	"log_top":    {160, 130, 80, 255},
	"log_side":   {102, 81, 51, 255},
	"leaves":     {60, 120, 40, 255},
	"glowstone":  {250, 220, 120, 255},
	"lamp":       {255, 180, 90, 255},
	"glass":      {200, 230, 240, 255},
	"planks":     {170, 135, 85, 255},
}

// DefaultAtlas paints a flat shaded tile for every builtin texture slot.
func DefaultAtlas(tile int) *Atlas {
	a := NewAtlas(tile)
	for _, name := range world.DefaultTextures {
		c, ok := defaultColors[name]
		if !ok {
			c = color.NRGBA{255, 0, 255, 255}
		}
		img := imaging.New(tile, tile, c)
		// darker rim so block edges stay readable
		inner := imaging.New(tile-2, tile-2, c)
		img = imaging.Paste(imaging.AdjustBrightness(img, -20), inner, image.Pt(1, 1))
		a.AddImage(name, img)
	}
	return a
}
