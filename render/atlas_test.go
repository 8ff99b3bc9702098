package render

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/humboldt-xie/voxelworld/world"
)

func TestDefaultAtlas(t *testing.T) {
	a := DefaultAtlas(8)
	if a.Len() != len(world.DefaultTextures) {
		t.Fatalf("%d tiles, want %d", a.Len(), len(world.DefaultTextures))
	}
	if b := a.Image().Bounds(); b.Dx() != 8*AtlasTiles || b.Dy() != 8*AtlasTiles {
		t.Fatalf("atlas bounds %v", b)
	}
	// centre of the sand tile (slot 4)
	got := a.Image().NRGBAAt(4*8+4, 4)
	if got != defaultColors["sand"] {
		t.Fatalf("sand tile %v", got)
	}
}

func TestAtlasAddFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "red.png")
	if err := imaging.Save(imaging.New(32, 32, color.NRGBA{255, 0, 0, 255}), path); err != nil {
		t.Fatal(err)
	}

	a := NewAtlas(16)
	a.AddImage("first", image.NewNRGBA(image.Rect(0, 0, 16, 16)))
	id, err := a.Add(path)
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Fatalf("id %d, want 1", id)
	}
	if again, _ := a.Add(path); again != id {
		t.Fatalf("same file got tile %d and %d", id, again)
	}
	if c := a.Image().NRGBAAt(16+8, 8); c.R != 255 || c.G != 0 {
		t.Fatalf("resized tile colour %v", c)
	}
	if _, err := a.Add(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatal("missing file added")
	}
}
