package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// View is a read guard on the world. While it is open no tick runs, so
// chunks neither appear nor disappear under the caller.
type View struct {
	w    *World
	once sync.Once
}

func (v *View) Block(pos Vec3) (BlockID, bool) {
	return v.w.chunks.Block(pos)
}

// BlockType returns the type at pos, air for unloaded positions.
func (v *View) BlockType(pos Vec3) *BlockType {
	id, _ := v.w.chunks.Block(pos)
	return v.w.reg.Type(id)
}

// SetBlock edits a cell. Lighting catches up on the next tick.
func (v *View) SetBlock(pos Vec3, id BlockID) error {
	return v.w.chunks.SetBlock(pos, id)
}

func (v *View) ArtificialLight(pos Vec3) (Light, bool) {
	return v.w.chunks.Light(Artificial, pos)
}

func (v *View) NaturalLight(pos Vec3) (Light, bool) {
	return v.w.chunks.Light(Natural, pos)
}

func (v *View) RayTrace(start, dir mgl32.Vec3, maxRange float32) (Vec3, Direction, bool) {
	return v.w.chunks.RayTrace(start, dir, maxRange)
}

// Close releases the guard. It is safe to call more than once.
func (v *View) Close() {
	v.once.Do(v.w.mu.RUnlock)
}
