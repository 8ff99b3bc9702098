package render

import (
	"testing"
	"time"

	"github.com/humboldt-xie/voxelworld/world"
)

type genFunc func(id Vec3) []world.BlockID

func (f genFunc) GenChunk(id Vec3) []world.BlockID {
	return f(id)
}

func newWorld(t *testing.T, reg *world.Registry, gen genFunc) *world.World {
	t.Helper()
	w := world.New(world.Config{GeneratorWorkers: 2, TickInterval: time.Millisecond}, reg, gen)
	t.Cleanup(w.Close)
	return w
}

func tickUntil(t *testing.T, w *world.World, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(20 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout, stats %+v", w.Stats())
		}
		w.Tick()
		time.Sleep(time.Millisecond)
	}
}
