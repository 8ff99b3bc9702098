package world

import (
	"fmt"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

func TestChunkid(t *testing.T) {
	tests := []struct {
		pos   Vec3
		chunk Vec3
		local Vec3
	}{
		{Vec3{0, 0, 0}, Vec3{0, 0, 0}, Vec3{0, 0, 0}},
		{Vec3{31, 32, 33}, Vec3{0, 1, 1}, Vec3{31, 0, 1}},
		{Vec3{-1, -32, -33}, Vec3{-1, -1, -2}, Vec3{31, 0, 31}},
	}
	for _, tt := range tests {
		if got := tt.pos.Chunkid(); got != tt.chunk {
			t.Errorf("%v.Chunkid() = %v, want %v", tt.pos, got, tt.chunk)
		}
		if got := tt.pos.Local(); got != tt.local {
			t.Errorf("%v.Local() = %v, want %v", tt.pos, got, tt.local)
		}
		if got := tt.chunk.Origin().Add(tt.local); got != tt.pos {
			t.Errorf("origin + local = %v, want %v", got, tt.pos)
		}
	}
	for i := 0; i < chunkSize; i += 97 {
		if got := localIndex(LocalPos(i)); got != i {
			t.Fatalf("index %d round trips to %d", i, got)
		}
	}
}

func TestDirection(t *testing.T) {
	for _, d := range Directions {
		if d.Invert().Invert() != d {
			t.Errorf("%v inverted twice", d)
		}
		if d.Offset().Add(d.Invert().Offset()) != (Vec3{}) {
			t.Errorf("%v and its inverse do not cancel", d)
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg.Type(Air).Name != "air" {
		t.Fatalf("id 0 is %q", reg.Type(Air).Name)
	}
	id, err := reg.Register("stone", SolidCube(0), Opaque())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Register("stone", SolidCube(1), Opaque()); errors.Cause(err) != ErrDuplicateBlock {
		t.Fatalf("duplicate register: %v", err)
	}
	if got, err := reg.Lookup("stone"); err != nil || got != id {
		t.Fatalf("lookup %v %v", got, err)
	}
	if _, err := reg.Lookup("nope"); errors.Cause(err) != ErrUnknownBlock {
		t.Fatalf("unknown lookup: %v", err)
	}
	if reg.Type(BlockID(1000)).ID != Air {
		t.Fatal("unknown id is not air")
	}
	if Emitter(40).Level != MaxLight || Emitter(0).Level != 1 {
		t.Fatal("emitter level not clamped")
	}
}

func TestSetBlockUnloaded(t *testing.T) {
	w := newTestWorld(t)
	err := w.m.SetBlock(Vec3{1, 2, 3}, w.id(t, "stone"))
	if errors.Cause(err) != ErrUnloaded {
		t.Fatalf("got %v, want ErrUnloaded", err)
	}
	if _, ok := w.m.Block(Vec3{1, 2, 3}); ok {
		t.Fatal("block reported in unloaded chunk")
	}
}

func TestPollDirtyOnce(t *testing.T) {
	w := newTestWorld(t)
	w.m.insert(NewChunk(Vec3{0, 0, 0}, nil))
	if _, ok := w.m.PollDirty(); ok {
		t.Fatal("fresh map has dirty chunks")
	}

	stone := w.id(t, "stone")
	w.set(t, Vec3{3, 3, 3}, stone)
	w.set(t, Vec3{4, 4, 4}, stone)
	id, ok := w.m.PollDirty()
	if !ok || id != (Vec3{0, 0, 0}) {
		t.Fatalf("poll %v %v", id, ok)
	}
	if id, ok := w.m.PollDirty(); ok {
		t.Fatalf("chunk %v queued twice", id)
	}

	// same id is a no-op
	w.set(t, Vec3{3, 3, 3}, stone)
	if _, ok := w.m.PollDirty(); ok {
		t.Fatal("no-op edit dirtied the chunk")
	}

	w.set(t, Vec3{3, 3, 3}, Air)
	if _, ok := w.m.PollDirty(); !ok {
		t.Fatal("edit after poll not queued")
	}
}

func TestPollDirtyConcurrent(t *testing.T) {
	w := newTestWorld(t)
	const n = 8
	for x := 0; x < n; x++ {
		w.m.insert(NewChunk(Vec3{x, 0, 0}, nil))
	}
	stone := w.id(t, "stone")

	var wg sync.WaitGroup
	for x := 0; x < n; x++ {
		wg.Add(1)
		go func(x int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				pos := Vec3{x*ChunkWidth + i%ChunkWidth, i / ChunkWidth, 3}
				if err := w.m.SetBlock(pos, stone); err != nil {
					t.Error(err)
					return
				}
			}
		}(x)
	}
	seen := make(map[Vec3]int)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for finished := false; !finished; {
		select {
		case <-done:
			finished = true
		default:
		}
		for {
			id, ok := w.m.PollDirty()
			if !ok {
				break
			}
			seen[id]++
		}
	}
	if len(seen) != n {
		t.Fatalf("polled %d chunks, want %d", len(seen), n)
	}
	// Nothing is left once every writer is done and the queue is drained.
	if id, ok := w.m.PollDirty(); ok {
		t.Fatalf("chunk %v still queued", id)
	}
	for x := 0; x < n; x++ {
		if w.m.Chunk(Vec3{x, 0, 0}).IsDirty() {
			t.Fatalf("chunk %d dirty after drain", x)
		}
	}
}

func TestRegistrySnapshot(t *testing.T) {
	reg := NewRegistry()
	stone := reg.MustRegister("stone", SolidCube(3), Opaque())
	before := reg.Type(stone)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if reg.Type(stone).Name != "stone" {
				t.Error("stone changed while registering")
				return
			}
			reg.Type(BlockID(i))
		}
	}()
	for i := 0; i < 100; i++ {
		reg.MustRegister(fmt.Sprintf("block%d", i), SolidCube(i), Transparent())
	}
	wg.Wait()

	if before.Name != "stone" || before.Draw != reg.Type(stone).Draw {
		t.Fatalf("old type pointer now %+v", before)
	}
	if reg.Len() != 102 {
		t.Fatalf("len %d, want 102", reg.Len())
	}
	if got := reg.Type(BlockID(101)).Name; got != "block99" {
		t.Fatalf("last block %q", got)
	}
}

func TestSetBlockDirtiesNeighbor(t *testing.T) {
	w := newTestWorld(t)
	w.m.insert(NewChunk(Vec3{0, 0, 0}, nil))
	w.m.insert(NewChunk(Vec3{-1, 0, 0}, nil))
	w.set(t, Vec3{0, 5, 5}, w.id(t, "stone"))

	got := map[Vec3]bool{}
	for {
		id, ok := w.m.PollDirty()
		if !ok {
			break
		}
		got[id] = true
	}
	if !got[Vec3{0, 0, 0}] || !got[Vec3{-1, 0, 0}] || len(got) != 2 {
		t.Fatalf("dirty chunks %v", got)
	}
}

func TestRayTrace(t *testing.T) {
	w := newTestWorld(t)
	stone := w.id(t, "stone")
	w.m.insert(NewChunk(Vec3{0, 0, 0}, filled(0, 1, stone)))

	tests := []struct {
		name  string
		start mgl32.Vec3
		dir   mgl32.Vec3
		rng   float32
		hit   bool
		block Vec3
		face  Direction
	}{
		{"down to floor", mgl32.Vec3{0.5, 10.5, 0.5}, mgl32.Vec3{0, -1, 0}, 20, true, Vec3{0, 0, 0}, PosY},
		{"slanted", mgl32.Vec3{4.5, 3.5, 4.5}, mgl32.Vec3{1, -1, 0}, 20, true, Vec3{7, 0, 4}, PosY},
		{"out of range", mgl32.Vec3{0.5, 30.5, 0.5}, mgl32.Vec3{0, -1, 0}, 20, false, Vec3{}, 0},
		{"inside opaque", mgl32.Vec3{2.5, 0.5, 2.5}, mgl32.Vec3{0, 1, 0}, 20, true, Vec3{2, 0, 2}, NegY},
		{"into unloaded", mgl32.Vec3{5.5, 5.5, 5.5}, mgl32.Vec3{0, 1, 0}, 100, false, Vec3{}, 0},
		{"sideways", mgl32.Vec3{0.5, 3.5, 0.5}, mgl32.Vec3{1, 0, 0}, 40, false, Vec3{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, face, hit := w.m.RayTrace(tt.start, tt.dir, tt.rng)
			if hit != tt.hit {
				t.Fatalf("hit %v, want %v", hit, tt.hit)
			}
			if !hit {
				return
			}
			if block != tt.block || face != tt.face {
				t.Fatalf("hit %v face %v, want %v face %v", block, face, tt.block, tt.face)
			}
		})
	}
}
