package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/voxelworld/world"
	"github.com/pkg/errors"
)

type fakeMesh struct {
	faces    int
	drawn    int
	released bool
}

func (m *fakeMesh) Faces() int { return m.faces }
func (m *fakeMesh) Draw()      { m.drawn++ }
func (m *fakeMesh) Release()   { m.released = true }

type fakeBackend struct {
	meshes []*fakeMesh
	fail   bool
}

func (b *fakeBackend) NewMesh(m *MeshData) (GPUMesh, error) {
	if b.fail {
		return nil, errors.New("out of memory")
	}
	fm := &fakeMesh{faces: m.Faces()}
	b.meshes = append(b.meshes, fm)
	return fm, nil
}

// lookAt returns a camera at eye looking down -Z.
func lookAt(eye mgl32.Vec3) mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 200)
	view := mgl32.LookAtV(eye, eye.Add(mgl32.Vec3{0, 0, -1}), mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

func TestFrustum(t *testing.T) {
	f := NewFrustum(lookAt(mgl32.Vec3{16, 16, 16}))
	tests := []struct {
		id   Vec3
		want bool
	}{
		{Vec3{0, 0, 0}, true},
		{Vec3{0, 0, -2}, true},
		{Vec3{0, 0, 2}, false},
		{Vec3{5, 0, -1}, false},
		{Vec3{0, 0, -10}, false},
	}
	for _, tt := range tests {
		if got := f.ChunkVisible(tt.id); got != tt.want {
			t.Errorf("chunk %v visible %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestPoolApply(t *testing.T) {
	b := &fakeBackend{}
	p := NewPool(b)
	mesh := &MeshData{ID: Vec3{0, 0, -1}, Quads: make([]Quad, 3)}

	if err := p.Apply(Upload{Slot: 2, ID: mesh.ID, Mesh: mesh}); err != nil {
		t.Fatal(err)
	}
	p.Draw(lookAt(mgl32.Vec3{16, 16, 16}))
	if s := p.Stat(); s.CacheChunks != 1 || s.RendingChunks != 1 || s.Faces != 3 {
		t.Fatalf("stat %+v", s)
	}

	// replacing releases the old mesh
	if err := p.Apply(Upload{Slot: 2, ID: mesh.ID, Mesh: mesh}); err != nil {
		t.Fatal(err)
	}
	if !b.meshes[0].released || b.meshes[1].released {
		t.Fatal("old mesh not released")
	}

	b.fail = true
	if err := p.Apply(Upload{Slot: 2, ID: mesh.ID, Mesh: mesh}); err == nil {
		t.Fatal("failed upload returned no error")
	}
	if !b.meshes[1].released {
		t.Fatal("slot kept a mesh after failed upload")
	}
	p.Draw(lookAt(mgl32.Vec3{16, 16, 16}))
	if s := p.Stat(); s.CacheChunks != 0 {
		t.Fatalf("stat %+v after failed upload", s)
	}
}

func TestPoolCulls(t *testing.T) {
	b := &fakeBackend{}
	p := NewPool(b)
	for i, id := range []Vec3{{0, 0, -1}, {0, 0, 3}} {
		if err := p.Apply(Upload{Slot: i, ID: id, Mesh: &MeshData{ID: id}}); err != nil {
			t.Fatal(err)
		}
	}
	p.Draw(lookAt(mgl32.Vec3{16, 16, 16}))
	if b.meshes[0].drawn != 1 || b.meshes[1].drawn != 0 {
		t.Fatalf("drawn %d %d", b.meshes[0].drawn, b.meshes[1].drawn)
	}
	p.Release()
	for _, m := range b.meshes {
		if !m.released {
			t.Fatal("mesh not released")
		}
	}
}

func drainUploads(m *Mesher) map[int]Upload {
	got := map[int]Upload{}
	for {
		select {
		case u := <-m.Uploads():
			got[u.Slot] = u
		default:
			return got
		}
	}
}

func TestMesherArea(t *testing.T) {
	reg := testRegistry(t)
	stone := lookup(t, reg, "stone")
	w := newWorld(t, reg, func(id Vec3) []world.BlockID {
		return chunkWith(id, map[Vec3]world.BlockID{{1, 1, 1}: stone}).Blocks()
	})
	g := w.ChunkLoader().LoadCube(Vec3{}, 1)
	defer g.Release()
	tickUntil(t, w, func() bool { return w.Stats().Loaded == 27 })
	for {
		if _, ok := w.Chunks().PollDirty(); !ok {
			break
		}
	}

	m := NewMesher(w.Chunks(), 1024)
	m.SetArea(RenderArea{Center: Vec3{}, Radius: 1})
	if !m.step() {
		t.Fatal("closed")
	}
	got := drainUploads(m)
	if len(got) != 27 {
		t.Fatalf("%d slots uploaded, want 27", len(got))
	}
	for slot, u := range got {
		if u.Mesh == nil || u.Mesh.Faces() != 6 {
			t.Fatalf("slot %d: %+v", slot, u)
		}
	}

	// moving away vacates every slot but the shared ones
	m.SetArea(RenderArea{Center: Vec3{1, 0, 0}, Radius: 1})
	m.step()
	got = drainUploads(m)
	vacated, built := 0, 0
	for _, u := range got {
		if u.Mesh == nil {
			vacated++
		} else {
			built++
		}
	}
	if vacated != 9 || built != 0 {
		t.Fatalf("vacated %d built %d, want 9 and 0", vacated, built)
	}

	// edits reach the slot through the dirty queue
	v := w.Read()
	if err := v.SetBlock(Vec3{5, 5, 5}, stone); err != nil {
		t.Fatal(err)
	}
	v.Close()
	m.step()
	got = drainUploads(m)
	if len(got) != 1 {
		t.Fatalf("%d uploads after edit, want 1", len(got))
	}
	for _, u := range got {
		if u.ID != (Vec3{}) || u.Mesh.Faces() != 12 {
			t.Fatalf("upload %v with %d faces", u.ID, u.Mesh.Faces())
		}
	}
}

func TestMesherClose(t *testing.T) {
	reg := testRegistry(t)
	w := newWorld(t, reg, func(id Vec3) []world.BlockID { return nil })
	m := NewMesher(w.Chunks(), 0)
	m.Start()
	m.SetArea(RenderArea{Radius: 2})
	m.Close()
}
