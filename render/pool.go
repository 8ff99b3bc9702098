package render

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUMesh is a mesh living on the graphics device.
type GPUMesh interface {
	Faces() int
	Draw()
	Release()
}

// Backend turns CPU meshes into GPU meshes. It is only called from the
// goroutine that owns the Pool.
type Backend interface {
	NewMesh(m *MeshData) (GPUMesh, error)
}

type Stat struct {
	Faces         int
	CacheChunks   int
	RendingChunks int
}

type slot struct {
	id   Vec3
	mesh GPUMesh
}

// Pool holds the uploaded chunk meshes, indexed by mesher slot.
type Pool struct {
	backend Backend
	slots   []*slot
	stat    Stat
}

func NewPool(backend Backend) *Pool {
	return &Pool{backend: backend}
}

// Apply writes one upload into its slot, releasing whatever was there. A
// failed upload leaves the slot empty.
func (p *Pool) Apply(u Upload) error {
	for u.Slot >= len(p.slots) {
		p.slots = append(p.slots, nil)
	}
	if old := p.slots[u.Slot]; old != nil {
		old.mesh.Release()
		p.slots[u.Slot] = nil
	}
	if u.Mesh == nil {
		return nil
	}
	mesh, err := p.backend.NewMesh(u.Mesh)
	if err != nil {
		return err
	}
	p.slots[u.Slot] = &slot{id: u.ID, mesh: mesh}
	return nil
}

// Drain applies at most max pending uploads without blocking.
func (p *Pool) Drain(uploads <-chan Upload, max int) int {
	n := 0
	for ; n < max; n++ {
		select {
		case u := <-uploads:
			if err := p.Apply(u); err != nil {
				log.Printf("upload chunk %v: %v", u.ID, err)
			}
		default:
			return n
		}
	}
	return n
}

// Draw draws every live slot whose chunk intersects the frustum of mat.
func (p *Pool) Draw(mat mgl32.Mat4) {
	f := NewFrustum(mat)
	p.stat = Stat{}
	for _, s := range p.slots {
		if s == nil {
			continue
		}
		p.stat.CacheChunks++
		if !f.ChunkVisible(s.id) {
			continue
		}
		p.stat.RendingChunks++
		p.stat.Faces += s.mesh.Faces()
		s.mesh.Draw()
	}
}

func (p *Pool) Stat() Stat {
	return p.stat
}

func (p *Pool) Release() {
	for i, s := range p.slots {
		if s != nil {
			s.mesh.Release()
			p.slots[i] = nil
		}
	}
}
