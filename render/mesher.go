package render

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/humboldt-xie/voxelworld/world"
)

// RenderArea is the cube of chunks around Center that gets meshed.
type RenderArea struct {
	Center Vec3
	Radius int
}

func (a RenderArea) Contains(id Vec3) bool {
	d := id.Sub(a.Center)
	return abs(d.X) <= a.Radius && abs(d.Y) <= a.Radius && abs(d.Z) <= a.Radius
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Upload asks the main thread to write a slot. A nil Mesh vacates it.
type Upload struct {
	Slot int
	ID   Vec3
	Mesh *MeshData
}

// Mesher builds chunk meshes in the background and hands them over as
// uploads. Slot bookkeeping is owned by the mesher goroutine.
type Mesher struct {
	chunks *world.ChunkMap
	out    chan Upload
	sigch  chan bool
	done   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	area    RenderArea
	areaSet bool
	changed bool

	nslots int
	free   []int
	bySlot map[Vec3]int
}

const mesherIdle = 5 * time.Millisecond

func NewMesher(chunks *world.ChunkMap, buffer int) *Mesher {
	return &Mesher{
		chunks: chunks,
		out:    make(chan Upload, buffer),
		sigch:  make(chan bool, 1),
		done:   make(chan struct{}),
		bySlot: make(map[Vec3]int),
	}
}

// SetArea moves the render area. It is cheap to call every frame.
func (m *Mesher) SetArea(a RenderArea) {
	m.mu.Lock()
	if a != m.area || !m.areaSet {
		m.area = a
		m.areaSet = true
		m.changed = true
	}
	m.mu.Unlock()
	select {
	case m.sigch <- true:
	default:
	}
}

func (m *Mesher) Uploads() <-chan Upload {
	return m.out
}

func (m *Mesher) Start() {
	m.wg.Add(1)
	go m.loop()
}

func (m *Mesher) Close() {
	close(m.done)
	m.wg.Wait()
}

func (m *Mesher) loop() {
	defer m.wg.Done()
	timer := time.NewTimer(mesherIdle)
	defer timer.Stop()
	for {
		if !m.step() {
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(mesherIdle)
		select {
		case <-m.done:
			return
		case <-m.sigch:
		case <-timer.C:
		}
	}
}

// step runs one mesher iteration and reports false once closed.
func (m *Mesher) step() bool {
	m.mu.Lock()
	area, changed := m.area, m.changed
	m.changed = false
	m.mu.Unlock()

	if changed && !m.moveArea(area) {
		return false
	}
	for {
		id, ok := m.chunks.PollDirty()
		if !ok {
			return true
		}
		slot, ok := m.bySlot[id]
		if !ok {
			continue
		}
		if !m.build(slot, id) {
			return false
		}
	}
}

func (m *Mesher) moveArea(area RenderArea) bool {
	for id, slot := range m.bySlot {
		if area.Contains(id) {
			continue
		}
		delete(m.bySlot, id)
		m.free = append(m.free, slot)
		if !m.send(Upload{Slot: slot, ID: id}) {
			return false
		}
	}

	var added []Vec3
	r := area.Radius
	for dy := -r; dy <= r; dy++ {
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				id := area.Center.Add(Vec3{X: dx, Y: dy, Z: dz})
				if _, ok := m.bySlot[id]; !ok {
					added = append(added, id)
				}
			}
		}
	}
	sort.Slice(added, func(i, j int) bool {
		return distance2(added[i], area.Center) < distance2(added[j], area.Center)
	})

	for _, id := range added {
		slot := m.alloc(id)
		if m.chunks.Chunk(id) == nil {
			// meshed once the loader inserts it and flags it dirty
			continue
		}
		if !m.build(slot, id) {
			return false
		}
	}
	return true
}

func distance2(a, b Vec3) int {
	d := a.Sub(b)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

func (m *Mesher) alloc(id Vec3) int {
	var slot int
	if n := len(m.free); n > 0 {
		slot = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		slot = m.nslots
		m.nslots++
	}
	m.bySlot[id] = slot
	return slot
}

func (m *Mesher) build(slot int, id Vec3) bool {
	c := m.chunks.Chunk(id)
	if c == nil {
		return m.send(Upload{Slot: slot, ID: id})
	}
	start := time.Now()
	mesh := BuildMesh(m.chunks.Registry(), c, m.chunks.Neighbors(id))
	if d := time.Since(start); d > 50*time.Millisecond {
		log.Printf("mesh chunk %v spend %fs %d faces", id, d.Seconds(), mesh.Faces())
	}
	return m.send(Upload{Slot: slot, ID: id, Mesh: mesh})
}

func (m *Mesher) send(u Upload) bool {
	select {
	case m.out <- u:
		return true
	case <-m.done:
		return false
	}
}
