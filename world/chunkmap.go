package world

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrUnloaded is returned when an edit touches a chunk that is not loaded.
var ErrUnloaded = errors.New("chunk not loaded")

// ChunkMap owns every loaded chunk. Lookups and cell reads and writes are
// lock free. The dirty FIFO is a slice behind dirtyMu, held only to append
// or pop one id; the per-chunk dirty flag keeps each chunk in it at most
// once. Inserts and removals only happen from the tick.
type ChunkMap struct {
	reg   *Registry
	light *LightEngine

	chunks sync.Map // map[Vec3]*Chunk
	count  atomic.Int64

	dirtyMu sync.Mutex
	dirtyq  []Vec3
}

// NewChunkMap creates an empty map. light may be nil, in which case block
// edits do not schedule lighting updates.
func NewChunkMap(reg *Registry, light *LightEngine) *ChunkMap {
	return &ChunkMap{reg: reg, light: light}
}

func (m *ChunkMap) Registry() *Registry {
	return m.reg
}

// Chunk returns the loaded chunk id, or nil. The returned chunk stays valid
// after it is unloaded; it just stops receiving updates.
func (m *ChunkMap) Chunk(id Vec3) *Chunk {
	c, ok := m.chunks.Load(id)
	if !ok {
		return nil
	}
	return c.(*Chunk)
}

// BlockChunk returns the loaded chunk containing block pos, or nil.
func (m *ChunkMap) BlockChunk(pos Vec3) *Chunk {
	return m.Chunk(pos.Chunkid())
}

func (m *ChunkMap) Has(id Vec3) bool {
	_, ok := m.chunks.Load(id)
	return ok
}

func (m *ChunkMap) Len() int {
	return int(m.count.Load())
}

// Range calls f for each loaded chunk until f returns false.
func (m *ChunkMap) Range(f func(c *Chunk) bool) {
	m.chunks.Range(func(k, v interface{}) bool {
		return f(v.(*Chunk))
	})
}

// Neighbors returns the six loaded neighbours of chunk id, indexed by
// Direction. Missing neighbours are nil.
func (m *ChunkMap) Neighbors(id Vec3) [6]*Chunk {
	var n [6]*Chunk
	for _, d := range Directions {
		n[d] = m.Chunk(id.Neighbor(d))
	}
	return n
}

// Block returns the block at pos; ok is false if its chunk is unloaded.
func (m *ChunkMap) Block(pos Vec3) (BlockID, bool) {
	c := m.BlockChunk(pos)
	if c == nil {
		return Air, false
	}
	return c.blockAt(localIndex(pos.Local())), true
}

// Light returns the light at pos; ok is false if its chunk is unloaded.
func (m *ChunkMap) Light(ch Channel, pos Vec3) (Light, bool) {
	c := m.BlockChunk(pos)
	if c == nil {
		return 0, false
	}
	return c.lightAt(ch, localIndex(pos.Local())), true
}

// SetBlock replaces the block at pos. A change of light kind schedules a
// lighting update, a change of opacity dirties neighbouring chunks across
// the touched faces.
func (m *ChunkMap) SetBlock(pos Vec3, id BlockID) error {
	c := m.BlockChunk(pos)
	if c == nil {
		return errors.Wrapf(ErrUnloaded, "set block %v", pos)
	}
	old := c.setBlockAt(localIndex(pos.Local()), id)
	if old == id {
		return nil
	}
	m.markDirty(c)

	ot, nt := m.reg.Type(old), m.reg.Type(id)
	if ot.Light != nt.Light && m.light != nil {
		m.light.BlockChanged(pos, ot.Light, nt.Light)
	}
	if ot.Draw.Opaque() != nt.Draw.Opaque() {
		for _, d := range Directions {
			n := pos.Neighbor(d)
			if n.Chunkid() == c.id {
				continue
			}
			if nc := m.BlockChunk(n); nc != nil {
				m.markDirty(nc)
			}
		}
	}
	return nil
}

func (m *ChunkMap) markDirty(c *Chunk) {
	if !c.markDirty() {
		return
	}
	m.dirtyMu.Lock()
	m.dirtyq = append(m.dirtyq, c.id)
	m.dirtyMu.Unlock()
}

// MarkDirty flags chunk id as changed if it is loaded.
func (m *ChunkMap) MarkDirty(id Vec3) {
	if c := m.Chunk(id); c != nil {
		m.markDirty(c)
	}
}

// PollDirty dequeues the next chunk whose dirty flag is set and clears the
// flag. Entries whose flag was already taken are skipped.
func (m *ChunkMap) PollDirty() (Vec3, bool) {
	for {
		m.dirtyMu.Lock()
		if len(m.dirtyq) == 0 {
			m.dirtyMu.Unlock()
			return Vec3{}, false
		}
		id := m.dirtyq[0]
		m.dirtyq[0] = Vec3{}
		m.dirtyq = m.dirtyq[1:]
		m.dirtyMu.Unlock()

		c := m.Chunk(id)
		if c == nil {
			continue
		}
		if c.takeDirty() {
			return id, true
		}
	}
}

// insert stores c and reports whether it replaced a loaded chunk.
func (m *ChunkMap) insert(c *Chunk) bool {
	_, loaded := m.chunks.Swap(c.id, c)
	if !loaded {
		m.count.Add(1)
	}
	return loaded
}

func (m *ChunkMap) remove(id Vec3) bool {
	_, loaded := m.chunks.LoadAndDelete(id)
	if loaded {
		m.count.Add(-1)
	}
	return loaded
}

// RayTrace walks the grid from start along dir and returns the first block
// drawn as an opaque cube within maxRange, together with the face the ray
// entered through. It gives up at the first unloaded chunk.
func (m *ChunkMap) RayTrace(start, dir mgl32.Vec3, maxRange float32) (Vec3, Direction, bool) {
	if dir.Len() == 0 {
		return Vec3{}, 0, false
	}
	dir = dir.Normalize()
	cur := NearBlock(start)
	pos := [3]int{cur.X, cur.Y, cur.Z}

	var (
		step   [3]int
		tMax   [3]float64
		tDelta [3]float64
	)
	major, face := 0, Direction(0)
	for axis := 0; axis < 3; axis++ {
		p, d := float64(start[axis]), float64(dir[axis])
		switch {
		case d > 0:
			step[axis] = 1
			tMax[axis] = (math.Floor(p) + 1 - p) / d
			tDelta[axis] = 1 / d
		case d < 0:
			step[axis] = -1
			tMax[axis] = (p - math.Floor(p)) / -d
			tDelta[axis] = -1 / d
		default:
			tMax[axis] = math.Inf(1)
			tDelta[axis] = math.Inf(1)
		}
		if math.Abs(d) > math.Abs(float64(dir[major])) {
			major = axis
		}
	}
	face = entryFace(major, dir[major] > 0)

	limit := float64(maxRange)
	for {
		id, ok := m.Block(Vec3{pos[0], pos[1], pos[2]})
		if !ok {
			return Vec3{}, 0, false
		}
		if m.reg.IsOpaque(id) {
			return Vec3{pos[0], pos[1], pos[2]}, face, true
		}
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		if tMax[axis] > limit {
			return Vec3{}, 0, false
		}
		pos[axis] += step[axis]
		tMax[axis] += tDelta[axis]
		face = entryFace(axis, step[axis] > 0)
	}
}

// entryFace is the face crossed when moving along axis in the given sense.
func entryFace(axis int, positive bool) Direction {
	d := Direction(axis * 2)
	if positive {
		return d + 1
	}
	return d
}
