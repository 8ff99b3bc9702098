package world

import (
	"log"
	"sort"
	"sync"
)

// ChunkLoader keeps the enable set: every chunk coordinate some observer
// wants, with a count of how many load cubes contain it.
type ChunkLoader struct {
	m   *ChunkMap
	ins *Inserter

	mu     sync.Mutex
	counts map[Vec3]int
	unload []Vec3
}

func NewChunkLoader(m *ChunkMap, ins *Inserter) *ChunkLoader {
	return &ChunkLoader{
		m:      m,
		ins:    ins,
		counts: make(map[Vec3]int),
	}
}

// LoadGuard keeps a cube of chunks enabled until Release.
type LoadGuard struct {
	l      *ChunkLoader
	center Vec3
	radius int
	once   sync.Once
}

func (g *LoadGuard) Center() Vec3 {
	return g.center
}

func (g *LoadGuard) Radius() int {
	return g.radius
}

func cube(center Vec3, radius int, f func(id Vec3)) {
	for dy := -radius; dy <= radius; dy++ {
		for dz := -radius; dz <= radius; dz++ {
			for dx := -radius; dx <= radius; dx++ {
				f(Vec3{center.X + dx, center.Y + dy, center.Z + dz})
			}
		}
	}
}

func distance2(a, b Vec3) int {
	d := a.Sub(b)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

// LoadCube enables every chunk in center ± radius. Newly enabled chunks are
// requested nearest first.
func (l *ChunkLoader) LoadCube(center Vec3, radius int) *LoadGuard {
	if radius < 0 {
		radius = 0
	}
	var added []Vec3
	l.mu.Lock()
	cube(center, radius, func(id Vec3) {
		l.counts[id]++
		if l.counts[id] == 1 {
			added = append(added, id)
		}
	})
	l.mu.Unlock()

	sort.Slice(added, func(i, j int) bool {
		return distance2(added[i], center) < distance2(added[j], center)
	})
	for _, id := range added {
		l.ins.Request(id)
	}
	return &LoadGuard{l: l, center: center, radius: radius}
}

// Release gives the cube back. Calling it more than once is a no-op.
func (g *LoadGuard) Release() {
	g.once.Do(func() {
		l := g.l
		l.mu.Lock()
		defer l.mu.Unlock()
		cube(g.center, g.radius, func(id Vec3) {
			n := l.counts[id] - 1
			if n > 0 {
				l.counts[id] = n
				return
			}
			delete(l.counts, id)
			l.unload = append(l.unload, id)
		})
	})
}

// Enabled reports whether some live guard covers id.
func (l *ChunkLoader) Enabled(id Vec3) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.counts[id]
	return ok
}

// EnabledLen returns the size of the enable set.
func (l *ChunkLoader) EnabledLen() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counts)
}

// Flush unloads disabled chunks, retracting the light they gave their
// neighbours, and inserts built chunks that are still wanted, seeding their
// light. onLoaded, if set, is called for each
// inserted chunk. Must only be called by the tick.
func (l *ChunkLoader) Flush(light *LightEngine, onLoaded func(id Vec3)) {
	l.mu.Lock()
	var stale []Vec3
	for _, id := range l.unload {
		if _, ok := l.counts[id]; !ok {
			stale = append(stale, id)
		}
	}
	l.unload = nil
	l.mu.Unlock()

	for _, id := range stale {
		l.ins.Cancel(id)
		if !l.m.Has(id) {
			continue
		}
		if light != nil {
			light.ChunkRemoved(l.m, id)
		}
		l.m.remove(id)
		l.dirtyNeighbors(id)
	}

	ready := l.ins.takeReady()
	l.mu.Lock()
	inserted := ready[:0]
	for _, r := range ready {
		if _, ok := l.counts[r.chunk.id]; ok {
			inserted = append(inserted, r)
		}
	}
	l.mu.Unlock()

	// Insert everything before seeding so each seed sees its final
	// neighbourhood.
	for _, r := range inserted {
		if l.m.insert(r.chunk) {
			log.Printf("chunk %v inserted twice, replacing", r.chunk.id)
		}
	}
	for _, r := range inserted {
		if light != nil {
			light.SeedChunk(l.m, r.chunk, r.sources)
		}
		l.m.markDirty(r.chunk)
		l.dirtyNeighbors(r.chunk.id)
		if onLoaded != nil {
			onLoaded(r.chunk.id)
		}
	}

	for _, id := range l.ins.takeFailed() {
		if l.Enabled(id) {
			l.ins.Request(id)
		}
	}
}

func (l *ChunkLoader) dirtyNeighbors(id Vec3) {
	for _, d := range Directions {
		l.m.MarkDirty(id.Neighbor(d))
	}
}
