package world

import (
	"log"
	"sync"
	"time"
)

// Generator produces the initial blocks of a chunk. It must be safe for
// concurrent use and deterministic in id.
type Generator interface {
	GenChunk(id Vec3) []BlockID
}

type readyChunk struct {
	chunk   *Chunk
	sources []LightSource
}

// Inserter builds requested chunks on a pool of background workers. Built
// chunks wait in the ready queue until the tick takes them; workers never
// touch the chunk map.
type Inserter struct {
	reg *Registry
	m   *ChunkMap
	gen Generator

	mu       sync.Mutex
	pending  map[Vec3]struct{}
	queue    []Vec3
	inflight map[Vec3]struct{}
	ready    []readyChunk
	readySet map[Vec3]struct{}
	failed   []Vec3

	sigch chan bool
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

func NewInserter(m *ChunkMap, gen Generator, workers int) *Inserter {
	if workers < 1 {
		workers = 1
	}
	i := &Inserter{
		reg:      m.Registry(),
		m:        m,
		gen:      gen,
		pending:  make(map[Vec3]struct{}),
		inflight: make(map[Vec3]struct{}),
		readySet: make(map[Vec3]struct{}),
		sigch:    make(chan bool, workers),
		done:     make(chan struct{}),
	}
	i.wg.Add(workers)
	for n := 0; n < workers; n++ {
		go i.worker()
	}
	return i
}

// Request schedules chunk id for generation unless it is already loaded or
// somewhere in the pipeline.
func (i *Inserter) Request(id Vec3) {
	if i.m.Has(id) {
		return
	}
	i.mu.Lock()
	_, p := i.pending[id]
	_, f := i.inflight[id]
	_, r := i.readySet[id]
	if p || f || r {
		i.mu.Unlock()
		return
	}
	i.pending[id] = struct{}{}
	i.queue = append(i.queue, id)
	i.mu.Unlock()
	i.signal()
}

// Cancel drops id if no worker picked it up yet. Chunks in flight or
// already built are filtered out by the loader at flush time.
func (i *Inserter) Cancel(id Vec3) {
	i.mu.Lock()
	delete(i.pending, id)
	i.mu.Unlock()
}

func (i *Inserter) signal() {
	// nonblock signal
	select {
	case i.sigch <- true:
	default:
	}
}

// next pops the oldest pending coordinate that was not cancelled.
func (i *Inserter) next() (Vec3, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for len(i.queue) > 0 {
		id := i.queue[0]
		i.queue = i.queue[1:]
		if _, ok := i.pending[id]; !ok {
			continue
		}
		delete(i.pending, id)
		i.inflight[id] = struct{}{}
		return id, true
	}
	i.queue = nil
	return Vec3{}, false
}

func (i *Inserter) worker() {
	defer i.wg.Done()
	for {
		id, ok := i.next()
		if !ok {
			select {
			case <-i.done:
				return
			case <-i.sigch:
			}
			continue
		}
		i.build(id)
		// more work may be queued than signals were buffered
		i.signal()
	}
}

func (i *Inserter) build(id Vec3) {
	defer func() {
		if err := recover(); err != nil {
			log.Printf("generate chunk %v panic: %v", id, err)
			i.mu.Lock()
			delete(i.inflight, id)
			i.failed = append(i.failed, id)
			i.mu.Unlock()
		}
	}()
	start := time.Now()
	c := NewChunk(id, i.gen.GenChunk(id))
	var sources []LightSource
	c.RangeBlocks(func(pos Vec3, b BlockID) {
		if lvl := i.reg.Type(b).Light.Emission(); lvl > 0 {
			sources = append(sources, LightSource{Pos: pos, Level: lvl})
		}
	})

	i.mu.Lock()
	delete(i.inflight, id)
	i.ready = append(i.ready, readyChunk{chunk: c, sources: sources})
	i.readySet[id] = struct{}{}
	i.mu.Unlock()
	if d := time.Since(start); d > 100*time.Millisecond {
		log.Printf("generate chunk %v spend %fs", id, d.Seconds())
	}
}

func (i *Inserter) takeReady() []readyChunk {
	i.mu.Lock()
	defer i.mu.Unlock()
	ready := i.ready
	i.ready = nil
	for _, r := range ready {
		delete(i.readySet, r.chunk.id)
	}
	return ready
}

// takeFailed returns the coordinates whose generation panicked since the
// last call.
func (i *Inserter) takeFailed() []Vec3 {
	i.mu.Lock()
	defer i.mu.Unlock()
	failed := i.failed
	i.failed = nil
	return failed
}

// Pending returns the number of queued and in-flight chunks.
func (i *Inserter) Pending() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.pending) + len(i.inflight)
}

// Ready returns the number of built chunks waiting for a flush.
func (i *Inserter) Ready() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.ready)
}

// Close stops the workers after their current chunk.
func (i *Inserter) Close() {
	i.once.Do(func() {
		close(i.done)
	})
	i.wg.Wait()
}
