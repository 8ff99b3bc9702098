package world

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the runtime tunables of a world.
type Config struct {
	Seed             int64
	RenderDistance   int
	GeneratorWorkers int
	TickInterval     time.Duration
}

func DefaultConfig() Config {
	return Config{
		Seed:             42,
		RenderDistance:   4,
		GeneratorWorkers: 3,
		TickInterval:     50 * time.Millisecond,
	}
}

const tickWindow = 8

// World ties the chunk map, the lighting engine and the load pipeline
// together and drives them from a fixed rate tick.
type World struct {
	cfg    Config
	reg    *Registry
	light  *LightEngine
	chunks *ChunkMap
	ins    *Inserter
	loader *ChunkLoader

	mu sync.RWMutex

	schedMu   sync.Mutex
	scheduled []func(*World)

	frozen   atomic.Bool
	onLoaded func(id Vec3)
	ticks    atomic.Int64

	timeMu    sync.Mutex
	lastTick  time.Time
	intervals [tickWindow]time.Duration
	nInterval int
}

// New creates a world whose chunks come from gen.
func New(cfg Config, reg *Registry, gen Generator) *World {
	def := DefaultConfig()
	if cfg.GeneratorWorkers <= 0 {
		cfg.GeneratorWorkers = def.GeneratorWorkers
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.RenderDistance <= 0 {
		cfg.RenderDistance = def.RenderDistance
	}
	light := NewLightEngine(reg)
	chunks := NewChunkMap(reg, light)
	ins := NewInserter(chunks, gen, cfg.GeneratorWorkers)
	return &World{
		cfg:    cfg,
		reg:    reg,
		light:  light,
		chunks: chunks,
		ins:    ins,
		loader: NewChunkLoader(chunks, ins),
	}
}

func (w *World) Config() Config {
	return w.cfg
}

func (w *World) Registry() *Registry {
	return w.reg
}

// Chunks exposes the chunk map to the mesher. Its reads are lock free.
func (w *World) Chunks() *ChunkMap {
	return w.chunks
}

func (w *World) ChunkLoader() *ChunkLoader {
	return w.loader
}

// OnLoaded sets a callback run by the tick for every inserted chunk.
func (w *World) OnLoaded(f func(id Vec3)) {
	w.mu.Lock()
	w.onLoaded = f
	w.mu.Unlock()
}

// SetFrozen stops lighting updates; edits keep queueing until unfrozen.
func (w *World) SetFrozen(frozen bool) {
	w.frozen.Store(frozen)
}

// Schedule runs f after the next tick, outside the world lock.
func (w *World) Schedule(f func(*World)) {
	w.schedMu.Lock()
	w.scheduled = append(w.scheduled, f)
	w.schedMu.Unlock()
}

// Tick advances the world one step: flush the load pipeline, apply
// lighting, then run scheduled callbacks.
func (w *World) Tick() {
	w.mu.Lock()
	w.loader.Flush(w.light, w.onLoaded)
	if !w.frozen.Load() {
		w.light.Apply(w.chunks)
	}
	w.mu.Unlock()

	w.schedMu.Lock()
	scheduled := w.scheduled
	w.scheduled = nil
	w.schedMu.Unlock()
	for _, f := range scheduled {
		f(w)
	}

	w.ticks.Add(1)
	w.recordTick(time.Now())
}

func (w *World) recordTick(now time.Time) {
	w.timeMu.Lock()
	defer w.timeMu.Unlock()
	if !w.lastTick.IsZero() {
		w.intervals[w.nInterval%tickWindow] = now.Sub(w.lastTick)
		w.nInterval++
	}
	w.lastTick = now
}

// SubTick returns the time since the last tick as a fraction of the
// average tick interval, clamped to [0,1].
func (w *World) SubTick() float32 {
	return w.subTickAt(time.Now())
}

func (w *World) subTickAt(now time.Time) float32 {
	w.timeMu.Lock()
	defer w.timeMu.Unlock()
	if w.lastTick.IsZero() {
		return 0
	}
	n := w.nInterval
	if n > tickWindow {
		n = tickWindow
	}
	var avg time.Duration
	if n == 0 {
		avg = w.cfg.TickInterval
	} else {
		var sum time.Duration
		for i := 0; i < n; i++ {
			sum += w.intervals[i]
		}
		avg = sum / time.Duration(n)
	}
	if avg <= 0 {
		return 1
	}
	f := float32(now.Sub(w.lastTick)) / float32(avg)
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

// Ticks returns the number of completed ticks.
func (w *World) Ticks() int64 {
	return w.ticks.Load()
}

// Run ticks at the configured interval until ctx is done.
func (w *World) Run(ctx context.Context) error {
	md := w.cfg.TickInterval
	timer := time.NewTimer(md)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		start := time.Now()
		w.Tick()
		spent := time.Since(start)
		if spent > md {
			log.Printf("tick spend %fs", spent.Seconds())
		}
		d := md - spent
		if d <= 0 {
			d = 1
		}
		timer.Reset(d)
	}
}

// Read opens a view that holds off the tick until Close.
func (w *World) Read() *View {
	w.mu.RLock()
	return &View{w: w}
}

type Stats struct {
	Loaded   int
	Enabled  int
	Pending  int
	Ready    int
	Lighting int
	Ticks    int64
}

func (w *World) Stats() Stats {
	return Stats{
		Loaded:   w.chunks.Len(),
		Enabled:  w.loader.EnabledLen(),
		Pending:  w.ins.Pending(),
		Ready:    w.ins.Ready(),
		Lighting: w.light.Pending(),
		Ticks:    w.ticks.Load(),
	}
}

// Close stops the generator workers.
func (w *World) Close() {
	w.ins.Close()
}
