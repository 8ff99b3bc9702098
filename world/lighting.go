package world

import (
	"sync"
)

// LightSource is an emitter found in a freshly generated chunk.
type LightSource struct {
	Pos   Vec3
	Level uint8
}

type lightEdit struct {
	pos Vec3
	old LightKind
}

// LightEngine propagates both light channels over a ChunkMap. Block edits,
// increase seeds and decrease seeds sit in three queues, each behind its own
// lock, and may be filled from any goroutine; Apply is called once per tick by
// the single writer and does the actual flood fill.
type LightEngine struct {
	reg *Registry

	editMu sync.Mutex
	edits  []lightEdit

	incMu sync.Mutex
	inc   [2][]lightEntry
	// chunks whose upper neighbour was unloaded; they get sky again if
	// nothing covers them by the next Apply
	uncovered []Vec3

	decMu sync.Mutex
	dec   [2][]decreaseEntry
}

func NewLightEngine(reg *Registry) *LightEngine {
	return &LightEngine{reg: reg}
}

// BlockChanged records that the light kind of the block at pos changed from
// old. What has to be retracted or refilled is decided by Apply against the
// cell state at that time, so several edits of one cell within a tick
// collapse correctly.
func (e *LightEngine) BlockChanged(pos Vec3, old, new LightKind) {
	e.editMu.Lock()
	e.edits = append(e.edits, lightEdit{pos: pos, old: old})
	e.editMu.Unlock()
}

func (e *LightEngine) pushDecrease(ch Channel, d decreaseEntry) {
	e.decMu.Lock()
	e.dec[ch] = append(e.dec[ch], d)
	e.decMu.Unlock()
}

// Pending returns the number of queued edits and seeds.
func (e *LightEngine) Pending() int {
	n := 0
	e.editMu.Lock()
	n += len(e.edits)
	e.editMu.Unlock()
	e.incMu.Lock()
	n += len(e.inc[0]) + len(e.inc[1]) + len(e.uncovered)
	e.incMu.Unlock()
	e.decMu.Lock()
	n += len(e.dec[0]) + len(e.dec[1])
	e.decMu.Unlock()
	return n
}

// SeedChunk queues the initial light of c, which has just been inserted
// into m: its emitters, the light flowing in from every loaded neighbour
// and, when nothing is loaded above, the sky.
func (e *LightEngine) SeedChunk(m *ChunkMap, c *Chunk, sources []LightSource) {
	e.incMu.Lock()
	defer e.incMu.Unlock()

	for _, s := range sources {
		e.inc[Artificial] = append(e.inc[Artificial], lightEntry{s.Pos, NewLight(s.Level, SelfLit)})
	}

	for _, d := range Directions {
		nb := m.Chunk(c.id.Neighbor(d))
		if nb == nil {
			continue
		}
		// Light crosses from nb into c travelling in -d.
		in := d.Invert()
		for _, ch := range channels {
			forFace(nb, in, func(i int, pos Vec3) {
				l := nb.lightAt(ch, i)
				if l.Level() <= 1 {
					return
				}
				if l.Source() == Directed(d) {
					// Light that entered nb from c's side is stale: it came
					// from a previous chunk at c's place or, below c, from
					// the open sky c now covers. It is being retracted.
					return
				}
				e.inc[ch] = append(e.inc[ch], lightEntry{
					pos.Neighbor(in),
					NewLight(ch.ComputeTo(in, l.Level()), Directed(in)),
				})
			})
		}
	}

	if m.Chunk(c.id.Up()) == nil {
		forFace(c, PosY, func(i int, pos Vec3) {
			e.inc[Natural] = append(e.inc[Natural], lightEntry{pos, NewLight(MaxNaturalLight, Directed(NegY))})
		})
	}

	if below := m.Chunk(c.id.Down()); below != nil {
		forFace(below, PosY, func(i int, pos Vec3) {
			if l := below.lightAt(Natural, i); l.Level() > 0 && l.Source() == Directed(NegY) {
				e.pushDecrease(Natural, decreaseEntry{pos: pos, filter: Directed(NegY), filtered: true})
			}
		})
	}
}

// ChunkRemoved retracts the light the chunk id handed to its loaded
// neighbours. It must be called before id leaves m; the retraction runs at
// the next Apply, when id is already gone and acts as an opaque wall. The
// chunk below, if loaded, is open to the sky again.
func (e *LightEngine) ChunkRemoved(m *ChunkMap, id Vec3) {
	for _, d := range Directions {
		nb := m.Chunk(id.Neighbor(d))
		if nb == nil {
			continue
		}
		for _, ch := range channels {
			forFace(nb, d.Invert(), func(i int, pos Vec3) {
				if l := nb.lightAt(ch, i); l.Level() > 0 && l.Source() == Directed(d) {
					e.pushDecrease(ch, decreaseEntry{pos: pos, filter: Directed(d), filtered: true})
				}
			})
		}
	}
	if m.Chunk(id.Down()) != nil {
		e.incMu.Lock()
		e.uncovered = append(e.uncovered, id.Down())
		e.incMu.Unlock()
	}
}

// forFace calls f for every cell of c on its face d, with the cell index and
// world position.
func forFace(c *Chunk, d Direction, f func(i int, pos Vec3)) {
	fixed := 0
	if d.Positive() {
		fixed = ChunkWidth - 1
	}
	origin := c.id.Origin()
	for a := 0; a < ChunkWidth; a++ {
		for b := 0; b < ChunkWidth; b++ {
			var l Vec3
			switch d.Axis() {
			case 0:
				l = Vec3{fixed, a, b}
			case 1:
				l = Vec3{a, fixed, b}
			default:
				l = Vec3{a, b, fixed}
			}
			f(localIndex(l), origin.Add(l))
		}
	}
}

// Apply runs every queued edit and seed to completion on both channels.
func (e *LightEngine) Apply(m *ChunkMap) {
	e.editMu.Lock()
	edits := e.edits
	e.edits = nil
	e.editMu.Unlock()

	e.incMu.Lock()
	inc := e.inc
	e.inc = [2][]lightEntry{}
	uncovered := e.uncovered
	e.uncovered = nil
	e.incMu.Unlock()

	for _, id := range uncovered {
		c := m.Chunk(id)
		if c == nil || m.Chunk(id.Up()) != nil {
			continue
		}
		forFace(c, PosY, func(i int, pos Vec3) {
			inc[Natural] = append(inc[Natural], lightEntry{pos, NewLight(MaxNaturalLight, Directed(NegY))})
		})
	}

	e.decMu.Lock()
	dec := e.dec
	e.dec = [2][]decreaseEntry{}
	e.decMu.Unlock()

	for _, ch := range channels {
		r := lightRun{e: e, m: m, ch: ch}
		for _, d := range dec[ch] {
			r.decrease(d)
		}
		for _, ed := range edits {
			r.edit(ed)
		}
		for _, in := range inc[ch] {
			r.inc.push(in.pos, in.light)
		}
		r.run()
	}
}

// lightRun is one pass of one channel.
type lightRun struct {
	e  *LightEngine
	m  *ChunkMap
	ch Channel

	inc      increaseQueue
	dec      decreaseQueue
	brighter []lightEntry
	refills  []Vec3
}

func (r *lightRun) lightAt(pos Vec3) (Light, bool) {
	return r.m.Light(r.ch, pos)
}

func (r *lightRun) decrease(d decreaseEntry) {
	l, ok := r.lightAt(d.pos)
	if !ok {
		return
	}
	r.dec.push(d, l.Level())
}

func (r *lightRun) edit(ed lightEdit) {
	c := r.m.BlockChunk(ed.pos)
	if c == nil {
		return
	}
	i := localIndex(ed.pos.Local())
	t := r.e.reg.Type(c.blockAt(i))
	internal := r.ch.Internal(t)
	cur := c.lightAt(r.ch, i)
	// Light reaching a transparent cell from a neighbour stays valid; only
	// a cell that turned opaque or lost its own emission is retracted.
	stale := t.Light.Opaque() || cur.Source() == SelfLit
	if cur.Level() > internal && stale {
		r.dec.push(decreaseEntry{pos: ed.pos}, cur.Level())
	} else if !t.Light.Opaque() && ed.old.Opaque() {
		r.refills = append(r.refills, ed.pos)
	}
	if internal > 0 {
		r.inc.push(ed.pos, NewLight(internal, SelfLit))
	}
}

func (r *lightRun) run() {
	r.runDecrease()
	for _, b := range r.brighter {
		l, ok := r.lightAt(b.pos)
		if !ok || l.Level() <= 1 {
			continue
		}
		d, _ := b.light.Source().Direction()
		r.inc.push(b.pos.Neighbor(d), NewLight(r.ch.ComputeTo(d, l.Level()), Directed(d)))
	}
	r.brighter = nil
	for _, p := range r.refills {
		r.refillAt(p)
	}
	r.refills = nil
	r.runIncrease()
}

func (r *lightRun) runDecrease() {
	for {
		d, ok := r.dec.pop()
		if !ok {
			return
		}
		c := r.m.BlockChunk(d.pos)
		if c == nil {
			continue
		}
		i := localIndex(d.pos.Local())
		cur := c.lightAt(r.ch, i)
		level := cur.Level()
		if level == 0 {
			continue
		}
		if d.filtered && cur.Source() != d.filter {
			// Lit by someone else; re-propagate from here afterwards.
			dir, _ := d.filter.Direction()
			r.brighter = append(r.brighter, lightEntry{d.pos, NewLight(0, Directed(dir.Invert()))})
			continue
		}
		if c.setLightAt(r.ch, i, 0) {
			r.m.markDirty(c)
		}
		for _, dir := range Directions {
			r.dec.push(decreaseEntry{pos: d.pos.Neighbor(dir), filter: Directed(dir), filtered: true}, level)
		}
		if s := r.ch.Internal(r.e.reg.Type(c.blockAt(i))); s > 0 {
			r.inc.push(d.pos, NewLight(s, SelfLit))
		}
	}
}

// refillAt relights pos from its brightest neighbour.
func (r *lightRun) refillAt(pos Vec3) {
	var best Light
	for _, d := range Directions {
		l, ok := r.lightAt(pos.Neighbor(d))
		if !ok {
			continue
		}
		in := d.Invert()
		if lvl := r.ch.ComputeTo(in, l.Level()); lvl > best.Level() {
			best = NewLight(lvl, Directed(in))
		}
	}
	r.inc.push(pos, best)
}

func (r *lightRun) runIncrease() {
	for {
		in, ok := r.inc.pop()
		if !ok {
			return
		}
		c := r.m.BlockChunk(in.pos)
		if c == nil {
			continue
		}
		i := localIndex(in.pos.Local())
		level := in.light.Level()
		if c.lightAt(r.ch, i).Level() >= level {
			continue
		}
		if r.e.reg.Type(c.blockAt(i)).Light.Opaque() {
			continue
		}
		if c.setLightAt(r.ch, i, in.light) {
			r.m.markDirty(c)
		}
		if level <= 1 {
			continue
		}
		for _, d := range Directions {
			r.inc.push(in.pos.Neighbor(d), NewLight(r.ch.ComputeTo(d, level), Directed(d)))
		}
	}
}
