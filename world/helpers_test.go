package world

import (
	"testing"
)

type genFunc func(id Vec3) []BlockID

func (f genFunc) GenChunk(id Vec3) []BlockID {
	return f(id)
}

func emptyGen(id Vec3) []BlockID {
	return nil
}

type testWorld struct {
	reg   *Registry
	light *LightEngine
	m     *ChunkMap
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()
	reg := NewRegistry()
	if err := RegisterDefaults(reg); err != nil {
		t.Fatal(err)
	}
	light := NewLightEngine(reg)
	return &testWorld{reg: reg, light: light, m: NewChunkMap(reg, light)}
}

func (w *testWorld) id(t *testing.T, name string) BlockID {
	t.Helper()
	id, err := w.reg.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

// load inserts the chunks the way a flush does and runs the lighting.
func (w *testWorld) load(chunks ...*Chunk) {
	for _, c := range chunks {
		w.m.insert(c)
	}
	for _, c := range chunks {
		var sources []LightSource
		c.RangeBlocks(func(pos Vec3, b BlockID) {
			if lvl := w.reg.Type(b).Light.Emission(); lvl > 0 {
				sources = append(sources, LightSource{pos, lvl})
			}
		})
		w.light.SeedChunk(w.m, c, sources)
	}
	w.light.Apply(w.m)
}

// unload removes the chunks the way a flush does and runs the lighting.
func (w *testWorld) unload(ids ...Vec3) {
	for _, id := range ids {
		w.light.ChunkRemoved(w.m, id)
		w.m.remove(id)
	}
	w.light.Apply(w.m)
}

func (w *testWorld) set(t *testing.T, pos Vec3, id BlockID) {
	t.Helper()
	if err := w.m.SetBlock(pos, id); err != nil {
		t.Fatal(err)
	}
}

func (w *testWorld) level(t *testing.T, ch Channel, pos Vec3) uint8 {
	t.Helper()
	l, ok := w.m.Light(ch, pos)
	if !ok {
		t.Fatalf("%v not loaded", pos)
	}
	return l.Level()
}

// filled returns chunk blocks with the layers y in [y0,y1) set to b.
func filled(y0, y1 int, b BlockID) []BlockID {
	blocks := make([]BlockID, chunkSize)
	for y := y0; y < y1; y++ {
		for z := 0; z < ChunkWidth; z++ {
			for x := 0; x < ChunkWidth; x++ {
				blocks[localIndex(Vec3{x, y, z})] = b
			}
		}
	}
	return blocks
}

// checkLight verifies that every lit cell is explained by its source.
func checkLight(t *testing.T, w *testWorld) {
	t.Helper()
	bad := 0
	w.m.Range(func(c *Chunk) bool {
		origin := c.id.Origin()
		for _, ch := range channels {
			for i := 0; i < chunkSize; i++ {
				l := c.lightAt(ch, i)
				if l.Level() == 0 {
					continue
				}
				pos := origin.Add(LocalPos(i))
				d, ok := l.Source().Direction()
				if !ok {
					if want := ch.Internal(w.reg.Type(c.blockAt(i))); l.Level() > want && ch == Artificial {
						t.Errorf("%v %v: self lit %v, emits %d", ch, pos, l, want)
						bad++
					}
					continue
				}
				from, ok := w.m.Light(ch, pos.Sub(d.Offset()))
				if !ok {
					// only the sky may shine in from an absent chunk
					if ch != Natural || d != NegY || l.Level() != MaxNaturalLight {
						t.Errorf("%v %v: %v comes from an unloaded chunk", ch, pos, l)
						bad++
					}
					continue
				}
				if want := ch.ComputeTo(d, from.Level()); l.Level() != want {
					t.Errorf("%v %v: %v, source has %v", ch, pos, l, from)
					bad++
				}
				if bad > 10 {
					t.FailNow()
				}
			}
		}
		return true
	})
}

// checkDark fails if any loaded cell holds artificial light.
func checkDark(t *testing.T, w *testWorld) {
	t.Helper()
	w.m.Range(func(c *Chunk) bool {
		for i, l := range c.Lights(Artificial) {
			if l.Level() != 0 {
				t.Fatalf("%v lit %v without an emitter", c.id.Origin().Add(LocalPos(i)), l)
			}
		}
		return true
	})
}
