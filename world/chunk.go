package world

import (
	"log"
	"sync/atomic"
)

// Each cell is one atomic word:
//
//	bits  0-15 block id
//	bits 16-23 artificial light
//	bits 24-31 natural light
const (
	cellBlockMask = 0xFFFF
	cellLightBits = 16
)

func cellLightShift(ch Channel) uint32 {
	return cellLightBits + 8*uint32(ch)
}

type Chunk struct {
	id      Vec3
	version atomic.Int64
	dirty   atomic.Bool
	cells   []atomic.Uint32
}

// NewChunk builds a fully initialized chunk. blocks is indexed like Index
// and must hold ChunkWidth³ entries; nil means all air.
func NewChunk(id Vec3, blocks []BlockID) *Chunk {
	if blocks != nil && len(blocks) != chunkSize {
		log.Panicf("chunk %v: %d blocks, want %d", id, len(blocks), chunkSize)
	}
	c := &Chunk{
		id:    id,
		cells: make([]atomic.Uint32, chunkSize),
	}
	for i, b := range blocks {
		c.cells[i].Store(uint32(b))
	}
	return c
}

func (c *Chunk) Id() Vec3 {
	return c.id
}

// V is bumped on every cell change.
func (c *Chunk) V() int64 {
	return c.version.Load()
}

func (c *Chunk) check(id Vec3) int {
	if id.Chunkid() != c.id {
		log.Panicf("id %v chunk %v", id, c.id)
	}
	return localIndex(id.Local())
}

// Block returns the block at world position id, which must lie in c.
func (c *Chunk) Block(id Vec3) BlockID {
	return c.blockAt(c.check(id))
}

// Light returns the light at world position id, which must lie in c.
func (c *Chunk) Light(ch Channel, id Vec3) Light {
	return c.lightAt(ch, c.check(id))
}

// LocalBlock returns the block at chunk-local position l.
func (c *Chunk) LocalBlock(l Vec3) BlockID {
	return c.blockAt(localIndex(l))
}

func (c *Chunk) LocalLight(ch Channel, l Vec3) Light {
	return c.lightAt(ch, localIndex(l))
}

func (c *Chunk) blockAt(i int) BlockID {
	return BlockID(c.cells[i].Load() & cellBlockMask)
}

func (c *Chunk) lightAt(ch Channel, i int) Light {
	return Light(c.cells[i].Load() >> cellLightShift(ch))
}

// setBlockAt swaps the block of cell i and returns the previous one.
func (c *Chunk) setBlockAt(i int, b BlockID) BlockID {
	for {
		old := c.cells[i].Load()
		n := old&^cellBlockMask | uint32(b)
		if old == n {
			return b
		}
		if c.cells[i].CompareAndSwap(old, n) {
			c.version.Add(1)
			return BlockID(old & cellBlockMask)
		}
	}
}

// setLightAt stores l into cell i and reports whether anything changed.
func (c *Chunk) setLightAt(ch Channel, i int, l Light) bool {
	shift := cellLightShift(ch)
	mask := uint32(0xFF) << shift
	for {
		old := c.cells[i].Load()
		n := old&^mask | uint32(l)<<shift
		if old == n {
			return false
		}
		if c.cells[i].CompareAndSwap(old, n) {
			c.version.Add(1)
			return true
		}
	}
}

// markDirty sets the dirty flag and reports whether it was clear before.
func (c *Chunk) markDirty() bool {
	return c.dirty.CompareAndSwap(false, true)
}

// takeDirty clears the dirty flag and reports whether it was set.
func (c *Chunk) takeDirty() bool {
	return c.dirty.Swap(false)
}

func (c *Chunk) IsDirty() bool {
	return c.dirty.Load()
}

// Blocks returns a copy of all block ids, indexed like Index.
func (c *Chunk) Blocks() []BlockID {
	blocks := make([]BlockID, chunkSize)
	for i := range blocks {
		blocks[i] = c.blockAt(i)
	}
	return blocks
}

// Lights returns a copy of one light channel, indexed like Index.
func (c *Chunk) Lights(ch Channel) []Light {
	lights := make([]Light, chunkSize)
	for i := range lights {
		lights[i] = c.lightAt(ch, i)
	}
	return lights
}

// RangeBlocks calls f for every non-air block with its world position.
func (c *Chunk) RangeBlocks(f func(id Vec3, b BlockID)) {
	origin := c.id.Origin()
	for i := range c.cells {
		b := c.blockAt(i)
		if b == Air {
			continue
		}
		f(origin.Add(LocalPos(i)), b)
	}
}
