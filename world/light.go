package world

import "fmt"

const (
	// MaxLight is the brightest artificial level.
	MaxLight = 15
	// MaxNaturalLight is the sky level. At this level sky light falls
	// straight down without losing strength.
	MaxNaturalLight = 5
)

// Channel selects one of the two light channels.
type Channel int

const (
	Artificial Channel = iota
	Natural
)

var channels = [2]Channel{Artificial, Natural}

func (c Channel) String() string {
	if c == Natural {
		return "natural"
	}
	return "artificial"
}

// Max returns the brightest level of the channel.
func (c Channel) Max() uint8 {
	if c == Natural {
		return MaxNaturalLight
	}
	return MaxLight
}

// ComputeTo returns the level a neighbour reached by travelling in
// direction d receives from a cell of level l.
func (c Channel) ComputeTo(d Direction, l uint8) uint8 {
	if l == 0 {
		return 0
	}
	if c == Natural && l == MaxNaturalLight && d == NegY {
		return l
	}
	return l - 1
}

// Internal returns the light a block produces on its own in this channel.
func (c Channel) Internal(t *BlockType) uint8 {
	if c == Natural {
		return 0
	}
	return t.Light.Emission()
}

// Source tells where a lit cell got its brightness from: either from itself
// or from the neighbour it was reached from, travelling in a direction.
type Source uint8

// SelfLit marks a light source, or a cell refilled in place.
const SelfLit Source = 1 << 3

// Directed is the source of a cell reached by light travelling in d.
func Directed(d Direction) Source {
	return Source(d)
}

// Direction returns the travel direction of a directed source.
func (s Source) Direction() (Direction, bool) {
	if s&SelfLit != 0 {
		return 0, false
	}
	return Direction(s & 7), true
}

func (s Source) String() string {
	if d, ok := s.Direction(); ok {
		return "directed" + d.String()
	}
	return "self"
}

// Light packs a level (bits 0-3), a travel direction (bits 4-6) and the
// self-lit flag (bit 7) into one byte.
type Light uint8

func NewLight(level uint8, src Source) Light {
	return Light(level&0xF | uint8(src)<<4)
}

func (l Light) Level() uint8 {
	return uint8(l) & 0xF
}

func (l Light) Source() Source {
	return Source(uint8(l) >> 4)
}

func (l Light) String() string {
	return fmt.Sprintf("%d/%v", l.Level(), l.Source())
}
