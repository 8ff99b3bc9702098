package world

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

var (
	ErrDuplicateBlock = errors.New("duplicate block name")
	ErrUnknownBlock   = errors.New("unknown block")
)

// BlockID indexes the registry. Zero is always air.
type BlockID uint16

const Air BlockID = 0

type DrawType int

const (
	DTAir DrawType = iota
	DTBlock
)

// DrawKind says how a block is drawn. Textures are indexed by Direction.
type DrawKind struct {
	Type     DrawType
	Textures [6]int
}

func Invisible() DrawKind {
	return DrawKind{Type: DTAir}
}

// Cube is a fully opaque cube with one texture per face.
func Cube(textures [6]int) DrawKind {
	return DrawKind{Type: DTBlock, Textures: textures}
}

// SolidCube uses the same texture on all faces.
func SolidCube(texture int) DrawKind {
	return Cube([6]int{texture, texture, texture, texture, texture, texture})
}

func (d DrawKind) Opaque() bool {
	return d.Type == DTBlock
}

type LightType int

const (
	LTTransparent LightType = iota
	LTOpaque
	LTEmitter
)

// LightKind says how a block interacts with light.
type LightKind struct {
	Type  LightType
	Level uint8
}

func Transparent() LightKind {
	return LightKind{Type: LTTransparent}
}

func Opaque() LightKind {
	return LightKind{Type: LTOpaque}
}

// Emitter is a light source of the given level, clamped to 1..MaxLight.
func Emitter(level uint8) LightKind {
	if level < 1 {
		level = 1
	}
	if level > MaxLight {
		level = MaxLight
	}
	return LightKind{Type: LTEmitter, Level: level}
}

func (l LightKind) Opaque() bool {
	return l.Type == LTOpaque
}

// Emission returns the emitted level, zero for non emitters.
func (l LightKind) Emission() uint8 {
	if l.Type == LTEmitter {
		return l.Level
	}
	return 0
}

func (l LightKind) String() string {
	switch l.Type {
	case LTOpaque:
		return "opaque"
	case LTEmitter:
		return fmt.Sprintf("emit(%d)", l.Level)
	default:
		return "transparent"
	}
}

type BlockType struct {
	ID    BlockID
	Name  string
	Draw  DrawKind
	Light LightKind
}

// Registry is the dense block table. It is filled at startup and only read
// afterwards. Readers load an immutable snapshot of the table without
// locking; Register swaps in a grown copy.
type Registry struct {
	mu     sync.Mutex // serializes Register, guards byName
	types  atomic.Pointer[[]BlockType]
	byName map[string]BlockID
}

// NewRegistry returns a registry holding only air.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]BlockID)}
	types := []BlockType{{ID: Air, Name: "air", Draw: Invisible(), Light: Transparent()}}
	r.types.Store(&types)
	r.byName["air"] = Air
	return r
}

// Register adds a block type and returns its id.
func (r *Registry) Register(name string, draw DrawKind, light LightKind) (BlockID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; ok {
		return 0, errors.Wrapf(ErrDuplicateBlock, "register %q", name)
	}
	old := *r.types.Load()
	if len(old) > int(^BlockID(0)) {
		return 0, errors.Errorf("register %q: registry full", name)
	}
	id := BlockID(len(old))
	types := make([]BlockType, len(old), len(old)+1)
	copy(types, old)
	types = append(types, BlockType{ID: id, Name: name, Draw: draw, Light: light})
	r.types.Store(&types)
	r.byName[name] = id
	return id, nil
}

// MustRegister panics on error; use only for builtin content.
func (r *Registry) MustRegister(name string, draw DrawKind, light LightKind) BlockID {
	id, err := r.Register(name, draw, light)
	if err != nil {
		panic(err)
	}
	return id
}

// Type returns the type of id. Unknown ids map to air. The result is never
// modified by later registrations.
func (r *Registry) Type(id BlockID) *BlockType {
	types := *r.types.Load()
	if int(id) >= len(types) {
		return &types[Air]
	}
	return &types[id]
}

func (r *Registry) Lookup(name string) (BlockID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byName[name]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownBlock, "lookup %q", name)
	}
	return id, nil
}

func (r *Registry) Len() int {
	return len(*r.types.Load())
}

// IsOpaque reports whether id is drawn as an opaque cube.
func (r *Registry) IsOpaque(id BlockID) bool {
	return r.Type(id).Draw.Opaque()
}
