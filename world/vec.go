package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ChunkWidth is the side of a cubic chunk in blocks.
	ChunkWidth = 32
	chunkArea  = ChunkWidth * ChunkWidth
	chunkSize  = ChunkWidth * ChunkWidth * ChunkWidth
)

// Vec3 is an integer position. It is used both for blocks and for chunk ids.
type Vec3 struct {
	X, Y, Z int
}

func (v Vec3) Left() Vec3 {
	return Vec3{v.X - 1, v.Y, v.Z}
}
func (v Vec3) Right() Vec3 {
	return Vec3{v.X + 1, v.Y, v.Z}
}
func (v Vec3) Up() Vec3 {
	return Vec3{v.X, v.Y + 1, v.Z}
}
func (v Vec3) Down() Vec3 {
	return Vec3{v.X, v.Y - 1, v.Z}
}
func (v Vec3) Front() Vec3 {
	return Vec3{v.X, v.Y, v.Z + 1}
}
func (v Vec3) Back() Vec3 {
	return Vec3{v.X, v.Y, v.Z - 1}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Mul(n int) Vec3 {
	return Vec3{v.X * n, v.Y * n, v.Z * n}
}

// Neighbor returns the adjacent position in direction d.
func (v Vec3) Neighbor(d Direction) Vec3 {
	return v.Add(d.Offset())
}

// Chunkid returns the id of the chunk containing block v.
func (v Vec3) Chunkid() Vec3 {
	return Vec3{
		floorDiv(v.X, ChunkWidth),
		floorDiv(v.Y, ChunkWidth),
		floorDiv(v.Z, ChunkWidth),
	}
}

// Local returns the position of block v inside its chunk.
func (v Vec3) Local() Vec3 {
	return Vec3{
		floorMod(v.X, ChunkWidth),
		floorMod(v.Y, ChunkWidth),
		floorMod(v.Z, ChunkWidth),
	}
}

// Origin returns the lowest block of chunk id v.
func (v Vec3) Origin() Vec3 {
	return v.Mul(ChunkWidth)
}

func (v Vec3) Vec() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

// NearBlock returns the block containing the point pos. Block (x,y,z)
// occupies [x,x+1)×[y,y+1)×[z,z+1).
func NearBlock(pos mgl32.Vec3) Vec3 {
	return Vec3{
		int(math.Floor(float64(pos.X()))),
		int(math.Floor(float64(pos.Y()))),
		int(math.Floor(float64(pos.Z()))),
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// FloorDiv divides rounding towards negative infinity.
func FloorDiv(a, b int) int {
	return floorDiv(a, b)
}

// FloorMod is the remainder matching FloorDiv, always in [0,b).
func FloorMod(a, b int) int {
	return floorMod(a, b)
}

// localIndex maps a chunk-local position to its cell index.
func localIndex(l Vec3) int {
	return (l.Y*ChunkWidth+l.Z)*ChunkWidth + l.X
}

// LocalPos is the inverse of the cell index layout.
func LocalPos(i int) Vec3 {
	return Vec3{i % ChunkWidth, i / chunkArea, (i / ChunkWidth) % ChunkWidth}
}

// Index returns the cell index of chunk-local position l.
func Index(l Vec3) int {
	return localIndex(l)
}

// Direction is one of the six axis directions.
type Direction uint8

const (
	PosX Direction = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

// Directions lists all six directions in their numeric order.
var Directions = [6]Direction{PosX, NegX, PosY, NegY, PosZ, NegZ}

var directionOffsets = [6]Vec3{
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},
}

var directionNames = [6]string{"+X", "-X", "+Y", "-Y", "+Z", "-Z"}

func (d Direction) Offset() Vec3 {
	return directionOffsets[d]
}

// Invert returns the opposite direction.
func (d Direction) Invert() Direction {
	return d ^ 1
}

// Axis returns 0, 1 or 2 for X, Y or Z.
func (d Direction) Axis() int {
	return int(d) / 2
}

// Positive reports whether d points along a positive axis.
func (d Direction) Positive() bool {
	return d&1 == 0
}

func (d Direction) Normal() mgl32.Vec3 {
	return d.Offset().Vec()
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}
