package main

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/voxelworld/world"
)

type Movement int

const (
	MoveForward Movement = iota
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
)

type Position struct {
	mgl32.Vec3
	Rx, Ry float32
}

func (p Position) Front() mgl32.Vec3 {
	front := mgl32.Vec3{
		cos(radian(p.Ry)) * cos(radian(p.Rx)),
		sin(radian(p.Ry)),
		cos(radian(p.Ry)) * sin(radian(p.Rx)),
	}
	return front.Normalize()
}

func (p Position) Right() mgl32.Vec3 {
	return p.Front().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

func (p Position) Up() mgl32.Vec3 {
	return p.Right().Cross(p.Front()).Normalize()
}

func (p Position) Matrix() mgl32.Mat4 {
	return mgl32.LookAtV(p.Vec3, p.Add(p.Front()), p.Up())
}

// Player is a flying camera. Input is collected between ticks and applied
// by Step; rendering interpolates between the last two steps.
type Player struct {
	mu    sync.Mutex
	cur   Position
	pre   Position
	input [6]bool
	Sens  float32
	Speed float32 // blocks per second
}

func NewPlayer(pos mgl32.Vec3) *Player {
	p := &Player{
		Sens:  0.14,
		Speed: 10,
	}
	p.cur = Position{Vec3: pos, Rx: -90, Ry: 0}
	p.pre = p.cur
	return p
}

// SetMove records whether dir is held.
func (c *Player) SetMove(dir Movement, held bool) {
	c.mu.Lock()
	c.input[dir] = held
	c.mu.Unlock()
}

// Step advances the position by dt seconds of held input.
func (c *Player) Step(dt float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pre = c.cur
	var v mgl32.Vec3
	front, right := c.cur.Front(), c.cur.Right()
	dirs := [6]mgl32.Vec3{front, front.Mul(-1), right.Mul(-1), right, {0, 1, 0}, {0, -1, 0}}
	for i, held := range c.input {
		if held {
			v = v.Add(dirs[i])
		}
	}
	if v.Len() == 0 {
		return
	}
	c.cur.Vec3 = c.cur.Add(v.Normalize().Mul(c.Speed * dt))
}

func (c *Player) ChangeAngle(dx, dy float32) {
	if mgl32.Abs(dx) > 200 || mgl32.Abs(dy) > 200 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur.Rx += dx * c.Sens
	c.cur.Ry += dy * c.Sens
	if c.cur.Ry > 89 {
		c.cur.Ry = 89
	}
	if c.cur.Ry < -89 {
		c.cur.Ry = -89
	}
	// looking around is not interpolated
	c.pre.Rx, c.pre.Ry = c.cur.Rx, c.cur.Ry
}

func (c *Player) State() Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

// Lerp returns the position t of the way from the previous step to the
// current one.
func (c *Player) Lerp(t float32) Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.cur
	p.Vec3 = c.pre.Vec3.Add(c.cur.Sub(c.pre.Vec3).Mul(t))
	return p
}

// Block returns the block the player is in.
func (c *Player) Block() world.Vec3 {
	return world.NearBlock(c.State().Vec3)
}

func radian(angle float32) float32 {
	return mgl32.DegToRad(angle)
}

func cos(x float32) float32 {
	return float32(math.Cos(float64(x)))
}

func sin(x float32) float32 {
	return float32(math.Sin(float64(x)))
}
