package main

import (
	"fmt"
	"log"
	"time"

	"github.com/faiface/mainthread"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/voxelworld/console"
	"github.com/humboldt-xie/voxelworld/render"
	"github.com/humboldt-xie/voxelworld/render/glrender"
	"github.com/humboldt-xie/voxelworld/world"
)

const (
	reachDistance = 8
	// uploads applied per frame
	uploadBudget = 32
)

type Game struct {
	win *glfw.Window

	world  *world.World
	flags  *console.Flags
	player *Player
	lx, ly float64

	mesher     *render.Mesher
	pool       *render.Pool
	backend    *glrender.Backend
	lineRender *glrender.LineRender

	// owned by the tick goroutine
	guard  *world.LoadGuard
	center world.Vec3

	items   []world.BlockID
	itemidx int
	fps     FPS

	exclusiveMouse bool
	closed         bool
}

func NewGame(w, h int, wd *world.World, flags *console.Flags, atlas *render.Atlas, spawn mgl32.Vec3) (*Game, error) {
	var err error
	game := &Game{
		world:  wd,
		flags:  flags,
		player: NewPlayer(spawn),
	}
	for i := 1; i < wd.Registry().Len(); i++ {
		if id := world.BlockID(i); wd.Registry().IsOpaque(id) {
			game.items = append(game.items, id)
		}
	}

	mainthread.Call(func() {
		var win *glfw.Window
		win, err = glrender.InitGL(w, h, "voxelworld")
		if err != nil {
			return
		}
		win.SetMouseButtonCallback(game.onMouseButtonCallback)
		win.SetCursorPosCallback(game.onCursorPosCallback)
		win.SetFramebufferSizeCallback(game.onFrameBufferSizeCallback)
		win.SetKeyCallback(game.onKeyCallback)
		game.win = win
	})
	if err != nil {
		return nil, err
	}
	game.backend, err = glrender.NewBackend(atlas.Image())
	if err != nil {
		return nil, err
	}
	game.lineRender, err = glrender.NewLineRender(game.win)
	if err != nil {
		return nil, err
	}
	game.pool = render.NewPool(game.backend)
	game.mesher = render.NewMesher(wd.Chunks(), 256)
	game.mesher.Start()

	flags.OnChange(console.Freeze, wd.SetFrozen)
	game.follow(wd)
	wd.Schedule(game.tick)
	return game, nil
}

// follow re-centres the load cube and the render area when the player
// changes chunk.
func (g *Game) follow(w *world.World) {
	cid := g.player.Block().Chunkid()
	if g.guard != nil && cid == g.center {
		return
	}
	r := w.Config().RenderDistance
	guard := w.ChunkLoader().LoadCube(cid, r+1)
	if g.guard != nil {
		g.guard.Release()
	}
	g.guard, g.center = guard, cid
	g.mesher.SetArea(render.RenderArea{Center: cid, Radius: r})
}

// tick runs after every world tick and schedules itself again.
func (g *Game) tick(w *world.World) {
	g.player.Step(float32(w.Config().TickInterval.Seconds()))
	g.follow(w)
	if g.flags.Get(console.Stats) && w.Ticks()%20 == 0 {
		s := w.Stats()
		log.Printf("stats: loaded %d enabled %d pending %d ready %d lighting %d ticks %d",
			s.Loaded, s.Enabled, s.Pending, s.Ready, s.Lighting, s.Ticks)
	}
	w.Schedule(g.tick)
}

func (g *Game) Close() {
	g.mesher.Close()
	mainthread.Call(func() {
		g.pool.Release()
		g.lineRender.Release()
	})
	if g.guard != nil {
		g.guard.Release()
	}
}

func (g *Game) setExclusiveMouse(exclusive bool) {
	if exclusive {
		g.win.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		g.win.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
	g.exclusiveMouse = exclusive
}

func (g *Game) target() (world.Vec3, world.Direction, bool) {
	p := g.player.State()
	v := g.world.Read()
	defer v.Close()
	return v.RayTrace(p.Vec3, p.Front(), reachDistance)
}

func (g *Game) PutBlock() {
	hit, face, ok := g.target()
	if !ok || len(g.items) == 0 {
		return
	}
	pos := hit.Neighbor(face)
	if pos == g.player.Block() {
		return
	}
	v := g.world.Read()
	defer v.Close()
	if err := v.SetBlock(pos, g.items[g.itemidx]); err != nil {
		log.Printf("put block %v: %v", pos, err)
	}
}

func (g *Game) BreakBlock() {
	hit, _, ok := g.target()
	if !ok {
		return
	}
	v := g.world.Read()
	defer v.Close()
	if err := v.SetBlock(hit, world.Air); err != nil {
		log.Printf("break block %v: %v", hit, err)
	}
}

func (g *Game) onMouseButtonCallback(win *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if !g.exclusiveMouse {
		g.setExclusiveMouse(true)
		return
	}
	if button == glfw.MouseButton2 && action == glfw.Press {
		g.PutBlock()
	}
	if button == glfw.MouseButton1 && action == glfw.Press {
		g.BreakBlock()
	}
}

func (g *Game) onFrameBufferSizeCallback(window *glfw.Window, width, height int) {
	glrender.Viewport(width, height)
}

func (g *Game) onCursorPosCallback(win *glfw.Window, xpos float64, ypos float64) {
	if !g.exclusiveMouse {
		return
	}
	if g.lx == 0 && g.ly == 0 {
		g.lx, g.ly = xpos, ypos
		return
	}
	dx, dy := xpos-g.lx, g.ly-ypos
	g.lx, g.ly = xpos, ypos
	g.player.ChangeAngle(float32(dx), float32(dy))
}

func (g *Game) onKeyCallback(win *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press || len(g.items) == 0 {
		return
	}
	switch key {
	case glfw.KeyE:
		g.itemidx = (1 + g.itemidx) % len(g.items)
	case glfw.KeyR:
		g.itemidx--
		if g.itemidx < 0 {
			g.itemidx = len(g.items) - 1
		}
	case glfw.KeyF:
		g.flags.Trigger(console.Wireframe)
	}
}

func (g *Game) handleKeyInput() {
	if g.win.GetKey(glfw.KeyEscape) == glfw.Press {
		g.setExclusiveMouse(false)
	}
	keys := [...]struct {
		key glfw.Key
		dir Movement
	}{
		{glfw.KeyW, MoveForward},
		{glfw.KeyS, MoveBackward},
		{glfw.KeyA, MoveLeft},
		{glfw.KeyD, MoveRight},
		{glfw.KeySpace, MoveUp},
		{glfw.KeyLeftShift, MoveDown},
	}
	for _, k := range keys {
		g.player.SetMove(k.dir, g.win.GetKey(k.key) == glfw.Press)
	}
}

func (g *Game) ShouldClose() bool {
	return g.closed
}

func (g *Game) renderStat() {
	g.fps.Update()
	p := g.player.State()
	cid := world.NearBlock(p.Vec3).Chunkid()
	stat := g.pool.Stat()
	s := g.world.Stats()
	title := fmt.Sprintf("[%.2f %.2f %.2f] %v [%d/%d %d] loaded %d %d",
		p.X(), p.Y(), p.Z(), cid, stat.RendingChunks, stat.CacheChunks, stat.Faces, s.Loaded, g.fps.Fps())
	g.win.SetTitle(title)
}

func (g *Game) matrix(p Position) mgl32.Mat4 {
	width, height := g.win.GetSize()
	if height == 0 {
		height = 1
	}
	far := float32((g.world.Config().RenderDistance + 1) * world.ChunkWidth)
	mat := mgl32.Perspective(radian(45), float32(width)/float32(height), 0.01, far)
	return mat.Mul4(p.Matrix())
}

func (g *Game) Update() {
	var target *world.Vec3
	if hit, _, ok := g.target(); ok {
		target = &hit
	}
	p := g.player.Lerp(g.world.SubTick())
	mainthread.Call(func() {
		g.handleKeyInput()
		g.pool.Drain(g.mesher.Uploads(), uploadBudget)

		glrender.Clear()
		glrender.SetWireframe(g.flags.Get(console.Wireframe))
		mat := g.matrix(p)
		fogdis := float32(g.world.Config().RenderDistance * world.ChunkWidth)
		g.backend.Begin(mat, p.Vec3, fogdis)
		g.pool.Draw(mat)
		g.backend.End()
		glrender.SetWireframe(false)
		g.lineRender.Draw(mat, target)
		g.renderStat()

		g.win.SwapBuffers()
		glfw.PollEvents()
		g.closed = g.win.ShouldClose()
	})
}

type FPS struct {
	lastUpdate time.Time
	cnt        int
	fps        int
}

func (f *FPS) Update() {
	f.cnt++
	now := time.Now()
	p := now.Sub(f.lastUpdate)
	if p >= time.Second {
		f.fps = int(float64(f.cnt) / p.Seconds())
		f.cnt = 0
		f.lastUpdate = now
	}
}

func (f *FPS) Fps() int {
	return f.fps
}
