package glrender

import (
	"github.com/faiface/glhf"
	"github.com/faiface/mainthread"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/voxelworld/world"
	"github.com/pkg/errors"
)

// lineMesh is a static vertex buffer drawn as GL_LINES.
type lineMesh struct {
	vao, vbo uint32
	shader   *glhf.Shader
	count    int32
}

func newLineMesh(shader *glhf.Shader, data []float32) *lineMesh {
	m := &lineMesh{
		shader: shader,
		count:  int32(len(data) * 4 / shader.VertexFormat().Size()),
	}
	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	bindAttributes(shader)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return m
}

func (m *lineMesh) draw(mat mgl32.Mat4) {
	if m.vao == 0 {
		return
	}
	m.shader.SetUniformAttr(0, mat)
	gl.BindVertexArray(m.vao)
	gl.DrawArrays(gl.LINES, 0, m.count)
	gl.BindVertexArray(0)
}

func (m *lineMesh) release() {
	if m.vao == 0 {
		return
	}
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	m.vao, m.vbo = 0, 0
}

// LineRender draws the crosshair and the outline of the targeted block.
type LineRender struct {
	win    *glfw.Window
	shader *glhf.Shader
	cross  *lineMesh
	cube   *lineMesh
}

func NewLineRender(win *glfw.Window) (*LineRender, error) {
	r := &LineRender{win: win}
	var err error
	mainthread.Call(func() {
		r.shader, err = glhf.NewShader(lineVertexFormat, lineUniforms, lineVertexSource, lineFragmentSource)
		if err != nil {
			return
		}
		r.cross = newLineMesh(r.shader, []float32{
			-0.5, 0, 0, 0.5, 0, 0,
			0, -0.5, 0, 0, 0.5, 0,
		})
		r.cube = newLineMesh(r.shader, cubeEdges())
	})
	if err != nil {
		return nil, errors.Wrap(err, "line shader")
	}
	return r, nil
}

// cubeEdges are the 12 edges of the unit cube as line pairs.
func cubeEdges() []float32 {
	var data []float32
	for a := 0; a < 8; a++ {
		for axis := 0; axis < 3; axis++ {
			if a&(1<<axis) != 0 {
				continue
			}
			b := a | 1<<axis
			for _, c := range []int{a, b} {
				data = append(data, float32(c&1), float32(c>>1&1), float32(c>>2&1))
			}
		}
	}
	return data
}

// Draw must run on the main thread. target is nil when nothing is aimed at.
func (r *LineRender) Draw(mat mgl32.Mat4, target *world.Vec3) {
	r.shader.Begin()
	defer r.shader.End()

	width, height := r.win.GetFramebufferSize()
	project := mgl32.Ortho2D(0, float32(width), float32(height), 0)
	model := mgl32.Translate3D(float32(width/2), float32(height/2), 0)
	model = model.Mul4(mgl32.Scale3D(float32(height/30), float32(height/30), 0))
	r.cross.draw(project.Mul4(model))

	if target == nil {
		return
	}
	p := target.Vec()
	m := mat.Mul4(mgl32.Translate3D(p.X()-0.03, p.Y()-0.03, p.Z()-0.03))
	m = m.Mul4(mgl32.Scale3D(1.06, 1.06, 1.06))
	r.cube.draw(m)
}

func (r *LineRender) Release() {
	r.cross.release()
	r.cube.release()
}
