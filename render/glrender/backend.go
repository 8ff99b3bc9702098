package glrender

import (
	"image"
	"sync"

	"github.com/faiface/glhf"
	"github.com/faiface/mainthread"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/voxelworld/render"
	"github.com/pkg/errors"
)

// Backend uploads chunk meshes to OpenGL. Apart from NewBackend, every
// method must run on the main thread.
type Backend struct {
	shader  *glhf.Shader
	texture *glhf.Texture

	vertexPool sync.Pool
}

// NewBackend compiles the block shader and uploads the atlas.
func NewBackend(atlas *image.NRGBA) (*Backend, error) {
	b := &Backend{}
	b.vertexPool.New = func() interface{} {
		return make([]float32, 0, 4096*render.VertexSize)
	}
	var err error
	mainthread.Call(func() {
		b.shader, err = glhf.NewShader(blockVertexFormat, blockUniforms, blockVertexSource, blockFragmentSource)
		if err != nil {
			return
		}
		r := atlas.Bounds()
		b.texture = glhf.NewTexture(r.Dx(), r.Dy(), false, atlas.Pix)
	})
	if err != nil {
		return nil, errors.Wrap(err, "block shader")
	}
	return b, nil
}

// Begin binds the shader and the atlas for a frame of chunk draws.
func (b *Backend) Begin(mat mgl32.Mat4, camera mgl32.Vec3, fogdis float32) {
	b.shader.Begin()
	b.texture.Begin()
	b.shader.SetUniformAttr(uMatrix, mat)
	b.shader.SetUniformAttr(uCamera, camera)
	b.shader.SetUniformAttr(uFogDis, fogdis)
}

func (b *Backend) End() {
	b.texture.End()
	b.shader.End()
}

func (b *Backend) NewMesh(m *render.MeshData) (render.GPUMesh, error) {
	mesh := &Mesh{faces: m.Faces()}
	if mesh.faces == 0 {
		return mesh, nil
	}
	data := b.vertexPool.Get().([]float32)
	data = m.Vertices(data[:0])
	defer b.vertexPool.Put(data[:0])

	gl.GenVertexArrays(1, &mesh.vao)
	gl.GenBuffers(1, &mesh.vbo)
	gl.GenBuffers(1, &mesh.ebo)
	gl.BindVertexArray(mesh.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, mesh.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mesh.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)
	bindAttributes(b.shader)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		mesh.Release()
		return nil, errors.Errorf("upload mesh %v: gl error 0x%x", m.ID, code)
	}
	mesh.count = int32(len(m.Indices))
	return mesh, nil
}

func bindAttributes(shader *glhf.Shader) {
	offset := 0
	stride := int32(shader.VertexFormat().Size())
	for _, attr := range shader.VertexFormat() {
		loc := gl.GetAttribLocation(shader.ID(), gl.Str(attr.Name+"\x00"))
		var size int32
		switch attr.Type {
		case glhf.Float:
			size = 1
		case glhf.Vec2:
			size = 2
		case glhf.Vec3:
			size = 3
		case glhf.Vec4:
			size = 4
		}
		gl.VertexAttribPointer(uint32(loc), size, gl.FLOAT, false, stride, gl.PtrOffset(offset))
		gl.EnableVertexAttribArray(uint32(loc))
		offset += attr.Type.Size()
	}
}

// Mesh is one chunk mesh in GPU memory.
type Mesh struct {
	vao, vbo, ebo uint32
	faces         int
	count         int32
}

func (m *Mesh) Faces() int {
	return m.faces
}

func (m *Mesh) Draw() {
	if m.vao != 0 {
		gl.BindVertexArray(m.vao)
		gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
		gl.BindVertexArray(0)
	}
}

func (m *Mesh) Release() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
		m.vao, m.vbo, m.ebo = 0, 0, 0
	}
}
