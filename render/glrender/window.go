// Package glrender is the OpenGL 3.3 backend of the render package. Window
// and GL calls must run on the main thread, see mainthread.
package glrender

import (
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// InitGL opens a window with a current 3.3 core context.
func InitGL(w, h int, title string) (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw init")
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, gl.TRUE)

	win, err := glfw.CreateWindow(w, h, title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create window")
	}
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return nil, errors.Wrap(err, "gl init")
	}
	glfw.SwapInterval(1) // enable vsync
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	return win, nil
}

// Clear paints the sky and clears depth.
func Clear() {
	gl.ClearColor(0.57, 0.71, 0.77, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// SetWireframe switches polygon rasterization between lines and fill.
func SetWireframe(on bool) {
	if on {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		return
	}
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
}

func Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}
