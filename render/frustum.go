package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/voxelworld/world"
)

// Frustum holds the clip planes of a view-projection matrix.
type Frustum [6]mgl32.Vec4

func NewFrustum(mat mgl32.Mat4) Frustum {
	r1, r2, r3, r4 := mat.Rows()
	return Frustum{
		r4.Add(r1), // left
		r4.Sub(r1), // right
		r4.Add(r2), // bottom
		r4.Sub(r2), // top
		r4.Add(r3), // near
		r4.Sub(r3), // far
	}
}

// ChunkVisible tests the 8 corners of chunk id in clip space. The chunk is
// culled only when all corners lie outside the same plane, which is the
// [-1,1] cube test without dividing by w.
func (f Frustum) ChunkVisible(id Vec3) bool {
	const m = world.ChunkWidth
	o := id.Origin().Vec()
	var points [8]mgl32.Vec4
	for i := range points {
		points[i] = mgl32.Vec4{
			o.X() + float32(i&1*m),
			o.Y() + float32(i>>1&1*m),
			o.Z() + float32(i>>2&1*m),
			1,
		}
	}
	for _, plane := range f {
		var in, out int
		for _, point := range points {
			if plane.Dot(point) < 0 {
				out++
			} else {
				in++
			}
			if in != 0 && out != 0 {
				break
			}
		}
		if in == 0 {
			return false
		}
	}
	return true
}
