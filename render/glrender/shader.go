package glrender

import (
	"github.com/faiface/glhf"
)

// Uniform slots of the block shader, in blockUniforms order.
const (
	uMatrix = iota
	uCamera
	uFogDis
)

var blockVertexFormat = glhf.AttrFormat{
	{Name: "pos", Type: glhf.Vec3},
	{Name: "uv", Type: glhf.Vec2},
	{Name: "normal", Type: glhf.Vec3},
	{Name: "tile", Type: glhf.Float},
	{Name: "light", Type: glhf.Float},
}

var blockUniforms = glhf.AttrFormat{
	{Name: "matrix", Type: glhf.Mat4},
	{Name: "camera", Type: glhf.Vec3},
	{Name: "fogdis", Type: glhf.Float},
}

const blockVertexSource = `
#version 330 core

in vec3 pos;
in vec2 uv;
in vec3 normal;
in float tile;
in float light;

uniform mat4 matrix;

out vec2 Tex;
out float Shade;
out vec3 Pos;

const float tiles = 16.0;

void main() {
	gl_Position = matrix * vec4(pos, 1.0);
	float row = floor(tile / tiles);
	float col = tile - row * tiles;
	Tex = (vec2(col, row) + uv) / tiles;
	float side = 0.8 + 0.2 * abs(normal.y);
	Shade = side * (0.2 + 0.8 * light);
	Pos = pos;
}
`

const blockFragmentSource = `
#version 330 core

in vec2 Tex;
in float Shade;
in vec3 Pos;

uniform sampler2D tex;
uniform vec3 camera;
uniform float fogdis;

out vec4 color;

const vec3 skyColor = vec3(0.57, 0.71, 0.77);

void main() {
	vec4 c = texture(tex, Tex);
	float fog = clamp(distance(camera, Pos) / fogdis, 0.0, 1.0);
	color = vec4(mix(c.rgb * Shade, skyColor, fog * fog), 1.0);
}
`

var lineVertexFormat = glhf.AttrFormat{
	{Name: "pos", Type: glhf.Vec3},
}

var lineUniforms = glhf.AttrFormat{
	{Name: "matrix", Type: glhf.Mat4},
}

const lineVertexSource = `
#version 330 core

in vec3 pos;

uniform mat4 matrix;

void main() {
	gl_Position = matrix * vec4(pos, 1.0);
}
`

const lineFragmentSource = `
#version 330 core

out vec4 color;

void main() {
	color = vec4(0.1, 0.1, 0.1, 1.0);
}
`
