// Package renderer draws viewer frames with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/waks-viewer/internal/engine/scene"
	"github.com/Faultbox/waks-viewer/internal/engine/shader"
	"github.com/Faultbox/waks-viewer/internal/engine/ui2d"
	"github.com/Faultbox/waks-viewer/internal/logger"
	"github.com/Faultbox/waks-viewer/internal/viewer"
)

// popupTextScale scales the 7x13 bitmap font for the hotspot label.
const popupTextScale = 2

// Config holds renderer configuration.
type Config struct {
	// Drawable size in pixels; may differ from the window size on HiDPI displays.
	Width  int
	Height int
}

// gpuMesh is a geometry uploaded to the GPU.
type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	log    *zap.Logger

	program *shader.Program
	meshes  map[*scene.Geometry]*gpuMesh

	ui *ui2d.Renderer
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
		meshes: make(map[*scene.Geometry]*gpuMesh),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	var err error
	r.program, err = shader.Compile(meshVertexSrc, meshFragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh shader: %w", err)
	}

	r.ui, err = ui2d.New(cfg.Width, cfg.Height)
	if err != nil {
		r.program.Delete()
		return nil, fmt.Errorf("failed to create overlay: %w", err)
	}

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// Resize updates the drawable size.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Draw renders one viewer frame. Popup coordinates are in surface points;
// the overlay maps them onto the drawable using the frame size.
func (r *Renderer) Draw(f viewer.Frame) {
	gl.ClearColor(f.Background[0], f.Background[1], f.Background[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.program.Use()
	r.program.SetMat4("uView", f.View)
	r.program.SetMat4("uProjection", f.Projection)
	r.program.SetVec3("uAmbient", f.Ambient.Color.Mul(f.Ambient.Intensity))
	r.program.SetVec3("uSunColor", f.Directional.Color.Mul(f.Directional.Intensity))
	r.program.SetVec3("uSunDir", f.Directional.Position.Normalize())

	for _, d := range f.Draws {
		m, err := r.mesh(d.Geometry)
		if err != nil {
			r.log.Warn("skipping geometry", zap.Error(err))
			continue
		}
		r.program.SetMat4("uModel", d.World)
		r.program.SetMat3("uNormalMatrix", d.World.Mat3().Inv().Transpose())
		color, unlit := mgl32.Vec4{1, 1, 1, 1}, false
		if d.Material != nil {
			color, unlit = d.Material.Color, d.Material.Unlit
		}
		r.program.SetVec4("uColor", color)
		r.program.SetBool("uUnlit", unlit)

		gl.BindVertexArray(m.vao)
		gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)

	if f.Popup != nil && f.Popup.Visible {
		r.drawPopup(f)
	}
}

func (r *Renderer) drawPopup(f viewer.Frame) {
	r.ui.Resize(f.Width, f.Height)
	r.ui.Begin()
	r.ui.DrawLabel(f.Popup.X, f.Popup.Y, f.Popup.Text, popupTextScale)
	r.ui.End()
}

// mesh returns the GPU copy of g, uploading it on first use.
func (r *Renderer) mesh(g *scene.Geometry) (*gpuMesh, error) {
	if m, ok := r.meshes[g]; ok {
		return m, nil
	}
	if len(g.Indices) == 0 {
		return nil, fmt.Errorf("empty geometry")
	}

	data := interleave(g)
	m := &gpuMesh{count: int32(len(g.Indices))}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, unsafe.Pointer(&g.Indices[0]), gl.STATIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexStride*4, 0)
	gl.EnableVertexAttribArray(0)
	// Normal (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, vertexStride*4, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	r.meshes[g] = m
	r.log.Debug("uploaded geometry", zap.Int("vertices", len(g.Positions)), zap.Int("triangles", g.TriangleCount()))
	return m, nil
}

// vertexStride is floats per vertex: position(3) + normal(3).
const vertexStride = 6

// interleave packs positions and normals into one vertex buffer.
func interleave(g *scene.Geometry) []float32 {
	out := make([]float32, 0, len(g.Positions)*vertexStride)
	for i, p := range g.Positions {
		var n mgl32.Vec3
		if i < len(g.Normals) {
			n = g.Normals[i]
		}
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2])
	}
	return out
}

// ReadPixels reads the back buffer as bottom-up RGBA rows. Call it after
// Draw and before the buffer swap.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadBuffer(gl.BACK)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}

// ReleaseGeometry frees the GPU buffers of g. Geometries that were never
// drawn are ignored.
func (r *Renderer) ReleaseGeometry(g *scene.Geometry) error {
	m, ok := r.meshes[g]
	if !ok {
		return nil
	}
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	delete(r.meshes, g)
	return nil
}

// ReleaseMaterial is a no-op: materials are plain uniforms.
func (r *Renderer) ReleaseMaterial(*scene.Material) error {
	return nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for g := range r.meshes {
		_ = r.ReleaseGeometry(g)
	}
	if r.ui != nil {
		r.ui.Close()
	}
	if r.program != nil {
		r.program.Delete()
	}
}

const meshVertexSrc = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform mat3 uNormalMatrix;

out vec3 vNormal;

void main() {
	vNormal = uNormalMatrix * aNormal;
	gl_Position = uProjection * uView * uModel * vec4(aPos, 1.0);
}
`

const meshFragmentSrc = `
#version 410 core

in vec3 vNormal;

uniform vec4 uColor;
uniform vec3 uAmbient;
uniform vec3 uSunColor;
uniform vec3 uSunDir;
uniform bool uUnlit;

out vec4 FragColor;

void main() {
	if (uUnlit) {
		FragColor = uColor;
		return;
	}
	vec3 n = normalize(vNormal);
	float diffuse = max(dot(n, normalize(uSunDir)), 0.0);
	vec3 light = uAmbient + uSunColor * diffuse;
	FragColor = vec4(uColor.rgb * light, uColor.a);
}
`
