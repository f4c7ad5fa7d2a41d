package wireframe

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Eirikalv1/cc-websockets/internal/config"
	"github.com/Eirikalv1/cc-websockets/internal/graphics"
	renderer "github.com/Eirikalv1/cc-websockets/internal/graphics/renderer"
	"github.com/Eirikalv1/cc-websockets/internal/profiling"
)

// Edges of the unit cube [0,1]^3 as line pairs.
var cubeEdges = []float32{
	0, 0, 0, 1, 0, 0,
	1, 0, 0, 1, 1, 0,
	1, 1, 0, 0, 1, 0,
	0, 1, 0, 0, 0, 0,

	0, 0, 1, 1, 0, 1,
	1, 0, 1, 1, 1, 1,
	1, 1, 1, 0, 1, 1,
	0, 1, 1, 0, 0, 1,

	0, 0, 0, 0, 0, 1,
	1, 0, 0, 1, 0, 1,
	1, 1, 0, 1, 1, 1,
	0, 1, 0, 0, 1, 1,
}

// Wireframe outlines the picked voxel.
type Wireframe struct {
	shader *graphics.Shader
	vao    uint32
	vbo    uint32
}

func NewWireframe() *Wireframe {
	return &Wireframe{}
}

func (w *Wireframe) Init() error {
	var err error
	w.shader, err = graphics.LoadShader("wireframe")
	if err != nil {
		return err
	}

	gl.GenVertexArrays(1, &w.vao)
	gl.BindVertexArray(w.vao)
	gl.GenBuffers(1, &w.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(cubeEdges)*4, gl.Ptr(cubeEdges), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)
	return nil
}

func (w *Wireframe) Render(ctx renderer.RenderContext) {
	if !ctx.Overlay.HasHighlight || !config.GetPickOutline() {
		return
	}
	defer profiling.Track("renderer.renderHighlight")()

	w.shader.Use()
	w.shader.SetMatrix4("proj", &ctx.Proj[0])
	w.shader.SetMatrix4("view", &ctx.View[0])

	// 1% larger than the voxel, same centre.
	corner := ctx.Overlay.Highlight.Min()
	model := mgl32.Translate3D(corner.X()-0.005, corner.Y()-0.005, corner.Z()-0.005).
		Mul4(mgl32.Scale3D(1.01, 1.01, 1.01))
	w.shader.SetMatrix4("model", &model[0])
	w.shader.SetVector3("color", 0, 0, 0)

	gl.BindVertexArray(w.vao)
	gl.LineWidth(1.0)
	gl.DrawArrays(gl.LINES, 0, int32(len(cubeEdges)/3))
	gl.BindVertexArray(0)
}

func (w *Wireframe) SetViewport(width, height int) {}

func (w *Wireframe) Dispose() {
	if w.vao != 0 {
		gl.DeleteVertexArrays(1, &w.vao)
	}
	if w.vbo != 0 {
		gl.DeleteBuffers(1, &w.vbo)
	}
	w.shader.Delete()
}
