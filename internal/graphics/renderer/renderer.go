package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Eirikalv1/cc-websockets/internal/graphics"
	"github.com/Eirikalv1/cc-websockets/internal/profiling"
)

// Renderer draws its renderables in order each frame.
type Renderer struct {
	renderables []Renderable
	camera      *graphics.Camera
}

// GL entry points used outside Render, swapped out by tests that run
// without a context.
var (
	setupGL = func() {
		gl.Enable(gl.DEPTH_TEST)
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
		gl.FrontFace(gl.CCW)
	}
	glViewport = func(width, height int32) {
		gl.Viewport(0, 0, width, height)
	}
)

// NewRenderer sets global GL state, initialises every renderable and sizes
// them all to the framebuffer.
func NewRenderer(camera *graphics.Camera, width, height int, rs ...Renderable) (*Renderer, error) {
	setupGL()

	for i, r := range rs {
		if err := r.Init(); err != nil {
			for j := i - 1; j >= 0; j-- {
				rs[j].Dispose()
			}
			return nil, err
		}
	}
	r := &Renderer{renderables: rs, camera: camera}
	r.SetViewport(width, height)
	return r, nil
}

// Render clears the frame and draws every renderable.
func (r *Renderer) Render(dt float64, overlay Overlay) {
	defer profiling.Track("renderer.Render")()

	gl.ClearColor(0.75, 0.75, 0.75, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	ctx := RenderContext{
		Camera:  r.camera,
		DT:      dt,
		View:    r.camera.ViewMatrix(),
		Proj:    r.camera.ProjectionMatrix(),
		Overlay: overlay,
	}
	for _, renderable := range r.renderables {
		renderable.Render(ctx)
	}
}

// SetViewport resizes the GL viewport, the camera and every renderable.
func (r *Renderer) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	glViewport(int32(width), int32(height))
	r.camera.SetViewport(width, height)
	for _, renderable := range r.renderables {
		renderable.SetViewport(width, height)
	}
}

// Dispose frees renderables in reverse order.
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
}

// Camera returns the camera the renderer draws from.
func (r *Renderer) Camera() *graphics.Camera {
	return r.camera
}
