package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Eirikalv1/cc-websockets/internal/graphics"
	"github.com/Eirikalv1/cc-websockets/internal/world"
)

// Overlay is the per-frame state drawn on top of the scene.
type Overlay struct {
	Highlight    world.Coord
	HasHighlight bool

	// Lines are status lines drawn top-left, in order.
	Lines []string
	// Command is the command line text; Typing shows it with a caret.
	Command string
	Typing  bool
	// Profiling adds the frame's most expensive tasks to the HUD.
	Profiling bool
}

// RenderContext is shared by every renderable for one frame.
type RenderContext struct {
	Camera  *graphics.Camera
	DT      float64
	View    mgl32.Mat4
	Proj    mgl32.Mat4
	Overlay Overlay
}

// Renderable is one layer of the frame.
type Renderable interface {
	Init() error
	Render(ctx RenderContext)
	Dispose()
	SetViewport(width, height int)
}
