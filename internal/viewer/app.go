package viewer

import (
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Eirikalv1/cc-websockets/internal/config"
	"github.com/Eirikalv1/cc-websockets/internal/graphics"
	renderer "github.com/Eirikalv1/cc-websockets/internal/graphics/renderer"
	"github.com/Eirikalv1/cc-websockets/internal/graphics/renderables/blocks"
	"github.com/Eirikalv1/cc-websockets/internal/graphics/renderables/crosshair"
	"github.com/Eirikalv1/cc-websockets/internal/graphics/renderables/hud"
	"github.com/Eirikalv1/cc-websockets/internal/graphics/renderables/wireframe"
	"github.com/Eirikalv1/cc-websockets/internal/input"
	"github.com/Eirikalv1/cc-websockets/internal/link"
	"github.com/Eirikalv1/cc-websockets/internal/logging"
	"github.com/Eirikalv1/cc-websockets/internal/profiling"
	"github.com/Eirikalv1/cc-websockets/internal/world"
)

// slowFrame is the processing time above which a frame is logged.
const slowFrame = 16 * time.Millisecond

// Link is the scanner side of the app.
type Link interface {
	Sender
	Inbox() <-chan link.Event
}

// App owns the window and runs the frame loop.
type App struct {
	window   *glfw.Window
	input    *input.Manager
	camera   *graphics.Camera
	renderer *renderer.Renderer
	blocks   *blocks.Blocks
	session  *Session
	link     Link
	log      *logging.Logger

	profiling  bool
	fpsLimiter *FPSLimiter
	lastTime   time.Time
}

// NewApp sets up the renderables for window. The camera starts outside the
// scan volume looking at its centre.
func NewApp(cfg *config.Config, window *glfw.Window, l Link, session *Session, logger *logging.Logger) (*App, error) {
	width, height := window.GetFramebufferSize()
	camera := graphics.NewCamera(width, height, startPosition(session.grid.Volume()))
	camera.LookAt(session.grid.Volume().Center().Center())

	b := blocks.NewBlocks(cfg.Window.Texture, logger.With("[blocks] "))
	r, err := renderer.NewRenderer(camera, width, height,
		b,
		wireframe.NewWireframe(),
		crosshair.NewCrosshair(),
		hud.NewHUD(),
	)
	if err != nil {
		return nil, err
	}

	im := input.NewManager()
	im.Attach(window)
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		r.SetViewport(w, h)
	})

	config.SetFPSLimit(cfg.Window.FPSLimit)

	return &App{
		window:     window,
		input:      im,
		camera:     camera,
		renderer:   r,
		blocks:     b,
		session:    session,
		link:       l,
		log:        logger,
		fpsLimiter: NewFPSLimiter(),
		lastTime:   time.Now(),
	}, nil
}

func startPosition(v world.Volume) mgl32.Vec3 {
	c := v.Center().Center()
	w := float32(v.Width)
	return c.Add(mgl32.Vec3{0, w * 0.75, w * 1.5})
}

// Run blocks until the window is closed.
func (a *App) Run() {
	for !a.window.ShouldClose() {
		a.tick()
	}
}

// Close releases GPU resources. The window is left to the caller.
func (a *App) Close() {
	a.renderer.Dispose()
}

func (a *App) tick() {
	profiling.ResetFrame()
	start := time.Now()
	dt := start.Sub(a.lastTime).Seconds()
	a.lastTime = start

	glfw.PollEvents()

	a.drainInbox()
	if a.session.Remesh() {
		a.blocks.Upload(a.session.Batches())
	}
	a.handleInput(dt)

	a.renderer.Render(dt, a.overlay())
	a.window.SwapBuffers()

	if d := time.Since(start); d > slowFrame {
		a.log.Debugf("slow frame: %v. top tasks: %s", d, profiling.TopN(5))
	}

	a.input.PostUpdate()
	a.fpsLimiter.Wait(a.window.GetAttrib(glfw.Iconified) == glfw.True)
}

// drainInbox applies every event queued since the last frame, so a burst of
// scans costs one remesh.
func (a *App) drainInbox() {
	defer profiling.Track("viewer.drainInbox")()
	for {
		select {
		case ev := <-a.link.Inbox():
			a.session.Handle(ev)
		default:
			return
		}
	}
}

func (a *App) handleInput(dt float64) {
	im := a.input

	if im.JustPressed(input.ActionToggleCommand) {
		a.setTyping(!im.Typing())
	}
	if im.JustPressed(input.ActionQuit) {
		if im.Typing() {
			a.setTyping(false)
		} else {
			a.window.SetShouldClose(true)
		}
	}

	if im.Typing() {
		if im.JustPressed(input.ActionErase) {
			im.Erase()
		}
		if im.JustPressed(input.ActionSubmit) {
			if err := a.session.Submit(im.TakeText(), a.link); err != nil {
				a.log.Warnf("command not sent: %v", err)
			}
		}
		return
	}

	a.camera.Look(im.CursorDelta())

	var forward, right, up float32
	if im.IsActive(input.ActionMoveForward) {
		forward++
	}
	if im.IsActive(input.ActionMoveBackward) {
		forward--
	}
	if im.IsActive(input.ActionMoveRight) {
		right++
	}
	if im.IsActive(input.ActionMoveLeft) {
		right--
	}
	if im.IsActive(input.ActionMoveUp) {
		up++
	}
	if im.IsActive(input.ActionMoveDown) {
		up--
	}
	a.camera.Move(forward, right, up, dt)

	if im.JustPressed(input.ActionPick) {
		a.session.Pick(a.camera.Position, a.camera.Front())
	}
	if im.JustPressed(input.ActionToggleOutline) {
		config.TogglePickOutline()
	}
	if im.JustPressed(input.ActionToggleProfiling) {
		a.profiling = !a.profiling
	}
	if dy := im.TakeScroll(); dy != 0 {
		total := a.blocks.Batches()
		if span := config.AdjustBatchSpan(int(dy), total); span > 0 {
			a.log.Debugf("drawing %d of %d batches", span, total)
		} else {
			a.log.Debugf("drawing all %d batches", total)
		}
	}
}

func (a *App) setTyping(on bool) {
	a.input.SetTyping(on)
	if on {
		a.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	} else {
		a.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	}
}

func (a *App) overlay() renderer.Overlay {
	picked, ok := a.session.Picked()
	return renderer.Overlay{
		Highlight:    picked.Coord,
		HasHighlight: ok,
		Lines:        a.session.Lines(),
		Command:      a.input.Text(),
		Typing:       a.input.Typing(),
		Profiling:    a.profiling,
	}
}
