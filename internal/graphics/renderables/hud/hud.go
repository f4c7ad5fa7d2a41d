package hud

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Eirikalv1/cc-websockets/internal/graphics"
	renderer "github.com/Eirikalv1/cc-websockets/internal/graphics/renderer"
	"github.com/Eirikalv1/cc-websockets/internal/profiling"
)

const (
	fontPixels = 20
	margin     = 12
)

var (
	textColor    = mgl32.Vec3{0.05, 0.05, 0.05}
	commandColor = mgl32.Vec3{0.1, 0.2, 0.6}
)

// HUD draws the status lines, the FPS counter and the command line.
type HUD struct {
	font          *graphics.FontRenderer
	width, height int

	frames       int
	lastFPSCheck time.Time
	currentFPS   int

	lines []string
}

func NewHUD() *HUD {
	return &HUD{}
}

func (h *HUD) Init() error {
	atlas, err := graphics.BuildAtlas(nil, fontPixels)
	if err != nil {
		return fmt.Errorf("hud font: %w", err)
	}
	h.font, err = graphics.NewFontRenderer(atlas)
	if err != nil {
		return err
	}
	h.lastFPSCheck = time.Now()
	return nil
}

func (h *HUD) Render(ctx renderer.RenderContext) {
	defer profiling.Track("renderer.renderHUD")()

	h.frames++
	if since := time.Since(h.lastFPSCheck); since >= time.Second {
		h.currentFPS = int(float64(h.frames) / since.Seconds())
		h.frames = 0
		h.lastFPSCheck = time.Now()
	}

	lineStep := float32(h.font.Atlas().LineHeight + 2)
	h.lines = append(h.lines[:0], fmt.Sprintf("%d fps", h.currentFPS))
	h.lines = append(h.lines, ctx.Overlay.Lines...)
	if ctx.Overlay.Profiling {
		if top := profiling.TopN(4); top != "" {
			h.lines = append(h.lines, top)
		}
	}
	h.font.RenderLines(h.lines, margin, margin+lineStep, lineStep, 1, textColor)

	prompt := "[Tab] command"
	if ctx.Overlay.Typing {
		prompt = "> " + ctx.Overlay.Command + "_"
	}
	h.font.RenderLines([]string{prompt}, margin, float32(h.height)-margin, lineStep, 1, commandColor)
}

func (h *HUD) SetViewport(width, height int) {
	h.width, h.height = width, height
	if h.font != nil {
		h.font.SetViewport(float32(width), float32(height))
	}
}

func (h *HUD) Dispose() {
	if h.font != nil {
		h.font.Dispose()
	}
}
