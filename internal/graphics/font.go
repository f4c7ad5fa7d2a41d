package graphics

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Glyph locates one character in the atlas. All values are pixels.
type Glyph struct {
	AtlasX, AtlasY int
	Width, Height  int
	BearingX       int
	BearingY       int // distance from the baseline up to the glyph top
	Advance        int
}

// Atlas is a baked single-channel glyph sheet.
type Atlas struct {
	Width, Height int
	LineHeight    int
	Pix           []byte
	Glyphs        map[rune]Glyph
}

const (
	atlasWidth   = 512
	atlasPadding = 1
	firstGlyph   = 32
	lastGlyph    = 126
)

// BuildAtlas rasterises printable ASCII from ttf at the given pixel size. A
// nil ttf uses the Go regular font.
func BuildAtlas(ttf []byte, pixels int) (*Atlas, error) {
	if ttf == nil {
		ttf = goregular.TTF
	}
	if pixels <= 0 {
		return nil, errors.New("font size must be positive")
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(pixels), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	defer face.Close()

	type raster struct {
		r       rune
		dr      image.Rectangle
		mask    image.Image
		maskp   image.Point
		advance fixed.Int26_6
	}
	var glyphs []raster
	for r := rune(firstGlyph); r <= lastGlyph; r++ {
		dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		glyphs = append(glyphs, raster{r, dr, mask, maskp, advance})
	}

	// Shelf packing: lay glyphs left to right, wrap when the row is full.
	placed := make(map[rune]Glyph, len(glyphs))
	x, y, rowH := 0, 0, 0
	for _, g := range glyphs {
		w, h := g.dr.Dx(), g.dr.Dy()
		if x+w > atlasWidth {
			x, y, rowH = 0, y+rowH+atlasPadding, 0
		}
		placed[g.r] = Glyph{
			AtlasX: x, AtlasY: y,
			Width: w, Height: h,
			BearingX: g.dr.Min.X,
			BearingY: -g.dr.Min.Y,
			Advance:  int(math.Round(float64(g.advance) / 64)),
		}
		x += w + atlasPadding
		rowH = max(rowH, h)
	}
	height := nextPow2(y + rowH)

	img := image.NewAlpha(image.Rect(0, 0, atlasWidth, height))
	for _, g := range glyphs {
		p := placed[g.r]
		if p.Width == 0 || p.Height == 0 {
			continue
		}
		dst := image.Rect(p.AtlasX, p.AtlasY, p.AtlasX+p.Width, p.AtlasY+p.Height)
		draw.Draw(img, dst, g.mask, g.maskp, draw.Src)
	}

	m := face.Metrics()
	return &Atlas{
		Width:      atlasWidth,
		Height:     height,
		LineHeight: (m.Ascent + m.Descent).Ceil(),
		Pix:        img.Pix,
		Glyphs:     placed,
	}, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Measure returns the advance width of text. Unknown runes count as spaces.
func (a *Atlas) Measure(text string) int {
	w := 0
	for _, r := range text {
		g, ok := a.Glyphs[r]
		if !ok {
			g = a.Glyphs[' ']
		}
		w += g.Advance
	}
	return w
}

// Quads appends two triangles per glyph of text, as x, y, u, v floats, with
// the baseline starting at (x, y) in pixels (y grows downwards).
func (a *Atlas) Quads(dst []float32, text string, x, y, scale float32) []float32 {
	aw, ah := float32(a.Width), float32(a.Height)
	for _, r := range text {
		g, ok := a.Glyphs[r]
		if !ok {
			x += float32(a.Glyphs[' '].Advance) * scale
			continue
		}
		if g.Width > 0 && g.Height > 0 {
			x0 := x + float32(g.BearingX)*scale
			y0 := y - float32(g.BearingY)*scale
			x1 := x0 + float32(g.Width)*scale
			y1 := y0 + float32(g.Height)*scale
			u0, v0 := float32(g.AtlasX)/aw, float32(g.AtlasY)/ah
			u1, v1 := float32(g.AtlasX+g.Width)/aw, float32(g.AtlasY+g.Height)/ah
			dst = append(dst,
				x0, y1, u0, v1,
				x0, y0, u0, v0,
				x1, y0, u1, v0,
				x0, y1, u0, v1,
				x1, y0, u1, v0,
				x1, y1, u1, v1,
			)
		}
		x += float32(g.Advance) * scale
	}
	return dst
}

// FontRenderer draws text in screen pixels from an Atlas.
type FontRenderer struct {
	atlas      *Atlas
	shader     *Shader
	texture    uint32
	projection mgl32.Mat4
	vao, vbo   uint32
	scratch    []float32
}

// NewFontRenderer uploads the atlas and compiles the text shader.
func NewFontRenderer(atlas *Atlas) (*FontRenderer, error) {
	if atlas == nil || len(atlas.Glyphs) == 0 {
		return nil, errors.New("empty font atlas")
	}
	shader, err := LoadShader("font")
	if err != nil {
		return nil, err
	}
	fr := &FontRenderer{atlas: atlas, shader: shader}

	gl.GenTextures(1, &fr.texture)
	gl.BindTexture(gl.TEXTURE_2D, fr.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(atlas.Width), int32(atlas.Height), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(atlas.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.GenVertexArrays(1, &fr.vao)
	gl.GenBuffers(1, &fr.vbo)
	gl.BindVertexArray(fr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, fr.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, 4*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return fr, nil
}

// Atlas returns the glyph sheet.
func (fr *FontRenderer) Atlas() *Atlas {
	return fr.atlas
}

// SetViewport sets the pixel projection.
func (fr *FontRenderer) SetViewport(width, height float32) {
	fr.projection = mgl32.Ortho(0, width, height, 0, -1, 1)
}

// RenderLines draws lines top-down from (x, y), lineStep pixels apart.
func (fr *FontRenderer) RenderLines(lines []string, x, y, lineStep, scale float32, color mgl32.Vec3) {
	fr.scratch = fr.scratch[:0]
	for _, line := range lines {
		fr.scratch = fr.atlas.Quads(fr.scratch, line, x, y, scale)
		y += lineStep
	}
	if len(fr.scratch) == 0 {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	fr.shader.Use()
	fr.shader.SetVector3("textColor", color.X(), color.Y(), color.Z())
	fr.shader.SetMatrix4("projection", &fr.projection[0])
	fr.shader.SetInt("text", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, fr.texture)

	gl.BindVertexArray(fr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, fr.vbo)
	size := len(fr.scratch) * 4
	gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(fr.scratch), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(fr.scratch)/4))
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
}

// Dispose frees GL objects.
func (fr *FontRenderer) Dispose() {
	if fr.vao != 0 {
		gl.DeleteVertexArrays(1, &fr.vao)
	}
	if fr.vbo != 0 {
		gl.DeleteBuffers(1, &fr.vbo)
	}
	if fr.texture != 0 {
		gl.DeleteTextures(1, &fr.texture)
	}
	fr.shader.Delete()
}
