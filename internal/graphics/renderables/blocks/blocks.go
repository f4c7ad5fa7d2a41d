package blocks

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Eirikalv1/cc-websockets/internal/config"
	"github.com/Eirikalv1/cc-websockets/internal/graphics"
	renderer "github.com/Eirikalv1/cc-websockets/internal/graphics/renderer"
	"github.com/Eirikalv1/cc-websockets/internal/logging"
	"github.com/Eirikalv1/cc-websockets/internal/meshing"
	"github.com/Eirikalv1/cc-websockets/internal/profiling"
)

// gpuBatch is one uploaded mesh batch.
type gpuBatch struct {
	vao, vbo, ebo uint32
	count         int32
}

// Blocks draws the voxel mesh, one draw call per batch.
type Blocks struct {
	shader      *graphics.Shader
	texturePath string
	texture     uint32
	log         *logging.Logger

	batches []gpuBatch
}

// NewBlocks returns the renderable. texturePath may be empty for flat
// per-vertex colours.
func NewBlocks(texturePath string, logger *logging.Logger) *Blocks {
	return &Blocks{texturePath: texturePath, log: logger}
}

func (b *Blocks) Init() error {
	var err error
	b.shader, err = graphics.LoadShader("blocks")
	if err != nil {
		return err
	}
	if b.texturePath != "" {
		b.texture, err = graphics.LoadTexture(b.texturePath)
		if err != nil {
			// The viewer is usable without a texture.
			b.log.Warnf("block texture disabled: %v", err)
			b.texture = 0
		}
	}
	return nil
}

// Upload replaces the GPU copy of the mesh.
func (b *Blocks) Upload(batches []meshing.Batch) {
	defer profiling.Track("renderer.uploadBlocks")()

	b.release()
	b.batches = make([]gpuBatch, 0, len(batches))
	for _, mb := range batches {
		if len(mb.Indices) == 0 {
			continue
		}
		var g gpuBatch
		gl.GenVertexArrays(1, &g.vao)
		gl.BindVertexArray(g.vao)

		gl.GenBuffers(1, &g.vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(mb.Vertices)*meshing.VertexSize, gl.Ptr(mb.Vertices), gl.STATIC_DRAW)

		gl.GenBuffers(1, &g.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mb.Indices)*2, gl.Ptr(mb.Indices), gl.STATIC_DRAW)

		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, meshing.VertexSize, 0)
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, meshing.VertexSize, 12)
		gl.EnableVertexAttribArray(2)
		gl.VertexAttribPointerWithOffset(2, 4, gl.UNSIGNED_BYTE, true, meshing.VertexSize, 20)

		g.count = int32(len(mb.Indices))
		b.batches = append(b.batches, g)
	}
	gl.BindVertexArray(0)
}

// Batches returns the number of uploaded batches.
func (b *Blocks) Batches() int {
	return len(b.batches)
}

func (b *Blocks) Render(ctx renderer.RenderContext) {
	defer profiling.Track("renderer.renderBlocks")()
	if len(b.batches) == 0 {
		return
	}

	b.shader.Use()
	b.shader.SetMatrix4("proj", &ctx.Proj[0])
	b.shader.SetMatrix4("view", &ctx.View[0])
	b.shader.SetBool("useTexture", b.texture != 0)
	if b.texture != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, b.texture)
		b.shader.SetInt("tex", 0)
	}

	n := len(b.batches)
	if span := config.GetBatchSpan(); span > 0 && span < n {
		n = span
	}
	for _, g := range b.batches[:n] {
		gl.BindVertexArray(g.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, g.count, gl.UNSIGNED_SHORT, 0)
	}
	gl.BindVertexArray(0)
}

func (b *Blocks) SetViewport(width, height int) {}

func (b *Blocks) Dispose() {
	b.release()
	if b.texture != 0 {
		gl.DeleteTextures(1, &b.texture)
	}
	b.shader.Delete()
}

func (b *Blocks) release() {
	for i := range b.batches {
		g := &b.batches[i]
		gl.DeleteVertexArrays(1, &g.vao)
		gl.DeleteBuffers(1, &g.vbo)
		gl.DeleteBuffers(1, &g.ebo)
	}
	b.batches = b.batches[:0]
}
