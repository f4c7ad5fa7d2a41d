package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Eirikalv1/cc-websockets/internal/profiling"
	"github.com/Eirikalv1/cc-websockets/internal/world"
)

// Vertex is the interleaved layout uploaded to the GPU: position, UV and
// RGBA colour, 24 bytes with no padding.
type Vertex struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
	Color    [4]uint8
}

// VertexSize is the byte size of one Vertex.
const VertexSize = 24

// QuadIndices is the winding of the two triangles of every face.
var QuadIndices = [6]uint16{0, 1, 2, 0, 2, 3}

const (
	verticesPerVoxel = 6 * 4
	indicesPerVoxel  = 6 * len(QuadIndices)
	maxIndexable     = 1 << 16
)

// Batch is one draw call worth of geometry. Indices are relative to Vertices.
type Batch struct {
	Vertices []Vertex
	Indices  []uint16
}

// Limits caps the size of a single batch.
type Limits struct {
	MaxVertices int
	MaxIndices  int
}

// DefaultLimits are the per-draw ceilings the viewer was built around.
func DefaultLimits() Limits {
	return Limits{MaxVertices: 9800, MaxIndices: 4800}
}

// Valid reports whether a batch can hold at least one fully visible voxel and
// every vertex stays addressable by a uint16 index.
func (l Limits) Valid() bool {
	return l.MaxVertices >= verticesPerVoxel &&
		l.MaxIndices >= indicesPerVoxel &&
		l.MaxVertices <= maxIndexable
}

func (l Limits) orDefault() Limits {
	if !l.Valid() {
		return DefaultLimits()
	}
	return l
}

// Build meshes g into batches that respect limits. Invalid limits fall back
// to DefaultLimits.
func Build(g *world.Grid, limits Limits) []Batch {
	var batches []Batch
	BuildFunc(g, limits, func(b Batch) {
		batches = append(batches, b)
	})
	return batches
}

// BuildFunc is Build with a callback per finished batch. Batches are never
// empty and are not reused after emit returns.
func BuildFunc(g *world.Grid, limits Limits, emit func(Batch)) {
	defer profiling.Track("meshing.Build")()

	limits = limits.orDefault()
	var (
		pending Batch
		faces   []Face
	)
	flush := func() {
		if len(pending.Vertices) == 0 {
			return
		}
		emit(pending)
		pending = Batch{}
	}

	g.Occupied(func(i int, c world.Coord, v world.Voxel) {
		faces = appendVisible(faces[:0], g, i, c, v)
		if len(faces) == 0 {
			return
		}
		addV, addI := 4*len(faces), len(QuadIndices)*len(faces)
		if len(pending.Vertices)+addV > limits.MaxVertices || len(pending.Indices)+addI > limits.MaxIndices {
			flush()
		}
		for _, f := range faces {
			pending.appendFace(f)
		}
	})
	flush()
}

func (b *Batch) appendFace(f Face) {
	base := uint16(len(b.Vertices))
	q := f.Quad()
	b.Vertices = append(b.Vertices, q[:]...)
	for _, idx := range QuadIndices {
		b.Indices = append(b.Indices, base+idx)
	}
}

// Stats summarises a mesh.
type Stats struct {
	Batches  int
	Faces    int
	Vertices int
	Indices  int
}

// Summarize counts the geometry in batches.
func Summarize(batches []Batch) Stats {
	s := Stats{Batches: len(batches)}
	for _, b := range batches {
		s.Vertices += len(b.Vertices)
		s.Indices += len(b.Indices)
	}
	s.Faces = s.Vertices / 4
	return s
}
