package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Eirikalv1/cc-websockets/internal/world"
)

// Direction is one of the six axis-aligned face directions.
type Direction int

// Faces are always visited in this order.
const (
	Front  Direction = iota // +Z
	Back                    // -Z
	Top                     // +Y
	Bottom                  // -Y
	Right                   // +X
	Left                    // -X
)

// Directions lists all faces in visiting order.
var Directions = [6]Direction{Front, Back, Top, Bottom, Right, Left}

var directionNames = [6]string{"front", "back", "top", "bottom", "right", "left"}

func (d Direction) String() string {
	if d < Front || d > Left {
		return "invalid"
	}
	return directionNames[d]
}

// Offset returns the unit step towards the neighbour across this face.
func (d Direction) Offset() (dx, dy, dz int) {
	switch d {
	case Front:
		return 0, 0, 1
	case Back:
		return 0, 0, -1
	case Top:
		return 0, 1, 0
	case Bottom:
		return 0, -1, 0
	case Right:
		return 1, 0, 0
	case Left:
		return -1, 0, 0
	}
	return 0, 0, 0
}

// Normal is Offset as a vector.
func (d Direction) Normal() mgl32.Vec3 {
	dx, dy, dz := d.Offset()
	return mgl32.Vec3{float32(dx), float32(dy), float32(dz)}
}

// Unit-cube corners of each face, counter-clockwise seen from outside.
var faceCorners = [6][4]mgl32.Vec3{
	Front:  {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	Back:   {{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}},
	Top:    {{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}},
	Bottom: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	Right:  {{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}},
	Left:   {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
}

// Image rows run top-down, so the upper corners of a side face sample v=0.
var faceUVs = [4]mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

// Visible reports whether the face of the voxel at c pointing in d should be
// drawn: the neighbour is outside the volume or is air.
func Visible(g *world.Grid, c world.Coord, d Direction) bool {
	dx, dy, dz := d.Offset()
	return g.IsAir(c.Add(dx, dy, dz))
}

// Face is one visible side of an occupied voxel.
type Face struct {
	Index     int
	Coord     world.Coord
	Direction Direction
	Color     [4]uint8
}

// Quad returns the four vertices of the face.
func (f Face) Quad() [4]Vertex {
	var q [4]Vertex
	base := f.Coord.Min()
	for i, corner := range faceCorners[f.Direction] {
		q[i] = Vertex{
			Position: base.Add(corner),
			UV:       faceUVs[i],
			Color:    f.Color,
		}
	}
	return q
}

// Faces returns every visible face of g, voxels in scan order and faces in
// direction order, without batching.
func Faces(g *world.Grid) []Face {
	var faces []Face
	g.Occupied(func(i int, c world.Coord, v world.Voxel) {
		faces = appendVisible(faces, g, i, c, v)
	})
	return faces
}

func appendVisible(dst []Face, g *world.Grid, i int, c world.Coord, v world.Voxel) []Face {
	col := [4]uint8{v.Color.R, v.Color.G, v.Color.B, v.Color.A}
	for _, d := range Directions {
		if Visible(g, c, d) {
			dst = append(dst, Face{Index: i, Coord: c, Direction: d, Color: col})
		}
	}
	return dst
}
