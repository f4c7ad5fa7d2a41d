package world

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidRadius is returned when a scan radius cannot describe a cube.
var ErrInvalidRadius = errors.New("scan radius must be at least 1")

// Coord is an integer position inside the scanned cube.
type Coord struct {
	X, Y, Z int
}

// Add returns the coordinate offset by (dx, dy, dz). The result may lie
// outside any volume; check it with Volume.Contains.
func (c Coord) Add(dx, dy, dz int) Coord {
	return Coord{c.X + dx, c.Y + dy, c.Z + dz}
}

// Min returns the minimum corner of the unit cube occupied by c.
func (c Coord) Min() mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X), float32(c.Y), float32(c.Z)}
}

// Center returns the center of the unit cube occupied by c.
func (c Coord) Center() mgl32.Vec3 {
	return c.Min().Add(mgl32.Vec3{0.5, 0.5, 0.5})
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Volume is the fixed cube surveyed by one scan session. Width is always
// 2*Radius+1, so it is odd and at least 3.
type Volume struct {
	Radius int
	Width  int
}

// NewVolume returns the volume for the given scan radius.
func NewVolume(radius int) (Volume, error) {
	if radius < 1 {
		return Volume{}, fmt.Errorf("%w: got %d", ErrInvalidRadius, radius)
	}
	return Volume{Radius: radius, Width: 2*radius + 1}, nil
}

// Size returns the number of cells, Width³.
func (v Volume) Size() int {
	return v.Width * v.Width * v.Width
}

// Center is where the scanner sits.
func (v Volume) Center() Coord {
	return Coord{v.Radius, v.Radius, v.Radius}
}

// Contains reports whether every component of c lies in [0, Width).
func (v Volume) Contains(c Coord) bool {
	return c.X >= 0 && c.X < v.Width &&
		c.Y >= 0 && c.Y < v.Width &&
		c.Z >= 0 && c.Z < v.Width
}

// Linearize maps c to its scan index x + y*W + z*W². ok is false when c is
// outside the volume; callers treat that as "no neighbour".
func (v Volume) Linearize(c Coord) (index int, ok bool) {
	if !v.Contains(c) {
		return -1, false
	}
	w := v.Width
	return c.X + c.Y*w + c.Z*w*w, true
}

// Delinearize is the inverse of Linearize for indices in [0, Width³).
func (v Volume) Delinearize(index int) (c Coord, ok bool) {
	if index < 0 || index >= v.Size() {
		return Coord{}, false
	}
	w := v.Width
	r := index % (w * w)
	return Coord{X: r % w, Y: r / w, Z: index / (w * w)}, true
}
