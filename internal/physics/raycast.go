package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Eirikalv1/cc-websockets/internal/profiling"
	"github.com/Eirikalv1/cc-websockets/internal/world"
)

// PickOptions bounds the ray march.
type PickOptions struct {
	MaxSteps         int
	MaxDistance      float32
	SurfaceThreshold float32
}

// DefaultPickOptions returns the march constants the viewer has always used.
func DefaultPickOptions() PickOptions {
	return PickOptions{MaxSteps: 10000, MaxDistance: 100, SurfaceThreshold: 0.01}
}

func (o PickOptions) orDefault() PickOptions {
	def := DefaultPickOptions()
	if o.MaxSteps <= 0 {
		o.MaxSteps = def.MaxSteps
	}
	if o.MaxDistance <= 0 {
		o.MaxDistance = def.MaxDistance
	}
	if o.SurfaceThreshold <= 0 {
		o.SurfaceThreshold = def.SurfaceThreshold
	}
	return o
}

// PickResult stores the outcome of a pick.
type PickResult struct {
	Hit      bool
	Identity string
	Coord    world.Coord
	Index    int
	// Distance marched along the ray when the march stopped.
	Distance float32
	Steps    int
}

// BoxDistance is a lower bound on the distance from p to the unit cube
// centred on c: the largest per-axis excess over the half extent, clamped at
// zero inside the cube.
func BoxDistance(p, c mgl32.Vec3) float32 {
	d := float32(0)
	for axis := 0; axis < 3; axis++ {
		if e := abs(p[axis]-c[axis]) - 0.5; e > d {
			d = e
		}
	}
	return d
}

// Closest returns the smallest BoxDistance from p over all occupied voxels
// and the scan index of the voxel that attains it. Ties go to the lowest
// index. ok is false for an empty grid.
func Closest(g *world.Grid, p mgl32.Vec3) (dist float32, index int, ok bool) {
	index = -1
	g.Occupied(func(i int, c world.Coord, _ world.Voxel) {
		d := BoxDistance(p, c.Center())
		if !ok || d < dist {
			dist, index, ok = d, i, true
		}
	})
	return dist, index, ok
}

// Pick marches from origin along dir and returns the first occupied voxel it
// reaches. Each step advances by the closest-voxel distance; the march stops
// on a hit (distance below the surface threshold), past MaxDistance, or after
// MaxSteps. A zero direction never hits.
func Pick(g *world.Grid, origin, dir mgl32.Vec3, opts PickOptions) PickResult {
	defer profiling.Track("physics.Pick")()

	opts = opts.orDefault()
	l := dir.Len()
	if l == 0 || math.IsNaN(float64(l)) || math.IsInf(float64(l), 0) {
		return PickResult{Index: -1}
	}
	dir = dir.Mul(1 / l)

	var dist float32
	for step := 1; step <= opts.MaxSteps; step++ {
		p := origin.Add(dir.Mul(dist))
		closest, idx, ok := Closest(g, p)
		if !ok {
			return PickResult{Index: -1, Steps: step}
		}
		if closest < opts.SurfaceThreshold {
			v := g.At(idx)
			c, _ := g.Volume().Delinearize(idx)
			return PickResult{
				Hit:      true,
				Identity: v.Block.Identity(),
				Coord:    c,
				Index:    idx,
				Distance: dist,
				Steps:    step,
			}
		}
		dist += closest
		if dist > opts.MaxDistance {
			return PickResult{Index: -1, Distance: dist, Steps: step}
		}
	}
	return PickResult{Index: -1, Distance: dist, Steps: opts.MaxSteps}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
