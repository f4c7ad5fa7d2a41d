package world

import (
	"fmt"
	"image/color"
)

// Voxel is one grid cell.
type Voxel struct {
	Block Block
	Color color.RGBA
}

// Grid holds one voxel per scan index of a Volume. It is written by the scan
// decoder and read by the mesher and picker, all on the frame loop's
// goroutine; it does no locking of its own.
type Grid struct {
	volume  Volume
	voxels  []Voxel
	palette map[string]color.RGBA
	version uint64
}

// NewGrid allocates an all-air grid for v.
func NewGrid(v Volume) *Grid {
	return &Grid{
		volume:  v,
		voxels:  make([]Voxel, v.Size()),
		palette: make(map[string]color.RGBA),
	}
}

// Volume returns the cube the grid covers.
func (g *Grid) Volume() Volume {
	return g.volume
}

// Len returns Width³.
func (g *Grid) Len() int {
	return len(g.voxels)
}

// Version increases every time the contents are replaced.
func (g *Grid) Version() uint64 {
	return g.version
}

// At returns the voxel at scan index i. Out-of-range indices yield an air voxel.
func (g *Grid) At(i int) Voxel {
	if i < 0 || i >= len(g.voxels) {
		return Voxel{}
	}
	return g.voxels[i]
}

// Get returns the voxel at c; ok is false when c lies outside the volume.
func (g *Grid) Get(c Coord) (Voxel, bool) {
	i, ok := g.volume.Linearize(c)
	if !ok {
		return Voxel{}, false
	}
	return g.voxels[i], true
}

// IsAir reports whether c is empty. Positions outside the volume count as
// empty, which is what face culling wants at the boundary.
func (g *Grid) IsAir(c Coord) bool {
	v, ok := g.Get(c)
	return !ok || v.Block.IsAir()
}

// Occupied calls fn for every non-air voxel in ascending scan-index order.
func (g *Grid) Occupied(fn func(i int, c Coord, v Voxel)) {
	w := g.volume.Width
	for i, v := range g.voxels {
		if v.Block.IsAir() {
			continue
		}
		r := i % (w * w)
		fn(i, Coord{X: r % w, Y: r / w, Z: i / (w * w)}, v)
	}
}

// OccupiedCount returns the number of non-air voxels.
func (g *Grid) OccupiedCount() int {
	n := 0
	for _, v := range g.voxels {
		if !v.Block.IsAir() {
			n++
		}
	}
	return n
}

// Replace overwrites every voxel with blocks, which must hold exactly Len()
// entries. The grid is left untouched on error.
func (g *Grid) Replace(blocks []Block) error {
	if len(blocks) != len(g.voxels) {
		return fmt.Errorf("replace grid: got %d blocks, want %d", len(blocks), len(g.voxels))
	}
	for i, b := range blocks {
		g.voxels[i] = Voxel{Block: b, Color: g.colorOf(b)}
	}
	g.version++
	return nil
}

// Set writes a single cell. It exists for tests and tools that build grids
// by hand; the scan decoder always goes through Replace.
func (g *Grid) Set(c Coord, b Block) bool {
	i, ok := g.volume.Linearize(c)
	if !ok {
		return false
	}
	g.voxels[i] = Voxel{Block: b, Color: g.colorOf(b)}
	g.version++
	return true
}

// Blocks returns a copy of the block tags in scan-index order.
func (g *Grid) Blocks() []Block {
	out := make([]Block, len(g.voxels))
	for i, v := range g.voxels {
		out[i] = v.Block
	}
	return out
}

func (g *Grid) colorOf(b Block) color.RGBA {
	if b.IsAir() {
		return color.RGBA{}
	}
	id := b.Identity()
	if c, ok := g.palette[id]; ok {
		return c
	}
	c := IdentityColor(id)
	g.palette[id] = c
	return c
}
