package world

import (
	"crypto/md5"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGrid(t *testing.T, radius int) *Grid {
	t.Helper()
	v, err := NewVolume(radius)
	require.NoError(t, err)
	return NewGrid(v)
}

func TestNamedCollapsesAir(t *testing.T) {
	assert.True(t, Named("").IsAir())
	assert.True(t, Named("air").IsAir())
	assert.True(t, Named("minecraft:air").IsAir())
	assert.Equal(t, Air, Named("minecraft:air"))

	stone := Named("minecraft:stone")
	assert.False(t, stone.IsAir())
	assert.Equal(t, "minecraft:stone", stone.Identity())
	assert.Equal(t, "air", Air.Identity())
}

func TestIdentityColorUsesDigestPrefix(t *testing.T) {
	sum := md5.Sum([]byte("minecraft:stone"))
	c := IdentityColor("minecraft:stone")
	assert.Equal(t, sum[0], c.R)
	assert.Equal(t, sum[1], c.G)
	assert.Equal(t, sum[2], c.B)
	assert.Equal(t, uint8(0xff), c.A)
	assert.Equal(t, c, IdentityColor("minecraft:stone"))
}

func TestNewGridIsAllAir(t *testing.T) {
	g := newTestGrid(t, 2)
	assert.Equal(t, 125, g.Len())
	assert.Zero(t, g.OccupiedCount())
	for i := 0; i < g.Len(); i++ {
		assert.True(t, g.At(i).Block.IsAir())
	}
}

func TestReplace(t *testing.T) {
	g := newTestGrid(t, 1)
	blocks := make([]Block, g.Len())
	blocks[4] = Named("minecraft:stone")
	blocks[5] = Named("minecraft:stone")
	blocks[26] = Named("minecraft:dirt")

	before := g.Version()
	require.NoError(t, g.Replace(blocks))
	assert.Greater(t, g.Version(), before)
	assert.Equal(t, 3, g.OccupiedCount())

	v, ok := g.Get(Coord{1, 1, 0})
	require.True(t, ok)
	assert.Equal(t, "minecraft:stone", v.Block.Identity())
	assert.Equal(t, IdentityColor("minecraft:stone"), v.Color)
	assert.Equal(t, g.At(4).Color, g.At(5).Color)

	var order []int
	g.Occupied(func(i int, c Coord, v Voxel) {
		order = append(order, i)
		idx, _ := g.Volume().Linearize(c)
		assert.Equal(t, i, idx)
	})
	assert.Equal(t, []int{4, 5, 26}, order)
}

func TestReplaceRejectsWrongLength(t *testing.T) {
	g := newTestGrid(t, 1)
	require.True(t, g.Set(Coord{0, 0, 0}, Named("minecraft:stone")))
	version := g.Version()

	err := g.Replace(make([]Block, g.Len()-1))
	require.Error(t, err)
	assert.Equal(t, version, g.Version())
	assert.Equal(t, "minecraft:stone", g.At(0).Block.Identity())
}

func TestIsAirOutsideVolume(t *testing.T) {
	g := newTestGrid(t, 1)
	g.Set(Coord{0, 0, 0}, Named("minecraft:stone"))

	assert.False(t, g.IsAir(Coord{0, 0, 0}))
	assert.True(t, g.IsAir(Coord{-1, 0, 0}))
	assert.True(t, g.IsAir(Coord{0, 5, 0}))
	_, ok := g.Get(Coord{0, 0, -1})
	assert.False(t, ok)
	assert.True(t, g.At(-1).Block.IsAir())
	assert.True(t, g.At(g.Len()).Block.IsAir())
	assert.False(t, g.Set(Coord{3, 0, 0}, Named("minecraft:stone")))
}
