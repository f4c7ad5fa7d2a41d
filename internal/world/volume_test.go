package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVolume(t *testing.T) {
	v, err := NewVolume(1)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Width)
	assert.Equal(t, 27, v.Size())
	assert.Equal(t, Coord{1, 1, 1}, v.Center())

	v, err = NewVolume(16)
	require.NoError(t, err)
	assert.Equal(t, 35937, v.Size())

	_, err = NewVolume(0)
	assert.ErrorIs(t, err, ErrInvalidRadius)
	_, err = NewVolume(-3)
	assert.ErrorIs(t, err, ErrInvalidRadius)
}

func TestCodecIsBijection(t *testing.T) {
	for _, radius := range []int{1, 2, 5} {
		v, err := NewVolume(radius)
		require.NoError(t, err)

		seen := make([]bool, v.Size())
		for z := 0; z < v.Width; z++ {
			for y := 0; y < v.Width; y++ {
				for x := 0; x < v.Width; x++ {
					c := Coord{x, y, z}
					i, ok := v.Linearize(c)
					require.True(t, ok, "linearize %v", c)
					require.False(t, seen[i], "index %d produced twice", i)
					seen[i] = true

					back, ok := v.Delinearize(i)
					require.True(t, ok)
					require.Equal(t, c, back)
				}
			}
		}
		for i := range seen {
			assert.True(t, seen[i], "index %d never produced", i)
		}
	}
}

func TestCodecCanonicalOrder(t *testing.T) {
	v, _ := NewVolume(1)

	i, _ := v.Linearize(Coord{1, 0, 0})
	assert.Equal(t, 1, i)
	i, _ = v.Linearize(Coord{0, 1, 0})
	assert.Equal(t, 3, i)
	i, _ = v.Linearize(Coord{0, 0, 1})
	assert.Equal(t, 9, i)

	c, _ := v.Delinearize(4)
	assert.Equal(t, Coord{1, 1, 0}, c)
	c, _ = v.Delinearize(13)
	assert.Equal(t, v.Center(), c)
}

func TestCodecOutOfRange(t *testing.T) {
	v, _ := NewVolume(1)

	for _, c := range []Coord{{-1, 0, 0}, {0, 3, 0}, {0, 0, 3}, {3, 3, 3}} {
		i, ok := v.Linearize(c)
		assert.False(t, ok, "%v", c)
		assert.Equal(t, -1, i)
	}
	for _, i := range []int{-1, 27, 1000} {
		_, ok := v.Delinearize(i)
		assert.False(t, ok, "%d", i)
	}
}

func TestCoordCenter(t *testing.T) {
	c := Coord{1, 2, 3}
	assert.Equal(t, float32(1.5), c.Center().X())
	assert.Equal(t, float32(2.5), c.Center().Y())
	assert.Equal(t, float32(3.5), c.Center().Z())
	assert.Equal(t, Coord{2, 1, 3}, c.Add(1, -1, 0))
}
