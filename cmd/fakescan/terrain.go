package main

import (
	"math"

	"github.com/Eirikalv1/cc-websockets/internal/world"
)

const (
	seaLevel     = 0
	hillHeight   = 10
	dirtDepth    = 3
	caveCutoff   = 0.72
	oreCutoff    = 0.80
	oreSeedShift = 977
)

// terrain is deterministic value-noise ground: rolling hills, a dirt cap,
// caves and ore pockets in the stone.
type terrain struct {
	seed int64
}

func (t terrain) surface(x, z int) int {
	n := octaveNoise2D(float64(x)/24, float64(z)/24, t.seed, 4, 0.5, 2)
	return seaLevel + int(math.Round((n-0.5)*2*hillHeight))
}

func (t terrain) at(x, y, z int) world.Block {
	h := t.surface(x, z)
	switch {
	case y > h:
		return world.Air
	case y == h:
		return world.Named("minecraft:grass_block")
	case y > h-dirtDepth:
		return world.Named("minecraft:dirt")
	}

	fx, fy, fz := float64(x), float64(y), float64(z)
	if octaveNoise3D(fx/12, fy/8, fz/12, t.seed, 2, 0.5, 2) > caveCutoff {
		return world.Air
	}
	if valueNoise3D(fx/3, fy/3, fz/3, t.seed+oreSeedShift) > oreCutoff {
		return world.Named("minecraft:iron_ore")
	}
	return world.Named("minecraft:stone")
}

// smootherstep
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// mix is a SplitMix64 finaliser.
func mix(v uint64) uint64 {
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

func hash2(x, z, seed int64) uint64 {
	return mix(uint64(x)*0x9E3779B97F4A7C15 + uint64(z)*0x6C62272E07BB0142 + uint64(seed))
}

func hash3(x, y, z, seed int64) uint64 {
	return mix(uint64(x)*0x9E3779B97F4A7C15 + uint64(y)*0x517CC1B727220A95 + uint64(z)*0x6C62272E07BB0142 + uint64(seed))
}

// unit maps a hash to [0,1].
func unit(h uint64) float64 {
	return float64(h&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

func valueNoise2D(x, z float64, seed int64) float64 {
	x0, z0 := math.Floor(x), math.Floor(z)
	fx, fz := fade(x-x0), fade(z-z0)
	ix, iz := int64(x0), int64(z0)

	a := lerp(unit(hash2(ix, iz, seed)), unit(hash2(ix+1, iz, seed)), fx)
	b := lerp(unit(hash2(ix, iz+1, seed)), unit(hash2(ix+1, iz+1, seed)), fx)
	return lerp(a, b, fz)
}

func valueNoise3D(x, y, z float64, seed int64) float64 {
	x0, y0, z0 := math.Floor(x), math.Floor(y), math.Floor(z)
	fx, fy, fz := fade(x-x0), fade(y-y0), fade(z-z0)
	ix, iy, iz := int64(x0), int64(y0), int64(z0)

	corner := func(dx, dy, dz int64) float64 {
		return unit(hash3(ix+dx, iy+dy, iz+dz, seed))
	}
	// Along X, then Y, then Z.
	i00 := lerp(corner(0, 0, 0), corner(1, 0, 0), fx)
	i10 := lerp(corner(0, 1, 0), corner(1, 1, 0), fx)
	i01 := lerp(corner(0, 0, 1), corner(1, 0, 1), fx)
	i11 := lerp(corner(0, 1, 1), corner(1, 1, 1), fx)
	return lerp(lerp(i00, i10, fy), lerp(i01, i11, fy), fz)
}

func octaveNoise2D(x, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	return fractal(octaves, persistence, lacunarity, func(freq float64, i int) float64 {
		return valueNoise2D(x*freq, z*freq, seed+int64(i*131))
	})
}

func octaveNoise3D(x, y, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	return fractal(octaves, persistence, lacunarity, func(freq float64, i int) float64 {
		return valueNoise3D(x*freq, y*freq, z*freq, seed+int64(i*131))
	})
}

// fractal sums sample over octaves and normalises the result to [0,1].
func fractal(octaves int, persistence, lacunarity float64, sample func(freq float64, i int) float64) float64 {
	amplitude, frequency := 1.0, 1.0
	sum, norm := 0.0, 0.0
	for i := range octaves {
		sum += sample(frequency, i) * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
