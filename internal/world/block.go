package world

import (
	"crypto/md5"
	"image/color"
	"strings"
)

// AirIdentity is the wire name of an empty cell.
const AirIdentity = "air"

// Block is either Air (the zero value) or a named block type.
type Block struct {
	identity string
}

// Air is the empty block.
var Air = Block{}

// Named returns the block with the given identity. Empty names and the air
// names used by scanners collapse to Air.
func Named(identity string) Block {
	switch strings.TrimSpace(identity) {
	case "", AirIdentity, "minecraft:air":
		return Air
	}
	return Block{identity: identity}
}

// IsAir reports whether b is the empty block.
func (b Block) IsAir() bool {
	return b.identity == ""
}

// Identity returns the block-type name, or "air".
func (b Block) Identity() string {
	if b.IsAir() {
		return AirIdentity
	}
	return b.identity
}

func (b Block) String() string {
	return b.Identity()
}

// IdentityColor derives the display colour of an identity from the first three
// bytes of its MD5 digest. Alpha is always opaque.
func IdentityColor(identity string) color.RGBA {
	sum := md5.Sum([]byte(identity))
	return color.RGBA{R: sum[0], G: sum[1], B: sum[2], A: 0xff}
}
