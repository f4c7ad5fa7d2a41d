package main

import (
	"fmt"
	"strings"

	"github.com/Eirikalv1/cc-websockets/internal/protocol"
	"github.com/Eirikalv1/cc-websockets/internal/world"
)

// headings in clockwise order: north (-Z), east, south, west.
var headings = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// agent is a pretend scanner walking over generated terrain.
type agent struct {
	volume  world.Volume
	terrain terrain
	x, y, z int
	heading int
}

func newAgent(v world.Volume, seed int64) *agent {
	t := terrain{seed: seed}
	return &agent{volume: v, terrain: t, y: t.surface(0, 0) + 1}
}

// Apply runs one command and returns the reply report. Commands may be
// written bare ("forward") or as calls ("turtle.forward()").
func (a *agent) Apply(cmd string) string {
	name := strings.TrimSpace(cmd)
	name = strings.TrimPrefix(name, "turtle.")
	name = strings.TrimSuffix(name, "()")

	switch name {
	case "forward":
		a.step(1)
	case "back":
		a.step(-1)
	case "up":
		a.y++
	case "down":
		a.y--
	case "turnLeft", "left":
		a.heading = (a.heading + 3) % 4
	case "turnRight", "right":
		a.heading = (a.heading + 1) % 4
	case "scan", "inspect":
	default:
		return fmt.Sprintf("1Unknown command %q", cmd)
	}
	return "0"
}

func (a *agent) step(n int) {
	h := headings[a.heading]
	a.x += n * h[0]
	a.z += n * h[1]
}

// Scan reports the cube centred on the agent.
func (a *agent) Scan() string {
	r := a.volume.Radius
	blocks := make([]world.Block, a.volume.Size())
	for i := range blocks {
		c, _ := a.volume.Delinearize(i)
		blocks[i] = a.terrain.at(a.x+c.X-r, a.y+c.Y-r, a.z+c.Z-r)
	}
	return protocol.EncodeBlocks(blocks)
}
