package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eirikalv1/cc-websockets/internal/protocol"
	"github.com/Eirikalv1/cc-websockets/internal/world"
)

func newTestAgent(t *testing.T, radius int) *agent {
	t.Helper()
	v, err := world.NewVolume(radius)
	require.NoError(t, err)
	return newAgent(v, 7)
}

func TestScanDecodes(t *testing.T) {
	a := newTestAgent(t, 3)
	r, err := protocol.Parse(a.Scan(), a.volume.Size())
	require.NoError(t, err)
	assert.Equal(t, protocol.KindScan, r.Kind)
	assert.Len(t, r.Blocks, 7*7*7)
	assert.NotZero(t, r.Occupied())
	assert.Less(t, r.Occupied(), len(r.Blocks))
}

func TestCommandsReply(t *testing.T) {
	a := newTestAgent(t, 2)
	for _, cmd := range []string{"forward", "turtle.back()", " up ", "down", "turnLeft", "turtle.turnRight()", "scan"} {
		assert.Equal(t, "0", a.Apply(cmd), cmd)
	}
	assert.Equal(t, `1Unknown command "jump"`, a.Apply("jump"))
}

func TestMovementFollowsHeading(t *testing.T) {
	a := newTestAgent(t, 1)
	x, y, z := a.x, a.y, a.z

	a.Apply("forward")
	assert.Equal(t, z-1, a.z)
	a.Apply("turnRight")
	a.Apply("forward")
	assert.Equal(t, x+1, a.x)
	a.Apply("turnLeft")
	a.Apply("turnLeft")
	a.Apply("forward")
	a.Apply("back")
	assert.Equal(t, x, a.x-1)
	a.Apply("up")
	assert.Equal(t, y+1, a.y)
}
