package viewer

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eirikalv1/cc-websockets/internal/link"
	"github.com/Eirikalv1/cc-websockets/internal/metrics"
	"github.com/Eirikalv1/cc-websockets/internal/world"
)

type recordingSender struct {
	sent []string
	err  error
}

func (r *recordingSender) Send(cmd string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, cmd)
	return nil
}

func newTestSession(t *testing.T, m *metrics.Metrics) (*Session, *world.Grid) {
	t.Helper()
	v, err := world.NewVolume(1)
	require.NoError(t, err)
	g := world.NewGrid(v)
	return NewSession(g, Options{}, nil, m), g
}

// scanWith returns a radius-1 scan with stone at the given indices.
func scanWith(indices ...int) string {
	slots := make([]string, 27)
	for i := range slots {
		slots[i] = "0"
	}
	for _, i := range indices {
		slots[i] = "1"
	}
	return `2["minecraft:stone"][` + strings.Join(slots, ",") + "]"
}

func message(text string) link.Event {
	return link.Event{Kind: link.EventMessage, Session: "abc", Text: text}
}

func TestSessionAppliesScan(t *testing.T) {
	s, g := newTestSession(t, nil)
	s.Handle(link.Event{Kind: link.EventConnected, Session: "0123456789"})
	assert.True(t, s.Connected())

	s.Handle(message(scanWith(4, 13)))
	assert.Equal(t, 2, g.OccupiedCount())
	assert.Equal(t, "scan: 2 blocks, 1 types", s.Status())

	lines := s.Lines()
	require.Len(t, lines, 4)
	assert.Equal(t, "scanner: 01234567", lines[0])
	assert.Equal(t, "picked: -", lines[2])
}

func TestSessionAckAndFailure(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Handle(message("0"))
	assert.Equal(t, "ok", s.Status())
	s.Handle(message("1Unknown command \"jump\""))
	assert.Equal(t, `failed: Unknown command "jump"`, s.Status())
	s.Handle(message("9"))
	assert.Contains(t, s.Status(), "protocol error")
}

func TestSessionMismatchUntilReconnect(t *testing.T) {
	s, g := newTestSession(t, nil)
	s.Handle(link.Event{Kind: link.EventConnected, Session: "a"})

	s.Handle(message(`2["minecraft:stone"][1,0,0]`))
	assert.Contains(t, s.Status(), "radius mismatch")
	assert.Contains(t, s.Status(), "sent 3 cells")

	s.Handle(message(scanWith(0)))
	assert.Contains(t, s.Status(), "scan ignored")
	assert.Equal(t, 0, g.OccupiedCount())

	// Acks still go through while scans are refused.
	s.Handle(message("0"))
	assert.Equal(t, "ok", s.Status())

	s.Handle(link.Event{Kind: link.EventDisconnected, Session: "a"})
	assert.False(t, s.Connected())
	s.Handle(link.Event{Kind: link.EventConnected, Session: "b"})
	s.Handle(message(scanWith(0)))
	assert.Equal(t, 1, g.OccupiedCount())
}

func TestSessionRemeshOnlyOnChange(t *testing.T) {
	s, _ := newTestSession(t, nil)
	assert.True(t, s.Remesh())
	assert.Empty(t, s.Batches())
	assert.False(t, s.Remesh())

	s.Handle(message(scanWith(13)))
	require.True(t, s.Remesh())
	require.Len(t, s.Batches(), 1)
	assert.Len(t, s.Batches()[0].Indices, 36)
	assert.False(t, s.Remesh())

	// A rejected scan leaves the grid, and so the mesh, alone.
	s.Handle(message(`2["a"][1]`))
	assert.False(t, s.Remesh())
}

func TestSessionPick(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Handle(message(scanWith(4))) // (1,1,0)

	res := s.Pick(mgl32.Vec3{1.5, 1.5, -5}, mgl32.Vec3{0, 0, 1})
	require.True(t, res.Hit)
	assert.Equal(t, world.Coord{X: 1, Y: 1, Z: 0}, res.Coord)
	assert.Equal(t, "minecraft:stone", res.Identity)

	picked, ok := s.Picked()
	assert.True(t, ok)
	assert.Equal(t, res, picked)
	assert.Contains(t, s.Lines()[2], "minecraft:stone")

	s.Pick(mgl32.Vec3{1.5, 1.5, -5}, mgl32.Vec3{0, 0, -1})
	_, ok = s.Picked()
	assert.False(t, ok)
}

func TestSessionNewScanClearsPick(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Handle(message(scanWith(4)))
	s.Pick(mgl32.Vec3{1.5, 1.5, -5}, mgl32.Vec3{0, 0, 1})
	s.Handle(message(scanWith(5)))
	_, ok := s.Picked()
	assert.False(t, ok)
}

func TestSessionSubmit(t *testing.T) {
	s, _ := newTestSession(t, nil)
	to := &recordingSender{}

	require.NoError(t, s.Submit("  forward  ", to))
	require.NoError(t, s.Submit("   ", to))
	assert.Equal(t, []string{"forward"}, to.sent)
	assert.Equal(t, "sent: forward", s.Status())

	to.err = link.ErrNoScanner
	err := s.Submit("back", to)
	assert.True(t, errors.Is(err, link.ErrNoScanner))
	assert.Contains(t, s.Status(), "not sent")
}

func TestSessionMetrics(t *testing.T) {
	m := metrics.New()
	s, _ := newTestSession(t, m)
	s.Handle(message(scanWith(4)))
	s.Handle(message(`2["a"][1]`))
	s.Remesh()
	s.Pick(mgl32.Vec3{1.5, 1.5, -5}, mgl32.Vec3{0, 0, 1})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, `scanview_reports_total{kind="scan"} 2`)
	assert.Contains(t, out, `scanview_reports_rejected_total{reason="slot_count"} 1`)
	assert.Contains(t, out, `scanview_picks_total{outcome="hit"} 1`)
	assert.Contains(t, out, "scanview_grid_occupied_voxels 1")
}
