// Package viewer runs the frame loop: it drains scanner events, decodes them
// into the grid, rebuilds the mesh when the grid changes, handles picks and
// operator commands, and renders.
package viewer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Eirikalv1/cc-websockets/internal/link"
	"github.com/Eirikalv1/cc-websockets/internal/logging"
	"github.com/Eirikalv1/cc-websockets/internal/meshing"
	"github.com/Eirikalv1/cc-websockets/internal/metrics"
	"github.com/Eirikalv1/cc-websockets/internal/physics"
	"github.com/Eirikalv1/cc-websockets/internal/protocol"
	"github.com/Eirikalv1/cc-websockets/internal/world"
)

// Sender delivers an operator command to the scanner.
type Sender interface {
	Send(cmd string) error
}

// Options tune mesh batching and picking.
type Options struct {
	Limits meshing.Limits
	Pick   physics.PickOptions
}

// Session is the viewer state that does not touch the GPU. All methods run on
// the frame loop's goroutine.
type Session struct {
	grid    *world.Grid
	decoder *protocol.Decoder
	log     *logging.Logger
	metrics *metrics.Metrics
	opts    Options

	batches     []meshing.Batch
	meshVersion uint64
	meshed      bool

	scanner   string
	status    string
	picked    physics.PickResult
	hasPicked bool
}

// NewSession wires a decoder to grid. logger and m may be nil.
func NewSession(grid *world.Grid, opts Options, logger *logging.Logger, m *metrics.Metrics) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{
		grid:    grid,
		decoder: protocol.NewDecoder(grid, logger.With("[protocol] ")),
		log:     logger,
		metrics: m,
		opts:    opts,
		status:  "waiting for scanner",
	}
}

// Handle applies one link event.
func (s *Session) Handle(ev link.Event) {
	switch ev.Kind {
	case link.EventConnected:
		s.scanner = ev.Session
		s.decoder.Reset()
		s.status = "scanner connected"
	case link.EventDisconnected:
		if ev.Session == s.scanner {
			s.scanner = ""
		}
		s.status = "scanner disconnected"
	case link.EventMessage:
		s.handleReport(ev.Text)
	}
}

func (s *Session) handleReport(msg string) {
	r, err := s.decoder.Handle(msg)
	reason := ""
	if err != nil {
		reason = protocol.Reason(err)
	}
	s.metrics.ObserveReport(r.Kind.String(), reason)

	var mismatch *protocol.MismatchError
	switch {
	case errors.Is(err, protocol.ErrSessionMismatch):
		s.status = "scan ignored: scanner radius differs from viewer"
	case errors.As(err, &mismatch):
		s.status = fmt.Sprintf("radius mismatch: scanner sent %d cells, viewer expects %d; restart the scanner",
			mismatch.Got, mismatch.Want)
	case err != nil:
		s.status = "protocol error: " + err.Error()
	case r.Kind == protocol.KindAck:
		s.status = "ok"
	case r.Kind == protocol.KindFailure:
		s.status = "failed: " + r.Text
	case r.Kind == protocol.KindScan:
		s.status = fmt.Sprintf("scan: %d blocks, %d types", r.Occupied(), len(r.Names))
		// A new scan can move or remove the picked voxel.
		s.hasPicked = false
	}
}

// Remesh rebuilds the mesh if the grid changed since the last build and
// reports whether it did.
func (s *Session) Remesh() bool {
	if s.meshed && s.grid.Version() == s.meshVersion {
		return false
	}
	start := time.Now()
	s.batches = meshing.Build(s.grid, s.opts.Limits)
	s.meshVersion = s.grid.Version()
	s.meshed = true

	st := meshing.Summarize(s.batches)
	s.metrics.ObserveMesh(time.Since(start), st.Batches, s.grid.OccupiedCount())
	s.log.Debugf("mesh rebuilt: %d batches, %d faces in %v", st.Batches, st.Faces, time.Since(start))
	return true
}

// Batches returns the current mesh.
func (s *Session) Batches() []meshing.Batch {
	return s.batches
}

// Pick casts a ray and remembers the result for the HUD and the outline.
func (s *Session) Pick(origin, dir mgl32.Vec3) physics.PickResult {
	res := physics.Pick(s.grid, origin, dir, s.opts.Pick)
	s.picked, s.hasPicked = res, res.Hit
	s.metrics.ObservePick(res.Hit)
	if res.Hit {
		s.log.Infof("picked %s at %v", res.Identity, res.Coord)
	}
	return res
}

// Picked returns the last successful pick.
func (s *Session) Picked() (physics.PickResult, bool) {
	return s.picked, s.hasPicked
}

// Submit sends a trimmed operator command. Empty commands are dropped.
func (s *Session) Submit(cmd string, to Sender) error {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return nil
	}
	if err := to.Send(cmd); err != nil {
		s.status = fmt.Sprintf("not sent: %v", err)
		return err
	}
	s.status = "sent: " + cmd
	s.log.Infof("command sent: %s", cmd)
	return nil
}

// Connected reports whether a scanner session is live.
func (s *Session) Connected() bool {
	return s.scanner != ""
}

// Status is the last scanner outcome in words.
func (s *Session) Status() string {
	return s.status
}

// Lines renders the session for the HUD.
func (s *Session) Lines() []string {
	conn := "scanner: not connected"
	if s.scanner != "" {
		conn = "scanner: " + shortID(s.scanner)
	}
	picked := "picked: -"
	if s.hasPicked {
		picked = fmt.Sprintf("picked: %s at %v", s.picked.Identity, s.picked.Coord)
	}
	return []string{
		conn,
		"status: " + s.status,
		picked,
		fmt.Sprintf("voxels: %d  batches: %d", s.grid.OccupiedCount(), len(s.batches)),
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
