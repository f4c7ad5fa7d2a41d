package protocol

import (
	"errors"
	"fmt"

	"github.com/Eirikalv1/cc-websockets/internal/logging"
	"github.com/Eirikalv1/cc-websockets/internal/profiling"
	"github.com/Eirikalv1/cc-websockets/internal/world"
)

// Decoder applies reports to a grid. It is the grid's only writer.
type Decoder struct {
	grid  *world.Grid
	log   *logging.Logger
	fatal error
}

// NewDecoder returns a decoder that writes into grid.
func NewDecoder(grid *world.Grid, logger *logging.Logger) *Decoder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Decoder{grid: grid, log: logger}
}

// Err returns the fatal error that stopped scan decoding, if any.
func (d *Decoder) Err() error {
	return d.fatal
}

// Reset clears a fatal mismatch, for a fresh scanner session.
func (d *Decoder) Reset() {
	d.fatal = nil
}

// Handle decodes msg. A scan replaces the whole grid; any error leaves the
// grid at its last good state. After a slot count mismatch every further scan
// fails with ErrSessionMismatch.
func (d *Decoder) Handle(msg string) (Report, error) {
	defer profiling.Track("protocol.Handle")()

	if d.fatal != nil && len(msg) > 0 && msg[0] == '2' {
		return Report{Kind: KindScan}, fmt.Errorf("%w: %w", ErrSessionMismatch, d.fatal)
	}

	r, err := Parse(msg, d.grid.Len())
	if err != nil {
		var mismatch *MismatchError
		if errors.As(err, &mismatch) {
			d.fatal = err
			d.log.Errorf("scan rejected, refusing further scans this session: %v", err)
			return r, err
		}
		if r.Kind == KindUnknown {
			d.log.Warnf("ignoring message: %v", err)
		} else {
			d.log.Errorf("scan rejected: %v", err)
		}
		return r, err
	}

	switch r.Kind {
	case KindAck:
		d.log.Infof("command executed successfully")
	case KindFailure:
		d.log.Errorf("scanner rejected the command: %s", r.Text)
	case KindScan:
		if err := d.grid.Replace(r.Blocks); err != nil {
			return r, err
		}
		d.log.Debugf("scan applied: %d names, %d occupied cells", len(r.Names), r.Occupied())
	}
	return r, nil
}
