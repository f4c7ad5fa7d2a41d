package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind marks a message whose discriminator is not 0, 1 or 2.
	ErrUnknownKind = errors.New("unknown message kind")
	// ErrMissingBrackets marks a scan report without its two bracketed lists.
	ErrMissingBrackets = errors.New("scan report: missing brackets")
	// ErrBadSlot marks a slot entry that is not an unsigned integer.
	ErrBadSlot = errors.New("scan report: bad slot")
	// ErrDanglingRef marks a slot pointing past the end of the name list.
	ErrDanglingRef = errors.New("scan report: dangling dictionary reference")
	// ErrSlotCount marks a slot list whose length differs from the grid size.
	ErrSlotCount = errors.New("scan report: slot count mismatch")
	// ErrSessionMismatch is returned for every scan report after a slot count
	// mismatch until the decoder is reset.
	ErrSessionMismatch = errors.New("scan session radius mismatch")
)

// MismatchError reports a slot list of the wrong length. It means the scanner
// and the viewer are configured with different radii.
type MismatchError struct {
	Want int
	Got  int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("scan report: got %d slots, want %d (scanner and viewer radius differ)", e.Got, e.Want)
}

func (e *MismatchError) Unwrap() error {
	return ErrSlotCount
}

// Reason returns a short label for err, for metrics and status lines.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSessionMismatch):
		return "session_mismatch"
	case errors.Is(err, ErrSlotCount):
		return "slot_count"
	case errors.Is(err, ErrMissingBrackets):
		return "missing_brackets"
	case errors.Is(err, ErrBadSlot):
		return "bad_slot"
	case errors.Is(err, ErrDanglingRef):
		return "dangling_ref"
	case errors.Is(err, ErrUnknownKind):
		return "unknown_kind"
	default:
		return "other"
	}
}
