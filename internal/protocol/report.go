// Package protocol decodes the text reports a scanning agent sends back:
//
//	"0"                    last command succeeded
//	"1<error text>"        last command failed
//	"2[names...][slots...]" full scan of the cube
//
// Names are double-quoted block identities in first-seen order. Slots hold one
// entry per scan index: 0 for air, v > 0 for names[v-1].
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Eirikalv1/cc-websockets/internal/world"
)

// Kind is the message discriminator.
type Kind int

const (
	KindUnknown Kind = iota
	KindAck
	KindFailure
	KindScan
)

func (k Kind) String() string {
	switch k {
	case KindAck:
		return "ack"
	case KindFailure:
		return "failure"
	case KindScan:
		return "scan"
	default:
		return "unknown"
	}
}

const listBoundary = "]["

// Report is one decoded message.
type Report struct {
	Kind Kind
	// Text is the error message of a KindFailure report.
	Text string
	// Names is the scan dictionary, Blocks the decoded cell per scan index.
	Names  []string
	Blocks []world.Block
}

// Occupied counts the non-air cells of a scan report.
func (r Report) Occupied() int {
	n := 0
	for _, b := range r.Blocks {
		if !b.IsAir() {
			n++
		}
	}
	return n
}

// Parse classifies msg and, for scans, decodes exactly size cells.
func Parse(msg string, size int) (Report, error) {
	if msg == "" {
		return Report{Kind: KindUnknown}, fmt.Errorf("%w: empty message", ErrUnknownKind)
	}
	switch msg[0] {
	case '0':
		return Report{Kind: KindAck}, nil
	case '1':
		return Report{Kind: KindFailure, Text: msg[1:]}, nil
	case '2':
		names, blocks, err := parseScan(msg[1:], size)
		if err != nil {
			return Report{Kind: KindScan}, err
		}
		return Report{Kind: KindScan, Names: names, Blocks: blocks}, nil
	}
	return Report{Kind: KindUnknown}, fmt.Errorf("%w: %q", ErrUnknownKind, msg[:1])
}

func parseScan(body string, size int) ([]string, []world.Block, error) {
	namePart, slotPart, found := strings.Cut(body, listBoundary)
	if !found || !strings.HasPrefix(namePart, "[") || !strings.HasSuffix(slotPart, "]") {
		return nil, nil, ErrMissingBrackets
	}
	names := splitNames(namePart[1:])

	fields := splitList(slotPart[:len(slotPart)-1])
	if len(fields) != size {
		return nil, nil, &MismatchError{Want: size, Got: len(fields)}
	}

	blocks := make([]world.Block, size)
	for i, f := range fields {
		slot, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("%w %d: %q", ErrBadSlot, i, f)
		}
		if slot == 0 {
			continue
		}
		if slot > uint64(len(names)) {
			return nil, nil, fmt.Errorf("%w: slot %d refers to name %d of %d", ErrDanglingRef, i, slot, len(names))
		}
		blocks[i] = world.Named(names[slot-1])
	}
	return names, blocks, nil
}

func splitNames(s string) []string {
	fields := splitList(s)
	for i, f := range fields {
		fields[i] = strings.Trim(f, `"`)
	}
	return fields
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	fields := strings.Split(s, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}
