package protocol

import (
	"strconv"
	"strings"

	"github.com/Eirikalv1/cc-websockets/internal/world"
)

// Encode writes the grid as a scan report.
func Encode(g *world.Grid) string {
	return EncodeBlocks(g.Blocks())
}

// EncodeBlocks writes blocks (in scan-index order) as a scan report. The
// dictionary lists identities in first-seen order, quoted but not escaped,
// since Parse only strips the quotes.
func EncodeBlocks(blocks []world.Block) string {
	var (
		names []string
		refs  = make(map[string]int)
		slots strings.Builder
	)
	for i, b := range blocks {
		if i > 0 {
			slots.WriteByte(',')
		}
		if b.IsAir() {
			slots.WriteByte('0')
			continue
		}
		id := b.Identity()
		ref, ok := refs[id]
		if !ok {
			names = append(names, `"`+id+`"`)
			ref = len(names)
			refs[id] = ref
		}
		slots.WriteString(strconv.Itoa(ref))
	}

	var sb strings.Builder
	sb.Grow(slots.Len() + 16*len(names) + 5)
	sb.WriteString("2[")
	sb.WriteString(strings.Join(names, ","))
	sb.WriteString(listBoundary)
	sb.WriteString(slots.String())
	sb.WriteByte(']')
	return sb.String()
}
