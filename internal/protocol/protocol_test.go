package protocol

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eirikalv1/cc-websockets/internal/logging"
	"github.com/Eirikalv1/cc-websockets/internal/world"
)

func newGrid(t *testing.T, radius int) *world.Grid {
	t.Helper()
	v, err := world.NewVolume(radius)
	require.NoError(t, err)
	return world.NewGrid(v)
}

func slots(n int, set map[int]string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "0"
		if s, ok := set[i]; ok {
			parts[i] = s
		}
	}
	return strings.Join(parts, ",")
}

func TestParseAckAndFailure(t *testing.T) {
	r, err := Parse("0", 27)
	require.NoError(t, err)
	assert.Equal(t, KindAck, r.Kind)

	r, err = Parse("1No block to mine", 27)
	require.NoError(t, err)
	assert.Equal(t, KindFailure, r.Kind)
	assert.Equal(t, "No block to mine", r.Text)
}

func TestParseUnknownKind(t *testing.T) {
	for _, msg := range []string{"", "9", "hello"} {
		r, err := Parse(msg, 27)
		assert.ErrorIs(t, err, ErrUnknownKind, msg)
		assert.Equal(t, KindUnknown, r.Kind)
	}
}

func TestParseSingleVoxel(t *testing.T) {
	msg := `2["minecraft:stone"][` + slots(27, map[int]string{4: "1"}) + `]`
	r, err := Parse(msg, 27)
	require.NoError(t, err)
	assert.Equal(t, KindScan, r.Kind)
	assert.Equal(t, []string{"minecraft:stone"}, r.Names)
	require.Len(t, r.Blocks, 27)
	assert.Equal(t, 1, r.Occupied())
	assert.Equal(t, "minecraft:stone", r.Blocks[4].Identity())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want error
	}{
		{"no boundary", `2["a"]` + slots(27, nil), ErrMissingBrackets},
		{"no leading bracket", `2"a"][` + slots(27, nil) + `]`, ErrMissingBrackets},
		{"no trailing bracket", `2["a"][` + slots(27, nil), ErrMissingBrackets},
		{"short", `2["a"][` + slots(26, nil) + `]`, ErrSlotCount},
		{"long", `2["a"][` + slots(28, nil) + `]`, ErrSlotCount},
		{"empty slots", `2["a"][]`, ErrSlotCount},
		{"non numeric", `2["a"][` + slots(27, map[int]string{3: "x"}) + `]`, ErrBadSlot},
		{"negative", `2["a"][` + slots(27, map[int]string{3: "-1"}) + `]`, ErrBadSlot},
		{"dangling", `2["a"][` + slots(27, map[int]string{3: "2"}) + `]`, ErrDanglingRef},
		{"dangling empty dict", `2[][` + slots(27, map[int]string{0: "1"}) + `]`, ErrDanglingRef},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.msg, 27)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, KindScan, r.Kind)
			assert.Nil(t, r.Blocks)
		})
	}
}

func TestParseMismatchDetail(t *testing.T) {
	_, err := Parse(`2[][`+slots(26, nil)+`]`, 27)
	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 27, mismatch.Want)
	assert.Equal(t, 26, mismatch.Got)
}

func TestParseToleratesSpaces(t *testing.T) {
	msg := `2[ "a" , "b" ][ ` + strings.ReplaceAll(slots(27, map[int]string{0: "2", 26: "1"}), ",", ", ") + ` ]`
	r, err := Parse(msg, 27)
	require.NoError(t, err)
	assert.Equal(t, "b", r.Blocks[0].Identity())
	assert.Equal(t, "a", r.Blocks[26].Identity())
}

func TestParseAirNamesCollapse(t *testing.T) {
	r, err := Parse(`2["minecraft:air"][`+slots(27, map[int]string{5: "1"})+`]`, 27)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Occupied())
}

func TestDecoderAppliesScan(t *testing.T) {
	g := newGrid(t, 1)
	d := NewDecoder(g, nil)

	r, err := d.Handle(`2["minecraft:stone"][0,0,0,0,1,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0]`)
	require.NoError(t, err)
	assert.Equal(t, KindScan, r.Kind)
	assert.Equal(t, 1, g.OccupiedCount())
	v, ok := g.Get(world.Coord{X: 1, Y: 1, Z: 0})
	require.True(t, ok)
	assert.Equal(t, "minecraft:stone", v.Block.Identity())
	assert.Equal(t, world.IdentityColor("minecraft:stone"), v.Color)
	assert.Equal(t, uint64(1), g.Version())
}

func TestDecoderRejectsBadScanAtomically(t *testing.T) {
	g := newGrid(t, 1)
	d := NewDecoder(g, nil)
	_, err := d.Handle(`2["a"][` + slots(27, map[int]string{0: "1"}) + `]`)
	require.NoError(t, err)
	before := g.Blocks()

	_, err = d.Handle(`2["a"][` + slots(27, map[int]string{1: "1", 2: "7"}) + `]`)
	assert.ErrorIs(t, err, ErrDanglingRef)
	assert.Equal(t, before, g.Blocks())
	assert.Equal(t, uint64(1), g.Version())
	assert.NoError(t, d.Err())
}

func TestDecoderMismatchPoisonsSession(t *testing.T) {
	var buf bytes.Buffer
	g := newGrid(t, 1)
	d := NewDecoder(g, logging.New(&buf, "", logging.DEBUG))

	_, err := d.Handle(`2["a","b"][` + slots(27, map[int]string{3: "1", 20: "2"}) + `]`)
	require.NoError(t, err)
	before, version := g.Blocks(), g.Version()

	// W³-1 slots.
	_, err = d.Handle(`2["a"][` + slots(26, map[int]string{0: "1"}) + `]`)
	require.ErrorIs(t, err, ErrSlotCount)
	require.Error(t, d.Err())
	assert.Equal(t, before, g.Blocks())
	assert.Equal(t, version, g.Version())
	assert.Contains(t, buf.String(), "[ERROR]")

	good := `2["a"][` + slots(27, map[int]string{0: "1"}) + `]`
	_, err = d.Handle(good)
	assert.ErrorIs(t, err, ErrSessionMismatch)
	assert.ErrorIs(t, err, ErrSlotCount)
	assert.Equal(t, before, g.Blocks())
	assert.Equal(t, version, g.Version())

	r, err := d.Handle("0")
	assert.NoError(t, err)
	assert.Equal(t, KindAck, r.Kind)

	d.Reset()
	_, err = d.Handle(good)
	require.NoError(t, err)
	assert.Equal(t, 1, g.OccupiedCount())
}

func TestDecoderFailureLeavesGrid(t *testing.T) {
	var buf bytes.Buffer
	g := newGrid(t, 1)
	d := NewDecoder(g, logging.New(&buf, "", logging.INFO))
	r, err := d.Handle("1Movement obstructed")
	require.NoError(t, err)
	assert.Equal(t, KindFailure, r.Kind)
	assert.Equal(t, uint64(0), g.Version())
	assert.Contains(t, buf.String(), "Movement obstructed")
}

func TestEncodeRoundTrip(t *testing.T) {
	g := newGrid(t, 2)
	g.Set(world.Coord{X: 0, Y: 0, Z: 0}, world.Named("minecraft:dirt"))
	g.Set(world.Coord{X: 2, Y: 2, Z: 2}, world.Named("minecraft:stone"))
	g.Set(world.Coord{X: 4, Y: 1, Z: 3}, world.Named("minecraft:dirt"))

	msg := Encode(g)
	assert.True(t, strings.HasPrefix(msg, `2["minecraft:dirt","minecraft:stone"][`), msg)

	other := newGrid(t, 2)
	_, err := NewDecoder(other, nil).Handle(msg)
	require.NoError(t, err)
	assert.Equal(t, g.Blocks(), other.Blocks())
}

func TestEncodeRoundTripKeepsIdentityVerbatim(t *testing.T) {
	for _, id := range []string{`mod:weird\name`, "mod:tab\there", "mod:ünïcode"} {
		blocks := make([]world.Block, 27)
		blocks[4] = world.Named(id)

		msg := EncodeBlocks(blocks)
		r, err := Parse(msg, 27)
		require.NoError(t, err, msg)
		assert.Equal(t, []string{id}, r.Names, msg)
		assert.Equal(t, id, r.Blocks[4].Identity())
	}
}

func TestEncodeAllAir(t *testing.T) {
	msg := EncodeBlocks(make([]world.Block, 27))
	assert.Equal(t, "2[]["+slots(27, nil)+"]", msg)
	r, err := Parse(msg, 27)
	require.NoError(t, err)
	assert.Empty(t, r.Names)
	assert.Equal(t, 0, r.Occupied())
}

func TestReason(t *testing.T) {
	assert.Equal(t, "ok", Reason(nil))
	assert.Equal(t, "slot_count", Reason(&MismatchError{Want: 27, Got: 1}))
	assert.Equal(t, "dangling_ref", Reason(ErrDanglingRef))
	assert.Equal(t, "other", Reason(errors.New("x")))
}

func BenchmarkParseRadius8(b *testing.B) {
	v, _ := world.NewVolume(8)
	blocks := make([]world.Block, v.Size())
	for i := range blocks {
		if i%3 == 0 {
			blocks[i] = world.Named("minecraft:stone")
		}
	}
	msg := EncodeBlocks(blocks)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(msg, v.Size()); err != nil {
			b.Fatal(err)
		}
	}
}
