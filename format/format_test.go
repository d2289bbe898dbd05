package format

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/oriumgames/ooze/block"
	"github.com/oriumgames/ooze/voxel"
)

func TestVarIntRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 300, 16384, 1 << 20, ^uint32(0)}
	for _, v := range values {
		var buf bytes.Buffer
		writeVarInt(&buf, v)
		got, err := readVarInt(&buf)
		if err != nil {
			t.Fatalf("readVarInt(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d -> %d", v, got)
		}
		if buf.Len() > 5 {
			t.Errorf("varint for %d used more than 5 bytes", v)
		}
	}
}

func TestBitSetRoundTrip(t *testing.T) {
	b := NewBitSet(20)
	b.Set(0, true)
	b.Set(19, true)
	b.Set(5, true)
	buf := newBuffer()
	buf.WriteBitSet(b)
	r := newReader(bytes.NewReader(buf.Bytes()))
	got, err := r.ReadBitSet()
	if err != nil {
		t.Fatalf("ReadBitSet: %v", err)
	}
	for i := 0; i < 20; i++ {
		want := i == 0 || i == 19 || i == 5
		if got.Get(i) != want {
			t.Errorf("bit %d = %v, want %v", i, got.Get(i), want)
		}
	}
}

func buildSampleLevel(t *testing.T) *voxel.Level {
	t.Helper()
	l := voxel.NewLevel(-4, 19)
	c := voxel.NewChunk(0, 0)
	stone := block.NewState(block.ResourceLocation{Namespace: "minecraft", Path: "stone"}, nil)
	// altitude 5, local y 0 -> world y 80
	if err := c.SetBlock(3, 80, 4, stone); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	c.ScheduledTicks = []voxel.ScheduledTick{{
		PackedXZ: voxel.PackXZ(1, 1),
		Y:        10,
		Block:    block.ResourceLocation{Namespace: "minecraft", Path: "water"},
		Tick:     100,
	}}
	if err := l.SetChunk(0, 0, c); err != nil {
		t.Fatalf("SetChunk: %v", err)
	}
	l.SetBlockEntities(0, 0, []voxel.BlockEntity{{
		X:    3,
		Y:    4,
		Z:    5,
		ID:   block.ResourceLocation{Namespace: "minecraft", Path: "chest"},
		Data: map[string]any{"Lock": "secret"},
	}})
	l.SetEntities(0, 0, []voxel.Entity{{
		UUID:     uuid.New(),
		ID:       block.ResourceLocation{Namespace: "minecraft", Path: "zombie"},
		Position: [3]float32{1, 2, 3},
		Data:     map[string]any{},
	}})
	return l
}

func TestWriteReadRoundTrip(t *testing.T) {
	l := buildSampleLevel(t)
	var buf bytes.Buffer
	if err := Write(&buf, l); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf, -4, 19)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	c := got.Chunk(0, 0)
	if c == nil {
		t.Fatal("expected chunk (0,0) to round-trip")
	}
	state, err := c.Block(3, 80, 4)
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if state.Name.Path != "stone" {
		t.Errorf("Block = %v, want stone", state)
	}
	blockEntities := got.BlockEntitiesIn(0, 0)
	if len(blockEntities) != 1 || blockEntities[0].ID.Path != "chest" {
		t.Errorf("block entities did not round-trip: %+v", blockEntities)
	}
	entities := got.EntitiesIn(0, 0)
	if len(entities) != 1 || entities[0].ID.Path != "zombie" {
		t.Errorf("entities did not round-trip: %+v", entities)
	}
	if len(c.ScheduledTicks) != 1 || c.ScheduledTicks[0].Block.Path != "water" {
		t.Errorf("scheduled ticks did not round-trip: %+v", c.ScheduledTicks)
	}
}

// TestWriteReadEmptyLevel covers spec.md §8 boundary scenario 1: an empty
// level still produces a well-formed header, zero-chunk bitset, and two
// empty NBT lists.
func TestWriteReadEmptyLevel(t *testing.T) {
	l := voxel.NewLevel(-4, 19)
	var buf bytes.Buffer
	if err := Write(&buf, l); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(bytes.NewReader(buf.Bytes()), -4, 19)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.ChunkCount() != 0 {
		t.Errorf("expected zero chunks, got %d", got.ChunkCount())
	}
}

// TestHeaderBytesMatchSpec asserts the exact header byte sequence (§4.5,
// §8 boundary scenario 1): magic 61 0B B1 0B big-endian, then a single
// 0x00 VarInt byte for format version 0.
func TestHeaderBytesMatchSpec(t *testing.T) {
	l := voxel.NewLevel(0, 15)
	var buf bytes.Buffer
	if err := Write(&buf, l); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := []byte{0x61, 0x0B, 0xB1, 0x0B, 0x00}
	got := buf.Bytes()
	if len(got) < len(want) {
		t.Fatalf("encoded level shorter than header: %d bytes", len(got))
	}
	if !bytes.Equal(got[:len(want)], want) {
		t.Errorf("header bytes = % X, want % X", got[:len(want)], want)
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{0, 0, 0, 0}), 0, 15)
	if err == nil {
		t.Fatal("expected error for bad magic number")
	}
}

func TestReadRejectsFutureVersion(t *testing.T) {
	var buf bytes.Buffer
	b := newBuffer()
	b.WriteUInt32BE(MagicNumber)
	b.WriteVarInt(FormatVersion + 1)
	buf.Write(b.Bytes())
	_, err := Read(&buf, 0, 15)
	if err == nil {
		t.Fatal("expected error for a version newer than this codec supports")
	}
}
