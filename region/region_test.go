package region

import (
	"bytes"
	"testing"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

func TestGetNibble(t *testing.T) {
	arr := []byte{0xBA, 0x73}
	if got := getNibble(arr, 0); got != 0x0A {
		t.Errorf("getNibble(0) = %x, want 0xA", got)
	}
	if got := getNibble(arr, 1); got != 0x0B {
		t.Errorf("getNibble(1) = %x, want 0xB", got)
	}
	if got := getNibble(arr, 2); got != 0x03 {
		t.Errorf("getNibble(2) = %x, want 0x3", got)
	}
	if got := getNibble(arr, 3); got != 0x07 {
		t.Errorf("getNibble(3) = %x, want 0x7", got)
	}
}

func TestLocalCoordsFromIndexRoundTrip(t *testing.T) {
	for i := 0; i < voxelCellCountForTest; i++ {
		x, y, z := localCoordsFromIndex(i)
		if x < 0 || x >= 16 || y < 0 || y >= 16 || z < 0 || z >= 16 {
			t.Fatalf("index %d produced out-of-range coords (%d,%d,%d)", i, x, y, z)
		}
		if got := (y*16+z)*16 + x; got != i {
			t.Fatalf("round trip failed at index %d: recomputed %d", i, got)
		}
	}
}

const voxelCellCountForTest = 16 * 16 * 16

func TestChunkToRegion(t *testing.T) {
	rx, rz, lx, lz := ChunkToRegion(33, -1)
	if rx != 1 || rz != -1 {
		t.Errorf("ChunkToRegion region = (%d,%d), want (1,-1)", rx, rz)
	}
	if lx != 1 || lz != 31 {
		t.Errorf("ChunkToRegion local = (%d,%d), want (1,31)", lx, lz)
	}
}

func TestDecodeChunkNBTLegacySection(t *testing.T) {
	blocks := make([]byte, 4096)
	data := make([]byte, 2048)
	blocks[0] = 1 // stone, per legacydata/legacy_blocks.json (id=1, key 16 = 1<<4|0)

	section := map[string]any{
		"Y":      byte(0),
		"Blocks": blocks,
		"Data":   data,
	}
	level := map[string]any{
		"xPos":     int32(0),
		"zPos":     int32(0),
		"Sections": []any{section},
	}
	root := map[string]any{
		"DataVersion": int32(99),
		"Level":       level,
	}

	var buf bytes.Buffer
	if err := nbt.NewEncoderWithEncoding(&buf, nbt.BigEndian).Encode(root); err != nil {
		t.Fatalf("encode test nbt: %v", err)
	}

	c, _, _, err := DecodeChunkNBT(buf.Bytes(), 0, 0)
	if err != nil {
		t.Fatalf("DecodeChunkNBT: %v", err)
	}
	if c == nil {
		t.Fatal("expected a decoded chunk")
	}
	st, err := c.Block(0, 0, 0)
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if st.Name.Path != "stone" {
		t.Errorf("Block(0,0,0) = %v, want stone", st)
	}
}

func TestDecodeChunkNBTMissingLevelIsAbsent(t *testing.T) {
	root := map[string]any{"DataVersion": int32(99)}
	var buf bytes.Buffer
	if err := nbt.NewEncoderWithEncoding(&buf, nbt.BigEndian).Encode(root); err != nil {
		t.Fatalf("encode test nbt: %v", err)
	}
	c, _, _, err := DecodeChunkNBT(buf.Bytes(), 0, 0)
	if err != nil {
		t.Fatalf("DecodeChunkNBT: %v", err)
	}
	if c != nil {
		t.Error("expected nil chunk when Level compound is missing")
	}
}
