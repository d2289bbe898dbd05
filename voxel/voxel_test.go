package voxel

import (
	"testing"

	"github.com/oriumgames/ooze/block"
)

func stone() block.State {
	return block.NewState(block.ResourceLocation{Namespace: "minecraft", Path: "stone"}, nil)
}

func TestSectionEmptyByDefault(t *testing.T) {
	s := NewSection()
	if !s.IsEmpty() {
		t.Fatal("new section should be all-air")
	}
}

func TestSectionSetBlockMakesNonEmpty(t *testing.T) {
	s := NewSection()
	if err := s.SetBlock(1, 2, 3, stone()); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	if s.IsEmpty() {
		t.Fatal("expected section to be non-empty after SetBlock")
	}
	got, err := s.Block(1, 2, 3)
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if !got.Equal(stone()) {
		t.Errorf("Block(1,2,3) = %v, want stone", got)
	}
}

func TestSectionOutOfBounds(t *testing.T) {
	s := NewSection()
	if _, err := s.Block(16, 0, 0); err == nil {
		t.Error("expected out-of-bounds error")
	}
	if err := s.SetBlock(-1, 0, 0, stone()); err == nil {
		t.Error("expected out-of-bounds error")
	}
}

func TestChunkCreatesSectionLazily(t *testing.T) {
	c := NewChunk(0, 0)
	if c.Section(4) != nil {
		t.Fatal("expected no section before any write")
	}
	if err := c.SetBlock(0, 64, 0, stone()); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	if c.Section(4) == nil {
		t.Fatal("expected section to be created on first write")
	}
}

func TestLevelValidateDimensions(t *testing.T) {
	l := NewLevel(-4, 19)
	if err := l.ValidateDimensions(-4); err != nil {
		t.Errorf("min bound rejected: %v", err)
	}
	if err := l.ValidateDimensions(19); err != nil {
		t.Errorf("max bound rejected: %v", err)
	}
	if err := l.ValidateDimensions(20); err == nil {
		t.Error("expected error above max bound")
	}
	if err := l.ValidateDimensions(-5); err == nil {
		t.Error("expected error below min bound")
	}
}

func TestLevelDirtyTracking(t *testing.T) {
	l := NewLevel(0, 15)
	c := NewChunk(2, 3)
	if err := l.SetChunk(2, 3, c); err != nil {
		t.Fatalf("SetChunk: %v", err)
	}
	if !l.IsDirty(2, 3) {
		t.Error("expected chunk to be dirty after SetChunk")
	}
	l.ClearDirty()
	if l.IsDirty(2, 3) {
		t.Error("expected dirty set to be cleared")
	}
	if l.Chunk(2, 3) != c {
		t.Error("expected chunk to remain retrievable after clearing dirty set")
	}
}

func TestLevelReadOnlyRejectsSetChunk(t *testing.T) {
	l := NewLevel(0, 15)
	l.SetReadOnly(true)
	if err := l.SetChunk(0, 0, NewChunk(0, 0)); err == nil {
		t.Error("expected error setting chunk on read-only level")
	}
}
