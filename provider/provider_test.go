package provider

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
)

func TestNewCreatesDirectory(t *testing.T) {
	p, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Settings() == nil {
		t.Fatal("expected default settings")
	}
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	p, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := &world.Settings{Name: "test world", Spawn: cube.Pos{1, 2, 3}}
	p.SaveSettings(want)
	if got := p.Settings(); got != want {
		t.Fatalf("Settings() = %v, want %v", got, want)
	}
}

func TestPlayerSpawnPositionRoundTrip(t *testing.T) {
	p, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id := uuid.New()
	if _, ok, err := p.LoadPlayerSpawnPosition(id); err != nil || ok {
		t.Fatalf("expected no stored spawn, got ok=%v err=%v", ok, err)
	}
	want := cube.Pos{10, 64, -10}
	if err := p.SavePlayerSpawnPosition(id, want); err != nil {
		t.Fatalf("SavePlayerSpawnPosition: %v", err)
	}
	got, ok, err := p.LoadPlayerSpawnPosition(id)
	if err != nil || !ok {
		t.Fatalf("LoadPlayerSpawnPosition: got=%v ok=%v err=%v", got, ok, err)
	}
	if got != want {
		t.Errorf("LoadPlayerSpawnPosition = %v, want %v", got, want)
	}
}

func TestLoadColumnMissingChunkErrors(t *testing.T) {
	p, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.LoadColumn(world.ChunkPos{0, 0}, world.Overworld); err == nil {
		t.Fatal("expected error loading a chunk absent from an empty level")
	}
}

func TestSaveWithNoDirtyDimensionsIsNoop(t *testing.T) {
	p, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
