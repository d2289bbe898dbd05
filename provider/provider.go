// Package provider adapts a voxel.Level (read through format-encoded
// .ooze files) to Dragonfly's world.Provider interface, so an Ooze level
// can back a live server world.
//
// Grounded on oriumgames-pile/provider.go's Provider (per-dimension world
// files, mutex-guarded state, player spawn tracking) and
// oriumgames-pile/converter.go's chunkToColumn/columnToChunk bridging to
// github.com/df-mc/dragonfly/server/world/chunk.
package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/chunk"
	"github.com/google/uuid"
	"github.com/oriumgames/ooze/format"
	"github.com/oriumgames/ooze/voxel"
)

// Provider implements world.Provider backed by one .ooze file per
// dimension, matching the teacher's overworld.pile/nether.pile/end.pile
// layout.
type Provider struct {
	mu  sync.RWMutex
	dir string
	opts format.EncodeOptions

	levels map[world.Dimension]*voxel.Level
	dirty  map[world.Dimension]bool

	settings     *world.Settings
	playerSpawns map[uuid.UUID]cube.Pos
}

// New opens (or creates) a Provider rooted at dir.
func New(dir string) (*Provider, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("provider: create directory %s: %w", dir, err)
	}
	p := &Provider{
		dir:          dir,
		opts:         format.DefaultEncodeOptions(),
		levels:       make(map[world.Dimension]*voxel.Level),
		dirty:        make(map[world.Dimension]bool),
		settings:     &world.Settings{Name: filepath.Base(dir)},
		playerSpawns: make(map[uuid.UUID]cube.Pos),
	}
	return p, nil
}

func dimensionFileName(dim world.Dimension) string {
	switch dim {
	case world.Nether:
		return "nether.ooze"
	case world.End:
		return "end.ooze"
	default:
		return "overworld.ooze"
	}
}

func (p *Provider) levelFor(dim world.Dimension) (*voxel.Level, error) {
	if l, ok := p.levels[dim]; ok {
		return l, nil
	}
	r := dim.Range()
	minSection, maxSection := int32(r.Min()>>4), int32(r.Max()>>4)
	path := filepath.Join(p.dir, dimensionFileName(dim))
	if _, err := os.Stat(path); err == nil {
		l, err := format.ReadFile(path, minSection, maxSection)
		if err != nil {
			return nil, fmt.Errorf("provider: load %s: %w", path, err)
		}
		p.levels[dim] = l
		return l, nil
	}
	l := voxel.NewLevel(minSection, maxSection)
	p.levels[dim] = l
	return l, nil
}

// Settings returns the provider's world settings.
func (p *Provider) Settings() *world.Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// SaveSettings replaces the provider's world settings.
func (p *Provider) SaveSettings(s *world.Settings) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings = s
}

// LoadColumn returns the chunk.Column for pos in dimension dim.
func (p *Provider) LoadColumn(pos world.ChunkPos, dim world.Dimension) (*chunk.Column, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, err := p.levelFor(dim)
	if err != nil {
		return nil, err
	}
	x, z := int32(pos[0]), int32(pos[1])
	c := l.Chunk(x, z)
	if c == nil {
		return nil, fmt.Errorf("provider: %w", world.ErrChunkNotExist)
	}
	return chunkToColumn(c, l.EntitiesIn(x, z), l.BlockEntitiesIn(x, z), dim.Range())
}

// StoreColumn writes col into the level backing dim at pos.
func (p *Provider) StoreColumn(pos world.ChunkPos, dim world.Dimension, col *chunk.Column) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, err := p.levelFor(dim)
	if err != nil {
		return err
	}
	x, z := int32(pos[0]), int32(pos[1])
	c, entities, blockEntities, err := columnToChunk(col, x, z, dim.Range())
	if err != nil {
		return err
	}
	if err := l.SetChunk(x, z, c); err != nil {
		return err
	}
	l.SetEntities(x, z, entities)
	l.SetBlockEntities(x, z, blockEntities)
	p.dirty[dim] = true
	return nil
}

// LoadPlayerSpawnPosition returns the stored spawn position for id.
func (p *Provider) LoadPlayerSpawnPosition(id uuid.UUID) (cube.Pos, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pos, ok := p.playerSpawns[id]
	return pos, ok, nil
}

// SavePlayerSpawnPosition stores pos as id's spawn position.
func (p *Provider) SavePlayerSpawnPosition(id uuid.UUID, pos cube.Pos) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playerSpawns[id] = pos
	return nil
}

// Save writes every dirty dimension's level to disk.
func (p *Provider) Save() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for dim, l := range p.levels {
		if !p.dirty[dim] {
			continue
		}
		path := filepath.Join(p.dir, dimensionFileName(dim))
		if err := format.WriteFile(path, l, p.opts); err != nil {
			return fmt.Errorf("provider: save %s: %w", path, err)
		}
		p.dirty[dim] = false
	}
	return nil
}

// Close saves every dirty dimension, exactly as Save does; loaded levels
// stay in memory.
func (p *Provider) Close() error {
	return p.Save()
}
