package voxel

import (
	"fmt"
	"math"
)

// Level is a collection of Chunks addressed by chunk coordinate, plus
// dirty-tracking for incremental save, grounded on
// oriumgames-pile/format/format.go's World type (renamed per spec.md's
// vocabulary).
type Level struct {
	Version    int32
	MinSection int32
	MaxSection int32
	// CustomData is an opaque NBT compound carried alongside the level for
	// forward-compatible extension data (§4.5's "custom" field).
	CustomData map[string]any

	// Entities and BlockEntities are level-wide bulk lists (§3/§4.4):
	// each element belongs to exactly one chunk, determined by position
	// rather than by any stored reference, and EntitiesIn/BlockEntitiesIn/
	// SetEntities/SetBlockEntities are the position-based view onto them.
	Entities      []Entity
	BlockEntities []BlockEntity

	// LowX/HighX/LowZ/HighZ track the inclusive chunk-coordinate bounds of
	// every chunk ever accepted by SetChunk (§3).
	LowX, HighX, LowZ, HighZ int32
	hasChunk                 bool

	chunks      map[int64]*Chunk
	dirtyChunks map[int64]bool
	readOnly    bool
}

// NewLevel returns an empty level. minSection/maxSection bound the valid
// section altitude range (inclusive) that ValidateDimensions enforces.
func NewLevel(minSection, maxSection int32) *Level {
	return &Level{
		MinSection:  minSection,
		MaxSection:  maxSection,
		chunks:      make(map[int64]*Chunk),
		dirtyChunks: make(map[int64]bool),
	}
}

func chunkKey(x, z int32) int64 {
	return int64(uint64(uint32(x))<<32 | uint64(uint32(z)))
}

// ValidateDimensions reports an error if altitude is outside
// [MinSection, MaxSection].
func (l *Level) ValidateDimensions(altitude int32) error {
	if altitude < l.MinSection || altitude > l.MaxSection {
		return fmt.Errorf("voxel: altitude %d outside level bounds [%d,%d]", altitude, l.MinSection, l.MaxSection)
	}
	return nil
}

// SetReadOnly toggles whether SetChunk is permitted.
func (l *Level) SetReadOnly(ro bool) { l.readOnly = ro }

// IsReadOnly reports the current read-only flag.
func (l *Level) IsReadOnly() bool { return l.readOnly }

// Chunk returns the chunk at (x,z), or nil if absent.
func (l *Level) Chunk(x, z int32) *Chunk {
	return l.chunks[chunkKey(x, z)]
}

// SetChunk inserts or replaces the chunk at (x,z) and marks it dirty
// (§4.4 "Level insertion"). It fails if the level is read-only, c is nil,
// (x,z) doesn't fit in signed 16 bits, or accepting (x,z) would widen the
// level's tracked bounds past 65,535 chunks on either axis.
func (l *Level) SetChunk(x, z int32, c *Chunk) error {
	if l.readOnly {
		return fmt.Errorf("voxel: level is read-only")
	}
	if c == nil {
		return fmt.Errorf("voxel: cannot insert nil chunk into level")
	}
	if x < math.MinInt16 || x > math.MaxInt16 || z < math.MinInt16 || z > math.MaxInt16 {
		return fmt.Errorf("voxel: chunk (%d,%d) coordinates do not fit in signed 16 bits", x, z)
	}

	newLowX, newHighX, newLowZ, newHighZ := x, x, z, z
	if l.hasChunk {
		if l.LowX < newLowX {
			newLowX = l.LowX
		}
		if l.HighX > newHighX {
			newHighX = l.HighX
		}
		if l.LowZ < newLowZ {
			newLowZ = l.LowZ
		}
		if l.HighZ > newHighZ {
			newHighZ = l.HighZ
		}
	}
	if int64(newHighX)-int64(newLowX)+1 > 65535 {
		return fmt.Errorf("voxel: chunk (%d,%d) would widen the level beyond 65535 chunks on the x axis", x, z)
	}
	if int64(newHighZ)-int64(newLowZ)+1 > 65535 {
		return fmt.Errorf("voxel: chunk (%d,%d) would widen the level beyond 65535 chunks on the z axis", x, z)
	}

	l.LowX, l.HighX, l.LowZ, l.HighZ = newLowX, newHighX, newLowZ, newHighZ
	l.hasChunk = true
	l.setChunk(x, z, c)
	return nil
}

func (l *Level) setChunk(x, z int32, c *Chunk) {
	key := chunkKey(x, z)
	l.chunks[key] = c
	l.dirtyChunks[key] = true
}

// Chunks returns every chunk currently in the level, in no particular
// order.
func (l *Level) Chunks() []*Chunk {
	out := make([]*Chunk, 0, len(l.chunks))
	for _, c := range l.chunks {
		out = append(out, c)
	}
	return out
}

// DirtyChunks returns the chunks marked dirty since the last ClearDirty.
func (l *Level) DirtyChunks() []*Chunk {
	out := make([]*Chunk, 0, len(l.dirtyChunks))
	for key := range l.dirtyChunks {
		if c, ok := l.chunks[key]; ok {
			out = append(out, c)
		}
	}
	return out
}

// ClearDirty resets the dirty set.
func (l *Level) ClearDirty() {
	l.dirtyChunks = make(map[int64]bool)
}

// IsDirty reports whether the chunk at (x,z) is marked dirty.
func (l *Level) IsDirty(x, z int32) bool {
	return l.dirtyChunks[chunkKey(x, z)]
}

// ChunkCount returns the number of chunks in the level.
func (l *Level) ChunkCount() int {
	return len(l.chunks)
}

func entityChunk(e Entity) (x, z int32) {
	return int32(math.Floor(float64(e.Position[0]) / SectionSize)), int32(math.Floor(float64(e.Position[2]) / SectionSize))
}

func blockEntityChunk(be BlockEntity) (x, z int32) {
	return be.X >> 4, be.Z >> 4
}

// EntitiesIn returns the subset of l.Entities whose position falls within
// chunk (x,z) (§4.4's per-chunk entity filter: floor(Pos[0]/16),
// floor(Pos[2]/16)).
func (l *Level) EntitiesIn(x, z int32) []Entity {
	var out []Entity
	for _, e := range l.Entities {
		ex, ez := entityChunk(e)
		if ex == x && ez == z {
			out = append(out, e)
		}
	}
	return out
}

// SetEntities replaces every entity belonging to chunk (x,z) with list:
// it removes all elements of l.Entities that currently belong to (x,z),
// then appends list (§4.4 "set_entities").
func (l *Level) SetEntities(x, z int32, list []Entity) {
	kept := make([]Entity, 0, len(l.Entities))
	for _, e := range l.Entities {
		ex, ez := entityChunk(e)
		if ex == x && ez == z {
			continue
		}
		kept = append(kept, e)
	}
	l.Entities = append(kept, list...)
}

// BlockEntitiesIn returns the subset of l.BlockEntities belonging to
// chunk (x,z), via their absolute X/Z fields.
func (l *Level) BlockEntitiesIn(x, z int32) []BlockEntity {
	var out []BlockEntity
	for _, be := range l.BlockEntities {
		bx, bz := blockEntityChunk(be)
		if bx == x && bz == z {
			out = append(out, be)
		}
	}
	return out
}

// SetBlockEntities replaces every block entity belonging to chunk (x,z)
// with list, the block-entity counterpart of SetEntities.
func (l *Level) SetBlockEntities(x, z int32, list []BlockEntity) {
	kept := make([]BlockEntity, 0, len(l.BlockEntities))
	for _, be := range l.BlockEntities {
		bx, bz := blockEntityChunk(be)
		if bx == x && bz == z {
			continue
		}
		kept = append(kept, be)
	}
	l.BlockEntities = append(kept, list...)
}
