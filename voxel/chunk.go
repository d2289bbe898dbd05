package voxel

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/oriumgames/ooze/block"
	"github.com/oriumgames/ooze/intarray"
)

// PackXZ packs chunk-local x,z (each 0-15) into one byte.
func PackXZ(x, z int) uint8 {
	return uint8((x&0xF)<<4 | (z & 0xF))
}

// BlockEntity is data attached to a single block position beyond what its
// BlockState carries (e.g. a chest's inventory). X/Y/Z are world-absolute,
// matching vanilla's own block entity NBT and letting a Level filter its
// bulk list down to one chunk's worth (floor(X/16), floor(Z/16)).
type BlockEntity struct {
	X, Y, Z int32
	ID      block.ResourceLocation
	Data    map[string]any
}

// Entity is a free-moving entity, addressed by its own world-absolute
// Position rather than any owning chunk.
type Entity struct {
	UUID     uuid.UUID
	ID       block.ResourceLocation
	Position [3]float32
	Rotation [2]float32
	Velocity [3]float32
	Data     map[string]any
}

// ScheduledTick is a pending block update captured from the original
// (Java) chunk's TileTicks list. Restored per SPEC_FULL.md §4.4 — the
// distilled spec dropped it, but a full chunk model carries it. Unlike
// entities and block entities, scheduled ticks stay genuinely per-chunk:
// the wire format has no bulk-list/filter requirement for them.
type ScheduledTick struct {
	PackedXZ uint8
	Y        int32
	Block    block.ResourceLocation
	Tick     int64
}

// Position unpacks the scheduled tick's chunk-local coordinates.
func (t ScheduledTick) Position() (x, y, z int) {
	return int(t.PackedXZ >> 4), int(t.Y), int(t.PackedXZ & 0xF)
}

// Chunk is a column of Sections sharing one chunk-wide block palette and
// one chunk-wide biome palette, plus its scheduled ticks and metadata.
// Sections are stored sparsely by altitude; a missing altitude is
// equivalent to an all-air section. Entities and block entities are not
// stored here — they live on the owning Level as bulk lists, filtered to
// a chunk by position (§3/§4.4).
type Chunk struct {
	X, Z int32

	// BlockPalette and BiomePalette are shared by every resident section
	// (§3's "chunk-wide palette"); SetSection merges a newly-inserted
	// section's own palette into these and upgrades its storage to match.
	BlockPalette *block.Palette
	BiomePalette *block.Palette

	sections map[int32]*Section

	// MinAltitude/MaxAltitude track the dynamic vertical bounds of
	// resident sections; they are meaningless (zero) until the first
	// SetSection call.
	MinAltitude, MaxAltitude int32
	hasSection               bool

	ScheduledTicks []ScheduledTick
	UserData       []byte
}

// NewChunk returns an empty chunk at column (x,z), with fresh block and
// biome palettes seeded at their respective domain defaults.
func NewChunk(x, z int32) *Chunk {
	return &Chunk{
		X:            x,
		Z:            z,
		sections:     make(map[int32]*Section),
		BlockPalette: block.NewPalette(),
		BiomePalette: block.NewPaletteWithDefault(block.DefaultBiomeState),
	}
}

// Section returns the section at the given altitude, or nil if absent.
func (c *Chunk) Section(altitude int32) *Section {
	return c.sections[altitude]
}

// SetSection inserts a section at the given altitude (§4.4 "Chunk
// insertion"). It fails on a nil section, a section whose storage isn't
// sized for one 16x16x16 volume, or a duplicate altitude. On success, the
// section's palettes are merged into the chunk's shared palettes, its
// storage is upgraded (as a Compact copy) to match, and the chunk's
// altitude bounds are extended to include altitude.
func (c *Chunk) SetSection(altitude int32, s *Section) error {
	if s == nil {
		return fmt.Errorf("voxel: cannot insert nil section into chunk (%d,%d) at altitude %d", c.X, c.Z, altitude)
	}
	if s.BlockData.Size() != CellCount || s.BiomeData.Size() != CellCount {
		return fmt.Errorf("voxel: section has wrong volume for chunk (%d,%d) at altitude %d", c.X, c.Z, altitude)
	}
	if _, dup := c.sections[altitude]; dup {
		return fmt.Errorf("voxel: chunk (%d,%d) already has a section at altitude %d", c.X, c.Z, altitude)
	}

	blockData := intarray.ToCompact(s.BlockData, s.BlockData.BitsPerEntry())
	biomeData := intarray.ToCompact(s.BiomeData, s.BiomeData.BitsPerEntry())

	if s.BlockPalette != c.BlockPalette {
		up := c.BlockPalette.AddAll(s.BlockPalette)
		blockData = upgradeArray(blockData, up, c.BlockPalette.Size())
	}
	if s.BiomePalette != c.BiomePalette {
		up := c.BiomePalette.AddAll(s.BiomePalette)
		biomeData = upgradeArray(biomeData, up, c.BiomePalette.Size())
	}

	c.sections[altitude] = &Section{
		BlockPalette: c.BlockPalette,
		BlockData:    blockData,
		BiomePalette: c.BiomePalette,
		BiomeData:    biomeData,
	}

	if !c.hasSection || altitude < c.MinAltitude {
		c.MinAltitude = altitude
	}
	if !c.hasSection || altitude > c.MaxAltitude {
		c.MaxAltitude = altitude
	}
	c.hasSection = true
	return nil
}

// upgradeArray rewrites arr's entries through up (falling back to id 0,
// the domain default, for any entry up doesn't know about) into a fresh
// Compact array sized for a palette of newPaletteSize entries.
func upgradeArray(arr intarray.Array, up *block.Upgrader, newPaletteSize int) intarray.Array {
	out := intarray.NewCompact(arr.Size(), intarray.BitsForCapacity(newPaletteSize))
	arr.ForEach(func(i int, v uint64) {
		newID, ok := up.Map(int(v))
		if !ok {
			newID = 0
		}
		_ = out.Set(i, uint64(newID))
	})
	return out
}

// Sections returns the chunk's populated altitudes, ascending.
func (c *Chunk) Sections() []int32 {
	alts := make([]int32, 0, len(c.sections))
	for a := range c.sections {
		alts = append(alts, a)
	}
	for i := 1; i < len(alts); i++ {
		for j := i; j > 0 && alts[j-1] > alts[j]; j-- {
			alts[j-1], alts[j] = alts[j], alts[j-1]
		}
	}
	return alts
}

// SectionCount returns the number of populated (non-deleted) altitudes.
func (c *Chunk) SectionCount() int {
	return len(c.sections)
}

// Block returns the block state at chunk-local (x,z in [0,16)) and
// world-relative altitude y, computing the owning section via floor(y/16)
// (the right shift is a floor division since 16 is a power of two). A
// missing section resolves to DefaultState rather than an error.
func (c *Chunk) Block(x, y, z int) (block.State, error) {
	altitude := int32(y >> 4)
	s := c.Section(altitude)
	if s == nil {
		return block.DefaultState, nil
	}
	return s.Block(x, y&15, z)
}

// SetBlock sets the block state at chunk-local (x,z in [0,16)) and
// world-relative altitude y, creating and inserting the owning section
// (bound to the chunk's shared palettes) if it doesn't exist yet.
func (c *Chunk) SetBlock(x, y, z int, st block.State) error {
	altitude := int32(y >> 4)
	s := c.Section(altitude)
	if s == nil {
		if err := c.SetSection(altitude, NewSection()); err != nil {
			return err
		}
		s = c.Section(altitude)
	}
	return s.SetBlock(x, y&15, z, st)
}
