// Package voxel implements the in-memory voxel model: Section, Chunk and
// Level, palette-backed and addressable by local or world coordinates.
//
// Grounded on oriumgames-pile/format/format.go's World/Chunk/Section
// types, renamed to this spec's vocabulary (World -> Level).
package voxel

import (
	"fmt"

	"github.com/oriumgames/ooze/block"
	"github.com/oriumgames/ooze/intarray"
)

// SectionSize is the edge length, in blocks, of a cubic section (16x16x16,
// vanilla's sub-chunk size).
const SectionSize = 16

// CellCount is the number of block/biome cells in a section.
const CellCount = SectionSize * SectionSize * SectionSize

// Section is one 16x16x16 cube of blocks plus its biome storage. Altitude
// (the section's Y slot within a Chunk) is tracked by the owning Chunk,
// not here.
type Section struct {
	BlockPalette *block.Palette
	BlockData    intarray.Array
	BiomePalette *block.Palette
	BiomeData    intarray.Array

	emptyCached bool
	emptyValid  bool
}

// NewSection returns a section whose every cell is air, its own
// independent block/biome palette holding only the domain default
// (DefaultState/DefaultBiomeState) at id 0. Chunk.SetSection stores a new
// Section bound to the chunk's shared palettes; the section passed to it
// keeps its own palettes and storage.
func NewSection() *Section {
	bp := block.NewPalette()
	biomeP := block.NewPaletteWithDefault(block.DefaultBiomeState)

	s := &Section{BlockPalette: bp, BiomePalette: biomeP}
	s.BlockData = intarray.NewWorded(CellCount, intarray.WordedBitsForCapacity(bp.Size()))
	s.BiomeData = intarray.NewWorded(CellCount, intarray.WordedBitsForCapacity(biomeP.Size()))
	return s
}

func cellIndex(x, y, z int) int {
	return (y*SectionSize+z)*SectionSize + x
}

func checkLocal(x, y, z int) error {
	if x < 0 || x >= SectionSize || y < 0 || y >= SectionSize || z < 0 || z >= SectionSize {
		return fmt.Errorf("voxel: local coordinate (%d,%d,%d) out of [0,%d)", x, y, z, SectionSize)
	}
	return nil
}

// Block returns the block state at local coordinates (x,y,z).
func (s *Section) Block(x, y, z int) (block.State, error) {
	if err := checkLocal(x, y, z); err != nil {
		return block.State{}, err
	}
	id, err := s.BlockData.Get(cellIndex(x, y, z))
	if err != nil {
		return block.State{}, err
	}
	return s.BlockPalette.Get(int(id))
}

// SetBlock sets the block state at local coordinates (x,y,z), growing the
// palette (and, if needed, the backing array's bit width) as required.
func (s *Section) SetBlock(x, y, z int, st block.State) error {
	if err := checkLocal(x, y, z); err != nil {
		return err
	}
	id := s.BlockPalette.Add(st)
	if err := s.ensureCapacity(&s.BlockData, s.BlockPalette); err != nil {
		return err
	}
	s.emptyValid = false
	return s.BlockData.Set(cellIndex(x, y, z), uint64(id))
}

// Biome returns the biome state at local coordinates (x,y,z).
func (s *Section) Biome(x, y, z int) (block.State, error) {
	if err := checkLocal(x, y, z); err != nil {
		return block.State{}, err
	}
	id, err := s.BiomeData.Get(cellIndex(x, y, z))
	if err != nil {
		return block.State{}, err
	}
	return s.BiomePalette.Get(int(id))
}

// SetBiome sets the biome at local coordinates (x,y,z).
func (s *Section) SetBiome(x, y, z int, st block.State) error {
	if err := checkLocal(x, y, z); err != nil {
		return err
	}
	id := s.BiomePalette.Add(st)
	if err := s.ensureCapacity(&s.BiomeData, s.BiomePalette); err != nil {
		return err
	}
	return s.BiomeData.Set(cellIndex(x, y, z), uint64(id))
}

func (s *Section) ensureCapacity(arr *intarray.Array, p *block.Palette) error {
	var needed int
	if _, worded := (*arr).(*intarray.Worded); worded {
		needed = intarray.WordedBitsForCapacity(p.Size())
	} else {
		needed = intarray.BitsForCapacity(p.Size())
	}
	if needed <= (*arr).BitsPerEntry() {
		return nil
	}
	grown, err := (*arr).Resize(needed)
	if err != nil {
		return err
	}
	*arr = grown
	return nil
}

// IsEmpty reports whether every cell in the section resolves to air. The
// result is cached and invalidated on the next SetBlock.
func (s *Section) IsEmpty() bool {
	if s.emptyValid {
		return s.emptyCached
	}
	empty := true
	s.BlockData.ForEach(func(_ int, v uint64) {
		if !empty {
			return
		}
		st, err := s.BlockPalette.Get(int(v))
		if err != nil || !st.IsAir() {
			empty = false
		}
	})
	s.emptyCached = empty
	s.emptyValid = true
	return empty
}
