package format

import (
	"bytes"
	"fmt"

	"github.com/sandertv/gophertunnel/minecraft/nbt"

	"github.com/oriumgames/ooze/block"
	"github.com/oriumgames/ooze/intarray"
	"github.com/oriumgames/ooze/voxel"
)

// encodePalette writes a palette as VarInt(size) followed by each entry's
// packed-length byte L (low bit has_properties, upper 7 bits the UTF-8
// byte length of the entry's bare "namespace:path" name), the raw ASCII
// name bytes, and - only when has_properties is set - an unnamed
// uncompressed NBT compound holding the properties (§4.2).
func encodePalette(buf *buffer, p *block.Palette) error {
	buf.WriteVarInt(uint32(p.Size()))
	for _, s := range p.States() {
		name := s.Name.String()
		if len(name) > 127 {
			return fmt.Errorf("format: palette entry name %q longer than 127 bytes", name)
		}
		hasProperties := len(s.Properties) > 0
		l := byte(len(name)) << 1
		if hasProperties {
			l |= 1
		}
		buf.WriteUInt8(l)
		buf.Buffer.WriteString(name)
		if hasProperties {
			var raw bytes.Buffer
			if err := nbt.NewEncoderWithEncoding(&raw, nbt.BigEndian).Encode(s.Properties); err != nil {
				return fmt.Errorf("format: encode palette entry %q properties: %w", name, err)
			}
			buf.Buffer.Write(raw.Bytes())
		}
	}
	return nil
}

func decodePalette(r *reader) (*block.Palette, error) {
	size, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("format: read palette size: %w", err)
	}
	// Entry 0 on the wire is the palette's default state, so it seeds the
	// decoded palette and every wire index keeps its id.
	var p *block.Palette
	for i := uint32(0); i < size; i++ {
		l, err := r.ReadUInt8()
		if err != nil {
			return nil, fmt.Errorf("format: read palette entry %d length byte: %w", i, err)
		}
		hasProperties := l&1 != 0
		nameLen := int(l >> 1)
		nameBytes, err := r.readN(nameLen)
		if err != nil {
			return nil, fmt.Errorf("format: read palette entry %d name: %w", i, err)
		}
		name, err := block.ParseResourceLocation(string(nameBytes))
		if err != nil {
			return nil, fmt.Errorf("format: parse palette entry %d name %q: %w", i, nameBytes, err)
		}
		var properties map[string]string
		if hasProperties {
			var raw map[string]any
			if err := nbt.NewDecoderWithEncoding(r.r, nbt.BigEndian).Decode(&raw); err != nil {
				return nil, fmt.Errorf("format: decode palette entry %d properties: %w", i, err)
			}
			properties = make(map[string]string, len(raw))
			for k, v := range raw {
				s, ok := v.(string)
				if !ok {
					return nil, fmt.Errorf("format: palette entry %d property %q is not a string (%T)", i, k, v)
				}
				properties[k] = s
			}
		}
		st := block.NewState(name, properties)
		if p == nil {
			p = block.NewPaletteWithDefault(st)
		} else {
			p.Add(st)
		}
	}
	if p == nil {
		p = block.NewPalette()
	}
	return p, nil
}

// encodeCompactBlob writes one compact_int_array_blob (§4.5):
// VarInt(size), VarInt(max_value) where max_value is paletteSize-1
// exactly as spec.md names it (not the array's own, possibly wider,
// MaxValue - BitsForCapacity can round bits up past what paletteSize-1
// strictly needs), then VarInt(word count) and the packed uint64 words,
// each little-endian.
func encodeCompactBlob(buf *buffer, arr intarray.Array, paletteSize int) {
	compact := intarray.ToCompact(arr, intarray.BitsForCapacity(paletteSize))
	buf.WriteVarInt(uint32(compact.Size()))
	buf.WriteVarInt(uint32(paletteSize - 1))
	words := compact.Data()
	buf.WriteVarInt(uint32(len(words)))
	for _, w := range words {
		buf.WriteUInt64(w)
	}
}

func decodeCompactBlob(r *reader) (intarray.Array, error) {
	size, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("format: read compact array size: %w", err)
	}
	maxValue, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("format: read compact array max value: %w", err)
	}
	bits := intarray.BitsForCapacity(int(maxValue) + 1)
	wordCount, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("format: read compact array word count: %w", err)
	}
	words := make([]uint64, wordCount)
	for i := range words {
		words[i], err = r.ReadUInt64()
		if err != nil {
			return nil, fmt.Errorf("format: read compact array word %d: %w", i, err)
		}
	}
	return intarray.CompactFromData(words, int(size), bits), nil
}

// encodeSectionArrays writes a non-empty section's bare block and biome
// compact_int_array_blobs. The section's palettes are not written here:
// they were already emitted once, chunk-wide, by encodePalette (§4.4's
// chunk-wide palette requirement - unlike the teacher's per-section
// palette, which this format replaces).
func encodeSectionArrays(buf *buffer, s *voxel.Section) error {
	encodeCompactBlob(buf, s.BlockData, s.BlockPalette.Size())
	encodeCompactBlob(buf, s.BiomeData, s.BiomePalette.Size())
	return nil
}

func decodeSectionArrays(r *reader, blockPalette, biomePalette *block.Palette) (*voxel.Section, error) {
	blockData, err := decodeCompactBlob(r)
	if err != nil {
		return nil, fmt.Errorf("format: decode block storage: %w", err)
	}
	biomeData, err := decodeCompactBlob(r)
	if err != nil {
		return nil, fmt.Errorf("format: decode biome storage: %w", err)
	}
	return &voxel.Section{
		BlockPalette: blockPalette,
		BlockData:    blockData,
		BiomePalette: biomePalette,
		BiomeData:    biomeData,
	}, nil
}
