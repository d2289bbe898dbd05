package region

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/oriumgames/ooze/block"
	"github.com/oriumgames/ooze/intarray"
	"github.com/oriumgames/ooze/voxel"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// flatteningDataVersion is the DataVersion (1.13's 17w47a) at and after
// which chunks store a Palette+BlockStates pair instead of raw id/data
// byte arrays.
const flatteningDataVersion = 1451

// paddedPackingDataVersion is the DataVersion (1.16's 20w17a) at and
// after which BlockStates switch from bitstream packing with no padding
// (cells may straddle words, the same bit layout as "Compact") to
// word-aligned ("Worded") packing.
const paddedPackingDataVersion = 2527

// defaultDataVersion is used when a chunk's root compound omits
// DataVersion entirely (pre-1.9 chunks never wrote it).
const defaultDataVersion = 99

// DecodeChunkNBT decodes one region chunk's raw (already decompressed)
// NBT bytes into a voxel.Chunk at (x,z), plus the entities and block
// entities it carries (stored level-wide, not on the chunk - §3/§4.4). A
// chunk whose Level compound is missing or incomplete per spec.md's
// Level-assembly sequence is treated as absent: (nil, nil, nil, nil).
func DecodeChunkNBT(raw []byte, x, z int32) (*voxel.Chunk, []voxel.Entity, []voxel.BlockEntity, error) {
	var root map[string]any
	if err := nbt.NewDecoderWithEncoding(bytes.NewReader(raw), nbt.BigEndian).Decode(&root); err != nil {
		return nil, nil, nil, fmt.Errorf("region: decode chunk nbt: %w", err)
	}

	dataVersion := int32(defaultDataVersion)
	if dv, ok := root["DataVersion"].(int32); ok {
		dataVersion = dv
	}

	levelRaw, ok := root["Level"].(map[string]any)
	if !ok {
		// Pre-"Level" compound or post-1.18 flat layout aren't ingestable
		// by this reader; treat as absent rather than error, matching
		// spec.md's "Missing" category.
		return nil, nil, nil, nil
	}
	level := levelRaw

	xPos, xOK := level["xPos"].(int32)
	zPos, zOK := level["zPos"].(int32)
	if !xOK || !zOK {
		return nil, nil, nil, nil
	}
	_ = xPos
	_ = zPos

	c := voxel.NewChunk(x, z)

	if sections, ok := level["Sections"].([]any); ok {
		for _, raw := range sections {
			sec, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if err := decodeSectionInto(c, sec, dataVersion); err != nil {
				return nil, nil, nil, fmt.Errorf("region: decode section: %w", err)
			}
		}
	}

	var blockEntities []voxel.BlockEntity
	if tileEntities, ok := level["TileEntities"].([]any); ok {
		blockEntities = decodeBlockEntities(tileEntities)
	}
	var entities []voxel.Entity
	if entitiesRaw, ok := level["Entities"].([]any); ok {
		entities = decodeEntities(entitiesRaw)
	}
	if tileTicks, ok := level["TileTicks"].([]any); ok {
		c.ScheduledTicks = decodeTileTicks(tileTicks, dataVersion)
	}

	return c, entities, blockEntities, nil
}

func decodeSectionInto(c *voxel.Chunk, sec map[string]any, dataVersion int32) error {
	yRaw, ok := sec["Y"]
	if !ok {
		return nil
	}
	altitude, ok := asInt32(yRaw)
	if !ok || altitude < 0 || altitude > 15 {
		return nil
	}

	if dataVersion < flatteningDataVersion {
		return decodeLegacySection(c, sec, altitude)
	}
	return decodeFlattenedSection(c, sec, altitude, dataVersion)
}

func asInt32(v any) (int32, bool) {
	switch n := v.(type) {
	case int32:
		return n, true
	case byte:
		return int32(n), true
	case int8:
		return int32(n), true
	default:
		return 0, false
	}
}

// decodeLegacySection decodes a pre-flattening section: a flat byte array
// of ids, an optional "Add" nibble array extending ids past 255, and a
// "Data" nibble array of metadata values, packed (id<<4)|data per
// block.LegacyDecode. Nibble unpacking grounded on
// other_examples/20bff1da_..._anvil_chunk.go.go's setNibble, inverted.
func decodeLegacySection(c *voxel.Chunk, sec map[string]any, altitude int32) error {
	blocks, _ := sec["Blocks"].([]byte)
	data, _ := sec["Data"].([]byte)
	add, _ := sec["Add"].([]byte)
	if len(blocks) != voxel.CellCount {
		return nil
	}
	s := voxel.NewSection()
	for i := 0; i < voxel.CellCount; i++ {
		id := uint16(blocks[i])
		if len(add) > 0 {
			id |= uint16(getNibble(add, i)) << 8
		}
		meta := uint8(0)
		if len(data) > 0 {
			meta = getNibble(data, i)
		}
		st, err := block.LegacyDecode(id, meta)
		if err != nil {
			continue
		}
		x, y, z := localCoordsFromIndex(i)
		if err := s.SetBlock(x, y, z, st); err != nil {
			return err
		}
	}
	return c.SetSection(altitude, s)
}

func getNibble(arr []byte, index int) uint8 {
	b := arr[index/2]
	if index%2 == 0 {
		return b & 0xF
	}
	return b >> 4
}

// localCoordsFromIndex inverts vanilla's (y*16+z)*16+x section index.
func localCoordsFromIndex(i int) (x, y, z int) {
	x = i % voxel.SectionSize
	z = (i / voxel.SectionSize) % voxel.SectionSize
	y = i / (voxel.SectionSize * voxel.SectionSize)
	return
}

// decodeFlattenedSection decodes a post-1.13 Palette+BlockStates section,
// selecting Worded vs Compact long-array packing by data version.
// Grounded on oriumgames-schem/format/internal/base/packing.go's
// PackLongArray/PackLongArrayTight distinction.
func decodeFlattenedSection(c *voxel.Chunk, sec map[string]any, altitude int32, dataVersion int32) error {
	paletteRaw, ok := sec["Palette"].([]any)
	if !ok || len(paletteRaw) == 0 {
		return nil
	}
	states := make([]block.State, 0, len(paletteRaw))
	for _, p := range paletteRaw {
		entry, ok := p.(map[string]any)
		if !ok {
			continue
		}
		name, _ := entry["Name"].(string)
		loc, err := block.ParseResourceLocation(name)
		if err != nil {
			continue
		}
		props := map[string]string{}
		if propsRaw, ok := entry["Properties"].(map[string]any); ok {
			for k, v := range propsRaw {
				if s, ok := v.(string); ok {
					props[k] = s
				}
			}
		}
		states = append(states, block.NewState(loc, props))
	}

	longArray, ok := sec["BlockStates"].([]int64)
	if !ok {
		return nil
	}
	words := make([]uint64, len(longArray))
	for i, v := range longArray {
		words[i] = uint64(v)
	}
	bitsPerEntry := intarray.WordedBitsForCapacity(len(states))
	var arr intarray.Array
	if dataVersion < paddedPackingDataVersion {
		arr = intarray.CompactFromData(words, voxel.CellCount, bitsPerEntry)
	} else {
		arr = intarray.WordedFromData(words, voxel.CellCount, bitsPerEntry)
	}

	s := voxel.NewSection()
	for i := 0; i < voxel.CellCount; i++ {
		idx, err := arr.Get(i)
		if err != nil || int(idx) >= len(states) {
			continue
		}
		x, y, z := localCoordsFromIndex(i)
		if err := s.SetBlock(x, y, z, states[idx]); err != nil {
			return err
		}
	}
	return c.SetSection(altitude, s)
}

// decodeBlockEntities reads a chunk's TileEntities list into the
// level-wide BlockEntity shape. Vanilla NBT already stores x/y/z as
// absolute world coordinates, matching BlockEntity's X/Y/Z fields
// directly.
func decodeBlockEntities(list []any) []voxel.BlockEntity {
	out := make([]voxel.BlockEntity, 0, len(list))
	for _, raw := range list {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		x, _ := asInt32(m["x"])
		y, _ := asInt32(m["y"])
		z, _ := asInt32(m["z"])
		idStr, _ := m["id"].(string)
		loc, err := block.ParseResourceLocation(idStr)
		if err != nil {
			continue
		}
		data := make(map[string]any, len(m))
		for k, v := range m {
			switch k {
			case "x", "y", "z", "id":
				continue
			}
			data[k] = v
		}
		out = append(out, voxel.BlockEntity{X: x, Y: y, Z: z, ID: loc, Data: data})
	}
	return out
}

func decodeEntities(list []any) []voxel.Entity {
	out := make([]voxel.Entity, 0, len(list))
	for _, raw := range list {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		idStr, _ := m["id"].(string)
		loc, err := block.ParseResourceLocation(idStr)
		if err != nil {
			continue
		}
		e := voxel.Entity{ID: loc, Data: make(map[string]any, len(m))}
		if most, ok := m["UUIDMost"].(int64); ok {
			if least, ok := m["UUIDLeast"].(int64); ok {
				e.UUID = uuidFromLongs(most, least)
			}
		}
		if e.UUID == uuid.Nil {
			e.UUID = uuid.New()
		}
		if pos, ok := m["Pos"].([]any); ok && len(pos) == 3 {
			for i, v := range pos {
				if f, ok := v.(float64); ok {
					e.Position[i] = float32(f)
				}
			}
		}
		if rot, ok := m["Rotation"].([]any); ok && len(rot) == 2 {
			for i, v := range rot {
				if f, ok := v.(float32); ok {
					e.Rotation[i] = f
				}
			}
		}
		if mot, ok := m["Motion"].([]any); ok && len(mot) == 3 {
			for i, v := range mot {
				if f, ok := v.(float64); ok {
					e.Velocity[i] = float32(f)
				}
			}
		}
		for k, v := range m {
			switch k {
			case "id", "UUIDMost", "UUIDLeast", "Pos", "Rotation", "Motion":
				continue
			}
			e.Data[k] = v
		}
		out = append(out, e)
	}
	return out
}

func uuidFromLongs(most, least int64) uuid.UUID {
	var u uuid.UUID
	for i := 0; i < 8; i++ {
		u[i] = byte(most >> uint(56-8*i))
		u[8+i] = byte(least >> uint(56-8*i))
	}
	return u
}

func decodeTileTicks(list []any, dataVersion int32) []voxel.ScheduledTick {
	out := make([]voxel.ScheduledTick, 0, len(list))
	for _, raw := range list {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		x, _ := asInt32(m["x"])
		y, _ := asInt32(m["y"])
		z, _ := asInt32(m["z"])
		t, _ := m["t"].(int32)

		var loc block.ResourceLocation
		switch id := m["i"].(type) {
		case string:
			if l, err := block.ParseResourceLocation(id); err == nil {
				loc = l
			}
		case int32:
			st, err := block.LegacyDecode(uint16(id), 0)
			if err != nil {
				continue
			}
			loc = st.Name
		default:
			continue
		}
		out = append(out, voxel.ScheduledTick{PackedXZ: voxel.PackXZ(int(x), int(z)), Y: y, Block: loc, Tick: int64(t)})
	}
	return out
}
