package format

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/oriumgames/ooze/block"
	"github.com/oriumgames/ooze/voxel"
)

// encodeChunk writes one chunk payload: data version, altitude bounds, a
// bitset of which sections are non-empty, the chunk-wide block and biome
// palette blobs (written once, shared by every non-empty section), each
// non-empty section's bare compact int-array blobs, the scheduled-ticks
// NBT-list stream, and trailing user data. Grounded on
// oriumgames-pile/format/encode.go with the scheduled-ticks stream added
// per SPEC_FULL.md §4.5. Entities and block entities are not part of the
// chunk payload: they live in the level's bulk lists (§4.5's block_entities/
// entities streams sit after the chunk stream, not inside it).
func encodeChunk(buf *buffer, c *voxel.Chunk, dataVersion uint32, minAltitude int32, heightInSections int, level CompressionLevel) error {
	buf.WriteVarInt(dataVersion)
	buf.WriteVarInt(uint32(heightInSections))
	buf.WriteVarInt(uint32(minAltitude))

	if heightInSections > 0 {
		present := NewBitSet(heightInSections)
		sections := make([]*voxel.Section, heightInSections)
		hasNonEmpty := false
		for i := 0; i < heightInSections; i++ {
			alt := minAltitude + int32(i)
			s := c.Section(alt)
			if s != nil && !s.IsEmpty() {
				present.Set(i, true)
				sections[i] = s
				hasNonEmpty = true
			}
		}
		buf.WriteBitSet(present)

		if hasNonEmpty {
			if err := encodePalette(buf, c.BlockPalette); err != nil {
				return fmt.Errorf("format: encode block palette: %w", err)
			}
			if err := encodePalette(buf, c.BiomePalette); err != nil {
				return fmt.Errorf("format: encode biome palette: %w", err)
			}
			for i := 0; i < heightInSections; i++ {
				if sections[i] == nil {
					continue
				}
				if err := encodeSectionArrays(buf, sections[i]); err != nil {
					return fmt.Errorf("format: encode section at index %d: %w", i, err)
				}
			}
		}
	}

	if err := encodeCompoundList(buf, ticksToMaps(c.ScheduledTicks), level); err != nil {
		return fmt.Errorf("format: encode scheduled ticks: %w", err)
	}
	buf.WriteBytes(c.UserData)
	return nil
}

func decodeChunk(r *reader, x, z int32) (*voxel.Chunk, uint32, error) {
	dataVersion, err := r.ReadVarInt()
	if err != nil {
		return nil, 0, fmt.Errorf("format: read data version: %w", err)
	}
	heightInSections, err := r.ReadVarInt()
	if err != nil {
		return nil, 0, fmt.Errorf("format: read section height: %w", err)
	}
	minAltitudeU, err := r.ReadVarInt()
	if err != nil {
		return nil, 0, fmt.Errorf("format: read min altitude: %w", err)
	}
	minAltitude := int32(minAltitudeU)

	c := voxel.NewChunk(x, z)

	if heightInSections > 0 {
		present, err := r.ReadBitSet()
		if err != nil {
			return nil, 0, fmt.Errorf("format: read section bitset: %w", err)
		}
		hasNonEmpty := false
		for i := 0; i < int(heightInSections); i++ {
			if present.Get(i) {
				hasNonEmpty = true
				break
			}
		}
		if hasNonEmpty {
			blockPalette, err := decodePalette(r)
			if err != nil {
				return nil, 0, fmt.Errorf("format: decode block palette: %w", err)
			}
			biomePalette, err := decodePalette(r)
			if err != nil {
				return nil, 0, fmt.Errorf("format: decode biome palette: %w", err)
			}
			for i := 0; i < int(heightInSections); i++ {
				if !present.Get(i) {
					continue
				}
				s, err := decodeSectionArrays(r, blockPalette, biomePalette)
				if err != nil {
					return nil, 0, fmt.Errorf("format: decode section at index %d: %w", i, err)
				}
				if err := c.SetSection(minAltitude+int32(i), s); err != nil {
					return nil, 0, fmt.Errorf("format: insert section at index %d: %w", i, err)
				}
			}
		}
	}

	tickMaps, err := decodeCompoundList(r)
	if err != nil {
		return nil, 0, fmt.Errorf("format: decode scheduled ticks: %w", err)
	}
	c.ScheduledTicks, err = mapsToTicks(tickMaps)
	if err != nil {
		return nil, 0, err
	}

	c.UserData, err = r.ReadBytes()
	if err != nil {
		return nil, 0, fmt.Errorf("format: read chunk user data: %w", err)
	}
	return c, dataVersion, nil
}

func blockEntitiesToMaps(list []voxel.BlockEntity) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, be := range list {
		m := map[string]any{"x": be.X, "y": be.Y, "z": be.Z, "id": be.ID.String()}
		for k, v := range be.Data {
			m[k] = v
		}
		out = append(out, m)
	}
	return out
}

func mapsToBlockEntities(maps []map[string]any) ([]voxel.BlockEntity, error) {
	out := make([]voxel.BlockEntity, 0, len(maps))
	for _, m := range maps {
		c := Compound(m)
		x, err := c.GetInt("x")
		if err != nil {
			return nil, fmt.Errorf("format: block entity: %w", err)
		}
		y, err := c.GetInt("y")
		if err != nil {
			return nil, fmt.Errorf("format: block entity: %w", err)
		}
		z, err := c.GetInt("z")
		if err != nil {
			return nil, fmt.Errorf("format: block entity: %w", err)
		}
		idStr, err := c.GetString("id")
		if err != nil {
			return nil, fmt.Errorf("format: block entity: %w", err)
		}
		id, err := block.ParseResourceLocation(idStr)
		if err != nil {
			return nil, fmt.Errorf("format: block entity: %w", err)
		}
		data := make(map[string]any, len(m))
		for k, v := range m {
			switch k {
			case "x", "y", "z", "id":
				continue
			}
			data[k] = v
		}
		out = append(out, voxel.BlockEntity{X: x, Y: y, Z: z, ID: id, Data: data})
	}
	return out, nil
}

func entitiesToMaps(list []voxel.Entity) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		m := map[string]any{
			"uuid": e.UUID.String(),
			"id":   e.ID.String(),
			"pos":  []float32{e.Position[0], e.Position[1], e.Position[2]},
			"rot":  []float32{e.Rotation[0], e.Rotation[1]},
			"vel":  []float32{e.Velocity[0], e.Velocity[1], e.Velocity[2]},
		}
		for k, v := range e.Data {
			m[k] = v
		}
		out = append(out, m)
	}
	return out
}

func mapsToEntities(list []map[string]any) ([]voxel.Entity, error) {
	out := make([]voxel.Entity, 0, len(list))
	for _, m := range list {
		c := Compound(m)
		uuidStr, err := c.GetString("uuid")
		if err != nil {
			return nil, fmt.Errorf("format: entity: %w", err)
		}
		id, err := c.GetString("id")
		if err != nil {
			return nil, fmt.Errorf("format: entity: %w", err)
		}
		u, err := uuid.Parse(uuidStr)
		if err != nil {
			return nil, fmt.Errorf("format: entity uuid: %w", err)
		}
		loc, err := block.ParseResourceLocation(id)
		if err != nil {
			return nil, fmt.Errorf("format: entity id: %w", err)
		}
		e := voxel.Entity{UUID: u, ID: loc, Data: make(map[string]any, len(m))}
		if v, ok := m["pos"].([]float32); ok && len(v) == 3 {
			e.Position = [3]float32{v[0], v[1], v[2]}
		}
		if v, ok := m["rot"].([]float32); ok && len(v) == 2 {
			e.Rotation = [2]float32{v[0], v[1]}
		}
		if v, ok := m["vel"].([]float32); ok && len(v) == 3 {
			e.Velocity = [3]float32{v[0], v[1], v[2]}
		}
		for k, v := range m {
			switch k {
			case "uuid", "id", "pos", "rot", "vel":
				continue
			}
			e.Data[k] = v
		}
		out = append(out, e)
	}
	return out, nil
}

func ticksToMaps(list []voxel.ScheduledTick) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, t := range list {
		x, y, z := t.Position()
		out = append(out, map[string]any{
			"x":     int32(x),
			"y":     int32(y),
			"z":     int32(z),
			"block": t.Block.String(),
			"tick":  t.Tick,
		})
	}
	return out
}

func mapsToTicks(list []map[string]any) ([]voxel.ScheduledTick, error) {
	out := make([]voxel.ScheduledTick, 0, len(list))
	for _, m := range list {
		c := Compound(m)
		x, err := c.GetInt("x")
		if err != nil {
			return nil, fmt.Errorf("format: scheduled tick: %w", err)
		}
		y, err := c.GetInt("y")
		if err != nil {
			return nil, fmt.Errorf("format: scheduled tick: %w", err)
		}
		z, err := c.GetInt("z")
		if err != nil {
			return nil, fmt.Errorf("format: scheduled tick: %w", err)
		}
		blockStr, err := c.GetString("block")
		if err != nil {
			return nil, fmt.Errorf("format: scheduled tick: %w", err)
		}
		tick, err := c.GetLong("tick")
		if err != nil {
			return nil, fmt.Errorf("format: scheduled tick: %w", err)
		}
		loc, err := block.ParseResourceLocation(blockStr)
		if err != nil {
			return nil, fmt.Errorf("format: scheduled tick block: %w", err)
		}
		out = append(out, voxel.ScheduledTick{PackedXZ: voxel.PackXZ(int(x), int(z)), Y: y, Block: loc, Tick: tick})
	}
	return out, nil
}
