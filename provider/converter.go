package provider

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/chunk"
	"github.com/google/uuid"
	"github.com/oriumgames/ooze/block"
	"github.com/oriumgames/ooze/voxel"
)

// chunkToColumn converts a voxel.Chunk into a Dragonfly chunk.Column,
// grounded on oriumgames-pile/converter.go's chunkToColumn/
// convertSectionBlocks/convertSectionBiomes. entities and blockEntities
// come from the caller (Level.EntitiesIn/BlockEntitiesIn): they're no
// longer chunk fields (§3/§4.4's level-wide bulk-list model).
func chunkToColumn(c *voxel.Chunk, entities []voxel.Entity, blockEntities []voxel.BlockEntity, dimRange cube.Range) (*chunk.Column, error) {
	airState, _ := world.BlockByName("minecraft:air", nil)
	airRID := world.BlockRuntimeID(airState)

	ch := chunk.New(airRID, dimRange)

	for _, altitude := range c.Sections() {
		s := c.Section(altitude)
		if s == nil || s.IsEmpty() {
			continue
		}
		sectionY := int16(altitude)
		baseY := sectionY << 4

		s.BlockData.ForEach(func(i int, idx uint64) {
			st, err := s.BlockPalette.Get(int(idx))
			if err != nil {
				return
			}
			rid := stateToRuntimeID(st, airRID)
			if rid == airRID {
				return
			}
			x := uint8(i % voxel.SectionSize)
			z := uint8((i / voxel.SectionSize) % voxel.SectionSize)
			y := baseY + int16(i/(voxel.SectionSize*voxel.SectionSize))
			ch.SetBlock(x, y, z, 0, rid)
		})

		s.BiomeData.ForEach(func(i int, idx uint64) {
			bs, err := s.BiomePalette.Get(int(idx))
			if err != nil {
				return
			}
			biomeID := biomeStateToID(bs)
			x := uint8(i % voxel.SectionSize)
			z := uint8((i / voxel.SectionSize) % voxel.SectionSize)
			y := baseY + int16(i/(voxel.SectionSize*voxel.SectionSize))
			ch.SetBiome(x, y, z, biomeID)
		})
	}

	outBlockEntities := make([]chunk.BlockEntity, 0, len(blockEntities))
	for _, be := range blockEntities {
		pos := cube.Pos{int(be.X), int(be.Y), int(be.Z)}
		data := make(map[string]any, len(be.Data)+1)
		for k, v := range be.Data {
			data[k] = v
		}
		data["id"] = be.ID.String()
		outBlockEntities = append(outBlockEntities, chunk.BlockEntity{Pos: pos, Data: data})
	}

	outEntities := make([]chunk.Entity, 0, len(entities))
	for _, e := range entities {
		data := make(map[string]any, len(e.Data)+4)
		for k, v := range e.Data {
			data[k] = v
		}
		data["identifier"] = e.ID.String()
		data["Pos"] = []float32{e.Position[0], e.Position[1], e.Position[2]}
		data["Yaw"] = e.Rotation[0]
		data["Pitch"] = e.Rotation[1]
		data["Motion"] = []float32{e.Velocity[0], e.Velocity[1], e.Velocity[2]}
		outEntities = append(outEntities, chunk.Entity{ID: int64(e.UUID.ID()), Data: data})
	}

	scheduled := make([]chunk.ScheduledBlockUpdate, 0, len(c.ScheduledTicks))
	for _, t := range c.ScheduledTicks {
		localX, y, localZ := t.Position()
		rid := airRID
		if st, ok := world.BlockByName(t.Block.String(), nil); ok {
			rid = world.BlockRuntimeID(st)
		}
		scheduled = append(scheduled, chunk.ScheduledBlockUpdate{
			Pos:   cube.Pos{int(c.X)*16 + localX, y, int(c.Z)*16 + localZ},
			Block: rid,
			Tick:  t.Tick,
		})
	}

	return &chunk.Column{Chunk: ch, Entities: outEntities, BlockEntities: outBlockEntities, ScheduledBlocks: scheduled}, nil
}

// columnToChunk converts a Dragonfly chunk.Column back into a voxel.Chunk,
// grounded on oriumgames-pile/converter.go's columnToChunk/
// convertStorageToPile/extractBiomesFromChunk. Dragonfly's own
// chunk.PalettedStorage already exposes decoded runtime ids per cell, so
// this walks it directly rather than re-deriving bit widths the way that
// file's encodeIndices/decodeIndices do; intarray's kernel is instead
// exercised by the region ingest and format codec paths.
func columnToChunk(col *chunk.Column, x, z int32, dimRange cube.Range) (*voxel.Chunk, []voxel.Entity, []voxel.BlockEntity, error) {
	ch := col.Chunk
	minSection := int32(dimRange[0] >> 4)
	maxSection := int32(dimRange[1] >> 4)

	c := voxel.NewChunk(x, z)
	subs := ch.Sub()
	for i := 0; i < len(subs) && minSection+int32(i) <= maxSection; i++ {
		sub := subs[i]
		if sub.Empty() {
			continue
		}
		s := voxel.NewSection()
		altitude := minSection + int32(i)
		baseY := int16(altitude) << 4

		if layers := sub.Layers(); len(layers) > 0 {
			storage := layers[0]
			for li := 0; li < voxel.CellCount; li++ {
				lx := uint8(li % voxel.SectionSize)
				lz := uint8((li / voxel.SectionSize) % voxel.SectionSize)
				ly := li / (voxel.SectionSize * voxel.SectionSize)
				rid := storage.At(lx, uint8(ly), lz)
				st := runtimeIDToState(rid)
				if err := s.SetBlock(int(lx), ly, int(lz), st); err != nil {
					return nil, nil, nil, fmt.Errorf("provider: set block during column conversion: %w", err)
				}
			}
		}

		for li := 0; li < voxel.CellCount; li++ {
			lx := uint8(li % voxel.SectionSize)
			lz := uint8((li / voxel.SectionSize) % voxel.SectionSize)
			ly := int16(li / (voxel.SectionSize * voxel.SectionSize))
			biomeID := ch.Biome(lx, baseY+ly, lz)
			if err := s.SetBiome(int(lx), int(ly), int(lz), biomeIDToState(biomeID)); err != nil {
				return nil, nil, nil, fmt.Errorf("provider: set biome during column conversion: %w", err)
			}
		}
		if err := c.SetSection(altitude, s); err != nil {
			return nil, nil, nil, fmt.Errorf("provider: insert section during column conversion: %w", err)
		}
	}

	blockEntities := make([]voxel.BlockEntity, 0, len(col.BlockEntities))
	for _, be := range col.BlockEntities {
		id := "minecraft:unknown"
		if v, ok := be.Data["id"].(string); ok {
			id = v
		}
		loc, err := block.ParseResourceLocation(id)
		if err != nil {
			loc = block.ResourceLocation{Namespace: block.DefaultNamespace, Path: "unknown"}
		}
		data := make(map[string]any, len(be.Data))
		for k, v := range be.Data {
			if k == "id" {
				continue
			}
			data[k] = v
		}
		blockEntities = append(blockEntities, voxel.BlockEntity{
			X:    int32(be.Pos.X()),
			Y:    int32(be.Pos.Y()),
			Z:    int32(be.Pos.Z()),
			ID:   loc,
			Data: data,
		})
	}

	entities := make([]voxel.Entity, 0, len(col.Entities))
	for _, e := range col.Entities {
		id := "minecraft:unknown"
		if v, ok := e.Data["identifier"].(string); ok {
			id = v
		}
		loc, err := block.ParseResourceLocation(id)
		if err != nil {
			loc = block.ResourceLocation{Namespace: block.DefaultNamespace, Path: "unknown"}
		}
		ent := voxel.Entity{UUID: uuid.New(), ID: loc, Data: make(map[string]any, len(e.Data))}
		if pos, ok := e.Data["Pos"].([]float32); ok && len(pos) == 3 {
			ent.Position = [3]float32{pos[0], pos[1], pos[2]}
		}
		if yaw, ok := e.Data["Yaw"].(float32); ok {
			ent.Rotation[0] = yaw
		}
		if pitch, ok := e.Data["Pitch"].(float32); ok {
			ent.Rotation[1] = pitch
		}
		if mot, ok := e.Data["Motion"].([]float32); ok && len(mot) == 3 {
			ent.Velocity = [3]float32{mot[0], mot[1], mot[2]}
		}
		for k, v := range e.Data {
			switch k {
			case "identifier", "Pos", "Yaw", "Pitch", "Motion":
				continue
			}
			ent.Data[k] = v
		}
		entities = append(entities, ent)
	}

	c.ScheduledTicks = make([]voxel.ScheduledTick, 0, len(col.ScheduledBlocks))
	for _, t := range col.ScheduledBlocks {
		name, _, _ := chunk.RuntimeIDToState(t.Block)
		if name == "" {
			name = "minecraft:air"
		}
		loc, _ := block.ParseResourceLocation(name)
		c.ScheduledTicks = append(c.ScheduledTicks, voxel.ScheduledTick{
			PackedXZ: voxel.PackXZ(t.Pos.X()&0xF, t.Pos.Z()&0xF),
			Y:        int32(t.Pos.Y()),
			Block:    loc,
			Tick:     t.Tick,
		})
	}

	return c, entities, blockEntities, nil
}

func stateToRuntimeID(st block.State, fallback uint32) uint32 {
	props := make(map[string]any, len(st.Properties))
	for k, v := range st.Properties {
		props[k] = v
	}
	b, ok := world.BlockByName(st.Name.String(), props)
	if !ok {
		return fallback
	}
	return world.BlockRuntimeID(b)
}

func runtimeIDToState(rid uint32) block.State {
	name, props, _ := chunk.RuntimeIDToState(rid)
	if name == "" {
		name = "minecraft:air"
	}
	loc, err := block.ParseResourceLocation(name)
	if err != nil {
		loc = block.ResourceLocation{Namespace: block.DefaultNamespace, Path: "air"}
	}
	strProps := make(map[string]string, len(props))
	for k, v := range props {
		strProps[k] = fmt.Sprint(v)
	}
	return block.NewState(loc, strProps)
}

func biomeStateToID(bs block.State) uint32 {
	b, ok := world.BiomeByName(bs.Name.String())
	if !ok || b == nil {
		if b, ok = world.BiomeByName("minecraft:plains"); !ok || b == nil {
			return 1
		}
	}
	return uint32(b.EncodeBiome())
}

func biomeIDToState(id uint32) block.State {
	b, ok := world.BiomeByID(int(id))
	if !ok || b == nil {
		return block.NewState(block.ResourceLocation{Namespace: block.DefaultNamespace, Path: "plains"}, nil)
	}
	loc, err := block.ParseResourceLocation(b.String())
	if err != nil {
		loc = block.ResourceLocation{Namespace: block.DefaultNamespace, Path: "plains"}
	}
	return block.NewState(loc, nil)
}
