package format

import (
	"bytes"
	"fmt"

	"github.com/sandertv/gophertunnel/minecraft/nbt"

	"github.com/oriumgames/ooze/voxel"
)

// EncodeOptions controls how EncodeLevel writes the chunk stream and NBT
// lists (§4.5), grounded on oriumgames-pile/format/io.go's
// CompressionLevel parameter.
type EncodeOptions struct {
	Compression CompressionLevel
	DataVersion uint32
	// SectionHeight bounds the number of section altitudes written per
	// chunk: [level.MinSection, level.MinSection+SectionHeight).
	SectionHeight int
}

// DefaultEncodeOptions mirrors the teacher's CompressionDefault default.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Compression: CompressionDefault, DataVersion: 1, SectionHeight: 24}
}

// EncodeLevel writes a full Ooze level payload (everything after the file
// header) to buf.
func EncodeLevel(buf *buffer, l *voxel.Level, opts EncodeOptions) error {
	minX, minZ, width, depth, grid := layoutChunks(l)
	if width > 255 || depth > 255 {
		return fmt.Errorf("format: level spans %dx%d chunks, exceeds the u8 width/depth limit of 255", width, depth)
	}

	buf.WriteUInt8(uint8(width))
	buf.WriteUInt8(uint8(depth))
	buf.WriteInt16(int16(minX))
	buf.WriteInt16(int16(minZ))

	// The chunk-presence bitset is indexed dx*depth+dz (row-major, X
	// outer, Z inner, §4.5) even though layoutChunks' own grid is kept
	// dz*width+dx internally for cache-friendly row scanning.
	mask := NewBitSet(width * depth)
	streamBuf := newBuffer()
	for dx := 0; dx < width; dx++ {
		for dz := 0; dz < depth; dz++ {
			c := grid[dz*width+dx]
			if c == nil {
				continue
			}
			mask.Set(dx*depth+dz, true)
			if err := encodeChunk(streamBuf, c, opts.DataVersion, l.MinSection, opts.SectionHeight, opts.Compression); err != nil {
				return fmt.Errorf("format: encode chunk (%d,%d): %w", c.X, c.Z, err)
			}
		}
	}
	buf.WriteBitSet(mask)
	if err := encodeFrame(buf, streamBuf.Bytes(), opts.Compression); err != nil {
		return fmt.Errorf("format: encode chunk stream: %w", err)
	}

	if err := encodeCompoundList(buf, blockEntitiesToMaps(l.BlockEntities), opts.Compression); err != nil {
		return fmt.Errorf("format: encode block entities: %w", err)
	}
	if err := encodeCompoundList(buf, entitiesToMaps(l.Entities), opts.Compression); err != nil {
		return fmt.Errorf("format: encode entities: %w", err)
	}

	hasCustom := l.CustomData != nil
	buf.WriteBool(hasCustom)
	if hasCustom {
		var raw bytes.Buffer
		if err := nbt.NewEncoderWithEncoding(&raw, nbt.BigEndian).Encode(l.CustomData); err != nil {
			return fmt.Errorf("format: encode custom data: %w", err)
		}
		buf.WriteBytes(raw.Bytes())
	}
	return nil
}

// DecodeLevel reads a level payload written by EncodeLevel.
func DecodeLevel(r *reader, minSection, maxSection int32) (*voxel.Level, error) {
	width, err := r.ReadUInt8()
	if err != nil {
		return nil, fmt.Errorf("format: read width: %w", err)
	}
	depth, err := r.ReadUInt8()
	if err != nil {
		return nil, fmt.Errorf("format: read depth: %w", err)
	}
	minX, err := r.ReadInt16()
	if err != nil {
		return nil, fmt.Errorf("format: read min chunk x: %w", err)
	}
	minZ, err := r.ReadInt16()
	if err != nil {
		return nil, fmt.Errorf("format: read min chunk z: %w", err)
	}
	mask, err := r.ReadBitSet()
	if err != nil {
		return nil, fmt.Errorf("format: read chunk bitset: %w", err)
	}
	streamBytes, err := decodeFrame(r)
	if err != nil {
		return nil, fmt.Errorf("format: read chunk stream: %w", err)
	}

	l := voxel.NewLevel(minSection, maxSection)
	sr := newReader(bytes.NewReader(streamBytes))
	for dx := 0; dx < int(width); dx++ {
		for dz := 0; dz < int(depth); dz++ {
			if !mask.Get(dx*int(depth) + dz) {
				continue
			}
			x, z := int32(minX)+int32(dx), int32(minZ)+int32(dz)
			c, _, err := decodeChunk(sr, x, z)
			if err != nil {
				return nil, fmt.Errorf("format: decode chunk (%d,%d): %w", x, z, err)
			}
			if err := l.SetChunk(x, z, c); err != nil {
				return nil, err
			}
		}
	}
	l.ClearDirty()

	blockEntityMaps, err := decodeCompoundList(r)
	if err != nil {
		return nil, fmt.Errorf("format: read block entities: %w", err)
	}
	l.BlockEntities, err = mapsToBlockEntities(blockEntityMaps)
	if err != nil {
		return nil, err
	}
	entityMaps, err := decodeCompoundList(r)
	if err != nil {
		return nil, fmt.Errorf("format: read entities: %w", err)
	}
	l.Entities, err = mapsToEntities(entityMaps)
	if err != nil {
		return nil, err
	}

	hasCustom, err := r.ReadBool()
	if err != nil {
		return nil, fmt.Errorf("format: read has_custom flag: %w", err)
	}
	if hasCustom {
		raw, err := r.ReadBytes()
		if err != nil {
			return nil, fmt.Errorf("format: read custom data bytes: %w", err)
		}
		var custom map[string]any
		if err := nbt.NewDecoderWithEncoding(bytes.NewReader(raw), nbt.BigEndian).Decode(&custom); err != nil {
			return nil, fmt.Errorf("format: decode custom data: %w", err)
		}
		l.CustomData = custom
	}
	return l, nil
}

// layoutChunks returns the level's chunk-coordinate bounding box and a
// dz*width+dx grid of its chunks (nil where absent). The grid's own
// indexing is a private implementation detail; EncodeLevel/DecodeLevel
// translate it to the wire's dx*depth+dz bitset order.
func layoutChunks(l *voxel.Level) (minX, minZ int32, width, depth int, grid []*voxel.Chunk) {
	chunks := l.Chunks()
	if len(chunks) == 0 {
		return 0, 0, 0, 0, nil
	}
	minX, minZ = chunks[0].X, chunks[0].Z
	maxX, maxZ := chunks[0].X, chunks[0].Z
	for _, c := range chunks {
		if c.X < minX {
			minX = c.X
		}
		if c.X > maxX {
			maxX = c.X
		}
		if c.Z < minZ {
			minZ = c.Z
		}
		if c.Z > maxZ {
			maxZ = c.Z
		}
	}
	width = int(maxX-minX) + 1
	depth = int(maxZ-minZ) + 1
	grid = make([]*voxel.Chunk, width*depth)
	for _, c := range chunks {
		grid[int(c.Z-minZ)*width+int(c.X-minX)] = c
	}
	return minX, minZ, width, depth, grid
}
