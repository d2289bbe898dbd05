// Package region implements ingest of legacy Minecraft Anvil/region
// (.mca/.mcr) files: region-file sector layout, per-chunk compression
// handling, and decoding of both pre-flattening and post-flattening chunk
// NBT into the voxel model.
//
// Region-file byte layout grounded on
// other_examples/7f9a973c_go-theft-craft-server__...anvil_test.go.go's
// TestSaveRegion (sector size, location-table math, compression tag,
// r.<x>.<z>.mca naming) — the only pack source exercising the literal
// anvil byte layout with a test.
package region

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const sectorSize = 4096
const locationEntries = 1024

// compression tag values, per the anvil spec.
const (
	compressionGZip        = 1
	compressionZlib        = 2
	compressionUncompressed = 3
	externalFileBit        = 0x80
)

// RegionFile provides random-access chunk reads from one .mca file. It is
// opened lazily: the location table is read on first use and cached.
type RegionFile struct {
	path      string
	f         *os.File
	locations [locationEntries]uint32
	loaded    bool
}

// NewRegionFile returns a RegionFile bound to path; no I/O happens until
// the first LoadChunk call.
func NewRegionFile(path string) *RegionFile {
	return &RegionFile{path: path}
}

func (rf *RegionFile) ensureOpen() error {
	if rf.loaded {
		return nil
	}
	f, err := os.Open(rf.path)
	if err != nil {
		return fmt.Errorf("region: open %s: %w", rf.path, err)
	}
	rf.f = f
	var raw [locationEntries * 4]byte
	if _, err := io.ReadFull(f, raw[:]); err != nil {
		return fmt.Errorf("region: read location table of %s: %w", rf.path, err)
	}
	for i := 0; i < locationEntries; i++ {
		rf.locations[i] = binary.BigEndian.Uint32(raw[i*4 : i*4+4])
	}
	rf.loaded = true
	return nil
}

// Close releases the underlying file handle.
func (rf *RegionFile) Close() error {
	if rf.f == nil {
		return nil
	}
	err := rf.f.Close()
	rf.f = nil
	rf.loaded = false
	return err
}

// HasChunk reports whether a chunk is present at local region coordinates
// (localX, localZ), each in [0,32).
func (rf *RegionFile) HasChunk(localX, localZ int) (bool, error) {
	if err := rf.ensureOpen(); err != nil {
		return false, err
	}
	entry := rf.locations[localZ*32+localX]
	return entry != 0, nil
}

// LoadChunk reads and decompresses the NBT payload for the chunk at local
// region coordinates (localX, localZ). A missing chunk returns
// (nil, nil) — absence is not an error per spec.md's "Missing" category.
func (rf *RegionFile) LoadChunk(localX, localZ int) ([]byte, error) {
	if err := rf.ensureOpen(); err != nil {
		return nil, err
	}
	entry := rf.locations[localZ*32+localX]
	if entry == 0 {
		return nil, nil
	}
	offset := int64(entry>>8) * sectorSize
	if _, err := rf.f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("region: seek chunk (%d,%d): %w", localX, localZ, err)
	}
	var header [5]byte
	if _, err := io.ReadFull(rf.f, header[:]); err != nil {
		return nil, fmt.Errorf("region: read chunk header (%d,%d): %w", localX, localZ, err)
	}
	length := binary.BigEndian.Uint32(header[0:4])
	tag := header[4]

	if tag&externalFileBit != 0 {
		return rf.loadExternal(localX, localZ, tag&^externalFileBit)
	}
	payload := make([]byte, length-1)
	if _, err := io.ReadFull(rf.f, payload); err != nil {
		return nil, fmt.Errorf("region: read chunk payload (%d,%d): %w", localX, localZ, err)
	}
	return decompress(payload, tag)
}

func (rf *RegionFile) loadExternal(localX, localZ int, tag byte) ([]byte, error) {
	regionName := filepath.Base(rf.path)
	var rx, rz int
	if _, err := fmt.Sscanf(regionName, "r.%d.%d.mca", &rx, &rz); err != nil {
		return nil, fmt.Errorf("region: cannot derive external chunk path from %s: %w", regionName, err)
	}
	worldX, worldZ := rx*32+localX, rz*32+localZ
	mccPath := filepath.Join(filepath.Dir(rf.path), fmt.Sprintf("c.%d.%d.mcc", worldX, worldZ))
	raw, err := os.ReadFile(mccPath)
	if err != nil {
		return nil, fmt.Errorf("region: read external chunk %s: %w", mccPath, err)
	}
	return decompress(raw, tag)
}

func decompress(payload []byte, tag byte) ([]byte, error) {
	switch tag {
	case compressionGZip:
		zr, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("region: gzip: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case compressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("region: zlib: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case compressionUncompressed:
		return payload, nil
	default:
		return nil, fmt.Errorf("region: unknown compression tag %d", tag)
	}
}

// RegionFileName returns the conventional "r.<x>.<z>.mca" name for the
// region at region coordinates (regionX, regionZ); see ChunkToRegion.
func RegionFileName(regionX, regionZ int) string {
	return fmt.Sprintf("r.%d.%d.mca", regionX, regionZ)
}

// ChunkToRegion converts a chunk coordinate to its containing region
// coordinate and the chunk's local position within that region.
func ChunkToRegion(chunkX, chunkZ int32) (regionX, regionZ, localX, localZ int) {
	regionX = int(chunkX >> 5)
	regionZ = int(chunkZ >> 5)
	localX = int(chunkX) & 31
	localZ = int(chunkZ) & 31
	return
}
