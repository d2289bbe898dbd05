package format

import (
	"bytes"
	"fmt"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// compoundListWrapper lets a bare NBT list of compounds round-trip
// through gophertunnel's nbt package, which (like vanilla NBT) requires a
// named root compound.
type compoundListWrapper struct {
	List []map[string]any `nbt:"list"`
}

// encodeCompoundList writes "nbt_list count, zstd_frame{...}" (§4.5):
// block_entities, entities and scheduled_ticks all share this shape.
//
// Grounded on oriumgames-pile/encode.go's encodeSettings, which moves a
// map[string]any through github.com/sandertv/gophertunnel/minecraft/nbt
// the same way.
func encodeCompoundList(buf *buffer, items []map[string]any, level CompressionLevel) error {
	var raw bytes.Buffer
	wrapper := compoundListWrapper{List: items}
	if err := nbt.NewEncoderWithEncoding(&raw, nbt.BigEndian).Encode(wrapper); err != nil {
		return fmt.Errorf("format: encode nbt list: %w", err)
	}
	buf.WriteVarInt(uint32(len(items)))
	return encodeFrame(buf, raw.Bytes(), level)
}

func decodeCompoundList(r *reader) ([]map[string]any, error) {
	count, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("format: read nbt list count: %w", err)
	}
	data, err := decodeFrame(r)
	if err != nil {
		return nil, fmt.Errorf("format: read nbt list frame: %w", err)
	}
	var wrapper compoundListWrapper
	if err := nbt.NewDecoderWithEncoding(bytes.NewReader(data), nbt.BigEndian).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("format: decode nbt list: %w", err)
	}
	if uint32(len(wrapper.List)) != count {
		return nil, fmt.Errorf("format: nbt list declared %d entries, got %d", count, len(wrapper.List))
	}
	return wrapper.List, nil
}
