package format

import (
	"bytes"
	"fmt"
	"io"
)

// VarInt is unsigned LEB128 over a 32-bit value, at most 5 bytes.
//
// This deviates from the teacher's own binary.go, which encodes VarInts
// with signed zigzag encoding/binary.PutVarint/ReadVarint. spec.md defines
// VarInt as plain unsigned LEB128, so this instead follows
// oriumgames-schem/format/internal/base/varint.go's EncodeVarInt/
// DecodeVarInt, which matches exactly. See DESIGN.md.

// ErrVarIntTooLong is returned when a VarInt would need more than 5 bytes.
var ErrVarIntTooLong = fmt.Errorf("format: varint exceeds 5 bytes")

func writeVarInt(w *bytes.Buffer, v uint32) {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			w.WriteByte(b | 0x80)
		} else {
			w.WriteByte(b)
			return
		}
	}
}

func readVarInt(r io.ByteReader) (uint32, error) {
	var result uint32
	for i := 0; i < 5; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("format: read varint: %w", err)
		}
		result |= uint32(b&0x7F) << (7 * uint(i))
		if b&0x80 == 0 {
			return result, nil
		}
	}
	return 0, ErrVarIntTooLong
}
