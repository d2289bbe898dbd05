// Package format implements the Ooze binary codec: the file header,
// VarInt/BitSet primitives, Zstd-framed payloads, and the chunk/level
// wire layout built on top of them.
//
// buffer/reader are grounded on oriumgames-pile's root binary.go, whose
// format/encode.go and format/decode.go call an identically-shaped
// buffer/reader pair that was not itself present in the retrieved pack;
// rewritten here from those call sites.
package format

import (
	"bytes"
	"fmt"
	"io"
)

type buffer struct {
	bytes.Buffer
}

func newBuffer() *buffer {
	return &buffer{}
}

func (b *buffer) WriteUInt64(v uint64) {
	b.WriteByte(byte(v))
	b.WriteByte(byte(v >> 8))
	b.WriteByte(byte(v >> 16))
	b.WriteByte(byte(v >> 24))
	b.WriteByte(byte(v >> 32))
	b.WriteByte(byte(v >> 40))
	b.WriteByte(byte(v >> 48))
	b.WriteByte(byte(v >> 56))
}

func (b *buffer) WriteInt64(v int64) { b.WriteUInt64(uint64(v)) }

func (b *buffer) WriteUInt32(v uint32) {
	b.WriteByte(byte(v))
	b.WriteByte(byte(v >> 8))
	b.WriteByte(byte(v >> 16))
	b.WriteByte(byte(v >> 24))
}

func (b *buffer) WriteInt32(v int32) { b.WriteUInt32(uint32(v)) }

// WriteUInt32BE writes v big-endian, the one deliberate on-the-wire
// exception to this container's little-endian convention: the file
// header's magic number (§4.5).
func (b *buffer) WriteUInt32BE(v uint32) {
	b.WriteByte(byte(v >> 24))
	b.WriteByte(byte(v >> 16))
	b.WriteByte(byte(v >> 8))
	b.WriteByte(byte(v))
}

func (b *buffer) WriteUInt8(v uint8) { b.WriteByte(v) }

func (b *buffer) WriteInt16(v int16) {
	b.WriteByte(byte(v))
	b.WriteByte(byte(v >> 8))
}

func (b *buffer) WriteInt8(v int8) { b.WriteByte(byte(v)) }

func (b *buffer) WriteBool(v bool) {
	if v {
		b.WriteByte(1)
	} else {
		b.WriteByte(0)
	}
}

func (b *buffer) WriteFloat32Bits(bits uint32) { b.WriteUInt32(bits) }

func (b *buffer) WriteVarInt(v uint32) {
	writeVarInt(&b.Buffer, v)
}

func (b *buffer) WriteString(s string) {
	b.WriteVarInt(uint32(len(s)))
	b.Buffer.WriteString(s)
}

func (b *buffer) WriteBytes(p []byte) {
	b.WriteVarInt(uint32(len(p)))
	b.Buffer.Write(p)
}

type reader struct {
	r io.Reader
}

func newReader(r io.Reader) *reader {
	return &reader{r: r}
}

func (r *reader) readN(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, fmt.Errorf("format: read %d bytes: %w", n, err)
	}
	return buf, nil
}

func (r *reader) ReadUInt64() (uint64, error) {
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56, nil
}

func (r *reader) ReadInt64() (int64, error) {
	v, err := r.ReadUInt64()
	return int64(v), err
}

func (r *reader) ReadUInt32() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func (r *reader) ReadInt32() (int32, error) {
	v, err := r.ReadUInt32()
	return int32(v), err
}

// ReadUInt32BE is WriteUInt32BE's counterpart, used only for the file
// header's magic number.
func (r *reader) ReadUInt32BE() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

func (r *reader) ReadUInt8() (uint8, error) {
	b, err := r.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) ReadInt16() (int16, error) {
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}
	return int16(uint16(b[0]) | uint16(b[1])<<8), nil
}

func (r *reader) ReadInt8() (int8, error) {
	b, err := r.readN(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

func (r *reader) ReadBool() (bool, error) {
	b, err := r.readN(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (r *reader) ReadFloat32Bits() (uint32, error) {
	return r.ReadUInt32()
}

func (r *reader) ReadVarInt() (uint32, error) {
	br, ok := r.r.(io.ByteReader)
	if !ok {
		br = &byteReader{r: r.r}
	}
	return readVarInt(br)
}

func (r *reader) ReadString() (string, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return "", err
	}
	b, err := r.readN(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	return r.readN(int(n))
}

// byteReader adapts an io.Reader lacking ReadByte, mirroring the
// teacher's own adapter in binary.go.
type byteReader struct {
	r io.Reader
}

func (b *byteReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
