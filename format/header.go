package format

import "fmt"

// MagicNumber opens every Ooze file (spec.md §4.5), written big-endian on
// the wire (0x61 0x0B 0xB1 0x0B) while every other multi-byte field in
// the container is little-endian.
const MagicNumber uint32 = 0x610BB10B

// FormatVersion is the current on-disk version written by this codec.
const FormatVersion uint32 = 0

var (
	ErrBadMagic   = fmt.Errorf("format: not an ooze file (bad magic number)")
	ErrBadVersion = fmt.Errorf("format: unsupported ooze version")
)

func writeHeader(buf *buffer) {
	buf.WriteUInt32BE(MagicNumber)
	buf.WriteVarInt(FormatVersion)
}

func readHeader(r *reader) (version uint32, err error) {
	magic, err := r.ReadUInt32BE()
	if err != nil {
		return 0, fmt.Errorf("format: read magic number: %w", err)
	}
	if magic != MagicNumber {
		return 0, ErrBadMagic
	}
	version, err = r.ReadVarInt()
	if err != nil {
		return 0, fmt.Errorf("format: read version: %w", err)
	}
	if version > FormatVersion {
		return 0, fmt.Errorf("%w: file version %d, codec supports up to %d", ErrBadVersion, version, FormatVersion)
	}
	return version, nil
}
