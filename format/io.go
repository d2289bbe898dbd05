package format

import (
	"fmt"
	"io"
	"os"

	"github.com/oriumgames/ooze/voxel"
)

// Write encodes l to w using DefaultEncodeOptions. Grounded on
// oriumgames-pile/format/io.go's Read/Write pair.
func Write(w io.Writer, l *voxel.Level) error {
	return WriteWithOptions(w, l, DefaultEncodeOptions())
}

// WriteWithOptions encodes l to w with explicit compression/data-version
// settings.
func WriteWithOptions(w io.Writer, l *voxel.Level, opts EncodeOptions) error {
	buf := newBuffer()
	writeHeader(buf)
	if err := EncodeLevel(buf, l, opts); err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("format: write ooze file: %w", err)
	}
	return nil
}

// WriteFile is a convenience wrapper that creates (or truncates) path and
// writes l to it.
func WriteFile(path string, l *voxel.Level, opts EncodeOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("format: create %s: %w", path, err)
	}
	defer f.Close()
	return WriteWithOptions(f, l, opts)
}

// Read decodes a level from r. minSection/maxSection seed the resulting
// Level's bounds (the wire format doesn't carry them independently of the
// caller's world configuration, matching spec.md §4.4's Level invariant
// that bounds are a property of the hosting world, not the file).
func Read(r io.Reader, minSection, maxSection int32) (*voxel.Level, error) {
	rd := newReader(r)
	if _, err := readHeader(rd); err != nil {
		return nil, err
	}
	return DecodeLevel(rd, minSection, maxSection)
}

// ReadFile is a convenience wrapper that opens path and decodes it.
func ReadFile(path string, minSection, maxSection int32) (*voxel.Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("format: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, minSection, maxSection)
}
