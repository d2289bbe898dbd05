package format

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// CompressionLevel mirrors oriumgames-pile/format/io.go's enum, mapped
// onto klauspost/compress/zstd's speed levels.
type CompressionLevel int

const (
	CompressionNone CompressionLevel = iota
	CompressionFast
	CompressionDefault
	CompressionBest
)

func (c CompressionLevel) zstdLevel() zstd.EncoderLevel {
	switch c {
	case CompressionFast:
		return zstd.SpeedFastest
	case CompressionBest:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

var (
	encoderPoolMu sync.Mutex
	encoderPool   = map[zstd.EncoderLevel]*zstd.Encoder{}
)

// encoderFor returns the shared encoder for level, creating it on first
// use. EncodeAll itself is safe for concurrent use by multiple goroutines;
// only the pool's own population needs guarding.
func encoderFor(level zstd.EncoderLevel) (*zstd.Encoder, error) {
	encoderPoolMu.Lock()
	defer encoderPoolMu.Unlock()
	if enc, ok := encoderPool[level]; ok {
		return enc, nil
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("format: create zstd encoder: %w", err)
	}
	encoderPool[level] = enc
	return enc, nil
}

// encodeFrame produces a zstd_frame{uncompressed_length, compressed_length,
// bytes} blob per spec.md's canonical field order.
func encodeFrame(buf *buffer, data []byte, level CompressionLevel) error {
	enc, err := encoderFor(level.zstdLevel())
	if err != nil {
		return err
	}
	compressed := enc.EncodeAll(data, nil)
	buf.WriteVarInt(uint32(len(data)))
	buf.WriteVarInt(uint32(len(compressed)))
	buf.Buffer.Write(compressed)
	return nil
}

var (
	decoderMu     sync.Mutex
	sharedDecoder *zstd.Decoder
)

func decoder() (*zstd.Decoder, error) {
	decoderMu.Lock()
	defer decoderMu.Unlock()
	if sharedDecoder != nil {
		return sharedDecoder, nil
	}
	d, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("format: create zstd decoder: %w", err)
	}
	sharedDecoder = d
	return d, nil
}

// decodeFrame reads and inflates a zstd_frame, validating the decompressed
// length matches the header.
func decodeFrame(r *reader) ([]byte, error) {
	uncompressedLen, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("format: read frame uncompressed length: %w", err)
	}
	compressedLen, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("format: read frame compressed length: %w", err)
	}
	compressed, err := r.readN(int(compressedLen))
	if err != nil {
		return nil, fmt.Errorf("format: read frame payload: %w", err)
	}
	d, err := decoder()
	if err != nil {
		return nil, err
	}
	data, err := d.DecodeAll(compressed, make([]byte, 0, uncompressedLen))
	if err != nil {
		return nil, fmt.Errorf("format: inflate frame: %w", err)
	}
	if uint32(len(data)) != uncompressedLen {
		return nil, fmt.Errorf("format: frame declared %d bytes, got %d", uncompressedLen, len(data))
	}
	return data, nil
}
