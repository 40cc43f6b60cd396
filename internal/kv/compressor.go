package kv

import (
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

type Compressor interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
	Close()
}

type ZstdCompression struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (z *ZstdCompression) Compress(val []byte) ([]byte, error) {
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/2)), nil
}

func (z *ZstdCompression) Decompress(val []byte) ([]byte, error) {
	return z.decoder.DecodeAll(val, nil)
}

func (z *ZstdCompression) Close() {
	_ = z.encoder.Close()
	z.decoder.Close()
}

func NewZstdCompressor() (Compressor, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdCompression{encoder: encoder, decoder: decoder}, nil
}

type SnappyCompression struct{}

func (s *SnappyCompression) Compress(val []byte) ([]byte, error) {
	return snappy.Encode(nil, val), nil
}

func (s *SnappyCompression) Decompress(val []byte) ([]byte, error) {
	return snappy.Decode(nil, val)
}

func (s *SnappyCompression) Close() {}

type NoCompression struct{}

func (n *NoCompression) Compress(val []byte) ([]byte, error) {
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (n *NoCompression) Decompress(val []byte) ([]byte, error) {
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (n *NoCompression) Close() {}

// NewCompressor maps a storage.compression setting to a Compressor.
func NewCompressor(name string) (Compressor, error) {
	switch name {
	case "", "zstd":
		return NewZstdCompressor()
	case "snappy":
		return &SnappyCompression{}, nil
	case "none":
		return &NoCompression{}, nil
	}
	return nil, fmt.Errorf("unknown compression %q", name)
}
