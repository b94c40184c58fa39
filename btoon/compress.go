package btoon

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm identifies a compression algorithm for the document envelope.
type Algorithm uint8

const (
	None Algorithm = iota
	Zlib
	Lz4
	Zstd
	Brotli
	Snappy

	// Auto trials a candidate set and keeps the smallest envelope; ties
	// prefer None so decoders pay no decompression cost for no gain.
	Auto
)

// Envelope algorithm ids on the wire.
const (
	idZlib   = 0
	idLz4    = 1
	idZstd   = 2
	idBrotli = 3
	idSnappy = 4
	idNone   = 255
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Zlib:
		return "zlib"
	case Lz4:
		return "lz4"
	case Zstd:
		return "zstd"
	case Brotli:
		return "brotli"
	case Snappy:
		return "snappy"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseAlgorithm parses an algorithm name as used in CLI flags and schema
// files.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "", "none":
		return None, nil
	case "zlib":
		return Zlib, nil
	case "lz4":
		return Lz4, nil
	case "zstd":
		return Zstd, nil
	case "brotli":
		return Brotli, nil
	case "snappy":
		return Snappy, nil
	case "auto":
		return Auto, nil
	default:
		return None, fmt.Errorf("btoon: unknown compression algorithm %q", s)
	}
}

func (a Algorithm) wireID() byte {
	switch a {
	case Zlib:
		return idZlib
	case Lz4:
		return idLz4
	case Zstd:
		return idZstd
	case Brotli:
		return idBrotli
	case Snappy:
		return idSnappy
	default:
		return idNone
	}
}

func algorithmFromWireID(id byte) (Algorithm, bool) {
	switch id {
	case idZlib:
		return Zlib, true
	case idLz4:
		return Lz4, true
	case idZstd:
		return Zstd, true
	case idBrotli:
		return Brotli, true
	case idSnappy:
		return Snappy, true
	case idNone:
		return None, true
	default:
		return None, false
	}
}

// Level is a compression effort preset, mapped per algorithm.
type Level uint8

const (
	LevelDefault Level = iota
	LevelFastest
	LevelBest
)

// autoCandidates is the trial set for Auto. None first: a tie keeps it.
var autoCandidates = []Algorithm{None, Zlib, Zstd}

// Wrap builds a compression envelope around codec output:
// algorithm id (u8), uncompressed length (uvarint), payload.
func Wrap(data []byte, algo Algorithm, level Level) ([]byte, error) {
	if algo == Auto {
		var best []byte
		for _, cand := range autoCandidates {
			env, err := Wrap(data, cand, level)
			if err != nil {
				return nil, err
			}
			if best == nil || len(env) < len(best) {
				best = env
			}
		}
		return best, nil
	}

	payload, err := compress(data, algo, level)
	if err != nil {
		return nil, err
	}

	env := make([]byte, 0, 1+binary.MaxVarintLen64+len(payload))
	env = append(env, algo.wireID())
	env = binary.AppendUvarint(env, uint64(len(data)))
	return append(env, payload...), nil
}

// Unwrap opens a compression envelope and returns the codec bytes. A
// decompressed size that does not match the stored uncompressed length
// fails with ErrCorruptEnvelope.
func Unwrap(env []byte) ([]byte, error) {
	if len(env) == 0 {
		return nil, decodeErr(ErrTruncated, 0)
	}
	algo, ok := algorithmFromWireID(env[0])
	if !ok {
		return nil, fmt.Errorf("%w: unknown algorithm id 0x%02x", ErrCorruptEnvelope, env[0])
	}
	size, n := binary.Uvarint(env[1:])
	if n <= 0 {
		return nil, decodeErr(ErrTruncated, 1)
	}
	payload := env[1+n:]

	data, err := decompress(payload, algo)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptEnvelope, algo, err)
	}
	if uint64(len(data)) != size {
		return nil, fmt.Errorf("%w: decompressed %d bytes, envelope declares %d",
			ErrCorruptEnvelope, len(data), size)
	}
	return data, nil
}

// EnvelopeInfo describes a document envelope without opening it.
type EnvelopeInfo struct {
	Algorithm          Algorithm
	UncompressedLength uint64
	PayloadLength      int
}

// Envelope reads the header of a document envelope.
func Envelope(env []byte) (EnvelopeInfo, error) {
	if len(env) == 0 {
		return EnvelopeInfo{}, decodeErr(ErrTruncated, 0)
	}
	algo, ok := algorithmFromWireID(env[0])
	if !ok {
		return EnvelopeInfo{}, fmt.Errorf("%w: unknown algorithm id 0x%02x", ErrCorruptEnvelope, env[0])
	}
	size, n := binary.Uvarint(env[1:])
	if n <= 0 {
		return EnvelopeInfo{}, decodeErr(ErrTruncated, 1)
	}
	return EnvelopeInfo{
		Algorithm:          algo,
		UncompressedLength: size,
		PayloadLength:      len(env) - 1 - n,
	}, nil
}

func compress(data []byte, algo Algorithm, level Level) ([]byte, error) {
	switch algo {
	case None:
		return data, nil

	case Zlib:
		var buf bytes.Buffer
		w, err := zlib.NewWriterLevel(&buf, zlibLevel(level))
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case Lz4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if err := w.Apply(lz4.CompressionLevelOption(lz4Level(level))); err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case Zstd:
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstdLevel(level)),
			zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		out := enc.EncodeAll(data, nil)
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return out, nil

	case Brotli:
		var buf bytes.Buffer
		w := brotli.NewWriterLevel(&buf, brotliLevel(level))
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case Snappy:
		return snappy.Encode(nil, data), nil

	default:
		return nil, fmt.Errorf("btoon: unsupported compression algorithm %d", algo)
	}
}

func decompress(payload []byte, algo Algorithm) ([]byte, error) {
	switch algo {
	case None:
		return payload, nil

	case Zlib:
		r, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)

	case Lz4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(payload)))

	case Zstd:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(payload, nil)

	case Brotli:
		return io.ReadAll(brotli.NewReader(bytes.NewReader(payload)))

	case Snappy:
		return snappy.Decode(nil, payload)

	default:
		return nil, fmt.Errorf("btoon: unsupported compression algorithm %d", algo)
	}
}

// ============================================================
// Per-algorithm level mapping
// ============================================================

func zlibLevel(l Level) int {
	switch l {
	case LevelFastest:
		return zlib.BestSpeed
	case LevelBest:
		return zlib.BestCompression
	default:
		return zlib.DefaultCompression
	}
}

func lz4Level(l Level) lz4.CompressionLevel {
	if l == LevelBest {
		return lz4.Level9
	}
	return lz4.Fast
}

func zstdLevel(l Level) zstd.EncoderLevel {
	switch l {
	case LevelFastest:
		return zstd.SpeedFastest
	case LevelBest:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

func brotliLevel(l Level) int {
	switch l {
	case LevelFastest:
		return brotli.BestSpeed
	case LevelBest:
		return brotli.BestCompression
	default:
		return brotli.DefaultCompression
	}
}
