// Package stream implements the BTOON streaming protocol: a sequence of
// independently decodable documents, each framed as a 4-byte big-endian
// length followed by exactly that many payload bytes. The payload of every
// frame is one complete BTOON document (compression envelope included), so
// frames can be decoded without session state.
//
// The package never opens files or sockets; callers supply the byte sink
// and source. Closing the underlying reader or writer is how in-flight
// operations get cancelled.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btoon-project/btoon-go/btoon"
)

// Writer writes length-prefixed BTOON frames to an io.Writer.
type Writer struct {
	w    io.Writer
	opts btoon.EncodeOptions
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompression sets the envelope algorithm for every frame written in
// this session.
func WithCompression(algo btoon.Algorithm) WriterOption {
	return func(w *Writer) {
		w.opts.Compression = algo
	}
}

// WithLevel sets the compression effort preset.
func WithLevel(level btoon.Level) WriterOption {
	return func(w *Writer) {
		w.opts.Level = level
	}
}

// NewWriter creates a frame writer. Frames are uncompressed unless
// WithCompression says otherwise.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	writer := &Writer{w: w}
	for _, opt := range opts {
		opt(writer)
	}
	return writer
}

// Write encodes one value per the session options and emits its frame.
// The call returns once header and payload are fully handed to the sink.
// A partial write leaves the stream corrupted past that point; the caller
// must abandon it.
func (w *Writer) Write(v *btoon.Value) error {
	payload, err := btoon.Encode(v, &w.opts)
	if err != nil {
		return fmt.Errorf("stream: encode: %w", err)
	}
	return w.WriteFrame(payload)
}

// WriteFrame emits an already-encoded BTOON document as one frame.
func (w *Writer) WriteFrame(payload []byte) error {
	if len(payload) > 0xffffffff {
		return fmt.Errorf("stream: frame of %d bytes exceeds u32 length prefix", len(payload))
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("stream: write header: %w", err)
	}
	if _, err := w.w.Write(payload); err != nil {
		return fmt.Errorf("stream: write payload: %w", err)
	}
	return nil
}
