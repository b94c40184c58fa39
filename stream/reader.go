package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/btoon-project/btoon-go/btoon"
)

// DefaultMaxPayload is the default per-frame payload limit (64 MiB).
const DefaultMaxPayload = 64 << 20

// Reader reads length-prefixed BTOON frames from an io.Reader. It is a
// forward-only sequence: once a frame fails, the error latches and the
// reader never resynchronizes. A fresh sequence needs a fresh Reader at
// the stream start.
type Reader struct {
	r          io.Reader
	maxPayload int
	err        error // latched terminal error (including io.EOF)
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxPayload sets the maximum accepted frame payload size.
func WithMaxPayload(max int) ReaderOption {
	return func(r *Reader) {
		r.maxPayload = max
	}
}

// NewReader creates a frame reader.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{r: r, maxPayload: DefaultMaxPayload}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Next reads and decodes the next value.
// Returns io.EOF when the source ends cleanly at a frame boundary.
// A header cut short fails with btoon.ErrTruncatedHeader; a payload cut
// short fails with btoon.ErrIncompleteFrame.
func (r *Reader) Next() (*btoon.Value, error) {
	if r.err != nil {
		return nil, r.err
	}
	payload, err := r.nextFrame()
	if err != nil {
		r.err = err
		return nil, err
	}
	v, err := btoon.Decode(payload)
	if err != nil {
		r.err = err
		return nil, err
	}
	return v, nil
}

// NextFrame reads the next raw frame payload without decoding it.
func (r *Reader) NextFrame() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	payload, err := r.nextFrame()
	if err != nil {
		r.err = err
	}
	return payload, err
}

func (r *Reader) nextFrame() ([]byte, error) {
	var hdr [4]byte
	switch _, err := io.ReadFull(r.r, hdr[:]); {
	case err == nil:
	case errors.Is(err, io.EOF):
		// Zero header bytes: clean end of stream.
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, btoon.ErrTruncatedHeader
	default:
		return nil, fmt.Errorf("stream: read header: %w", err)
	}

	length := int(binary.BigEndian.Uint32(hdr[:]))
	if length > r.maxPayload {
		return nil, fmt.Errorf("stream: frame of %d bytes exceeds limit %d", length, r.maxPayload)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, btoon.ErrIncompleteFrame
		}
		return nil, fmt.Errorf("stream: read payload: %w", err)
	}
	return payload, nil
}
