package btoon

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// Decode decodes a complete BTOON document: unwraps the compression
// envelope, then decodes the codec payload.
func Decode(data []byte) (*Value, error) {
	raw, err := Unwrap(data)
	if err != nil {
		return nil, err
	}
	return DecodeValue(raw)
}

// DecodeValue decodes raw codec bytes (no envelope) into a Value.
// Bounds are always checked: reads past the buffer fail with ErrTruncated,
// markers outside the BTOON set fail with ErrUnknownTag.
func DecodeValue(data []byte) (*Value, error) {
	d := &decoder{data: data}
	return d.value()
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) value() (*Value, error) {
	marker, err := d.byte()
	if err != nil {
		return nil, err
	}

	switch {
	case marker <= 0x7f: // positive fixint
		return Int(int64(marker)), nil
	case marker >= 0xe0: // negative fixint
		return Int(int64(int8(marker))), nil
	case marker >= 0x80 && marker <= 0x8f:
		return d.mapValue(int(marker & 0x0f))
	case marker >= 0x90 && marker <= 0x9f:
		return d.arrayValue(int(marker & 0x0f))
	case marker >= 0xa0 && marker <= 0xbf:
		return d.stringValue(int(marker & 0x1f))
	}

	switch marker {
	case markerNil:
		return Null(), nil
	case markerFalse:
		return Bool(false), nil
	case markerTrue:
		return Bool(true), nil

	case markerUint8, markerUint16, markerUint32, markerUint64:
		return d.uintValue(marker)
	case markerInt8, markerInt16, markerInt32, markerInt64:
		return d.intValue(marker)

	case markerFloat32:
		bits, err := d.uint32()
		if err != nil {
			return nil, err
		}
		return Float(float64(math.Float32frombits(bits))), nil
	case markerFloat64:
		bits, err := d.uint64()
		if err != nil {
			return nil, err
		}
		return Float(math.Float64frombits(bits)), nil

	case markerStr8, markerStr16, markerStr32:
		n, err := d.length(marker - markerStr8)
		if err != nil {
			return nil, err
		}
		return d.stringValue(n)
	case markerBin8, markerBin16, markerBin32:
		n, err := d.length(marker - markerBin8)
		if err != nil {
			return nil, err
		}
		return d.binaryValue(n)
	case markerExt8, markerExt16, markerExt32:
		n, err := d.length(marker - markerExt8)
		if err != nil {
			return nil, err
		}
		return d.extValue(n)

	case markerArray16:
		n, err := d.uint16()
		if err != nil {
			return nil, err
		}
		return d.arrayValue(int(n))
	case markerArray32:
		n, err := d.uint32()
		if err != nil {
			return nil, err
		}
		return d.arrayValue(int(n))
	case markerMap16:
		n, err := d.uint16()
		if err != nil {
			return nil, err
		}
		return d.mapValue(int(n))
	case markerMap32:
		n, err := d.uint32()
		if err != nil {
			return nil, err
		}
		return d.mapValue(int(n))

	default:
		// 0xc1 and the fixext range 0xd4-0xd8 are unassigned in BTOON.
		return nil, decodeErr(ErrUnknownTag, d.pos-1)
	}
}

func (d *decoder) uintValue(marker byte) (*Value, error) {
	switch marker {
	case markerUint8:
		b, err := d.byte()
		if err != nil {
			return nil, err
		}
		return Int(int64(b)), nil
	case markerUint16:
		v, err := d.uint16()
		if err != nil {
			return nil, err
		}
		return Int(int64(v)), nil
	case markerUint32:
		v, err := d.uint32()
		if err != nil {
			return nil, err
		}
		return Int(int64(v)), nil
	default: // markerUint64
		v, err := d.uint64()
		if err != nil {
			return nil, err
		}
		if v > math.MaxInt64 {
			return nil, decodeErr(ErrIntOverflow, d.pos-8)
		}
		return Int(int64(v)), nil
	}
}

func (d *decoder) intValue(marker byte) (*Value, error) {
	switch marker {
	case markerInt8:
		b, err := d.byte()
		if err != nil {
			return nil, err
		}
		return Int(int64(int8(b))), nil
	case markerInt16:
		v, err := d.uint16()
		if err != nil {
			return nil, err
		}
		return Int(int64(int16(v))), nil
	case markerInt32:
		v, err := d.uint32()
		if err != nil {
			return nil, err
		}
		return Int(int64(int32(v))), nil
	default: // markerInt64
		v, err := d.uint64()
		if err != nil {
			return nil, err
		}
		return Int(int64(v)), nil
	}
}

func (d *decoder) stringValue(n int) (*Value, error) {
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		return nil, decodeErr(ErrInvalidUTF8, d.pos-n)
	}
	return String(string(b)), nil
}

func (d *decoder) binaryValue(n int) (*Value, error) {
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return Binary(out), nil
}

func (d *decoder) arrayValue(n int) (*Value, error) {
	arr := &Value{typ: TypeArray, arrVal: make([]*Value, 0, min(n, 4096))}
	for i := 0; i < n; i++ {
		elem, err := d.value()
		if err != nil {
			return nil, err
		}
		arr.arrVal = append(arr.arrVal, elem)
	}
	return arr, nil
}

func (d *decoder) mapValue(n int) (*Value, error) {
	m := &Value{typ: TypeMap, mapVal: make([]MapEntry, 0, min(n, 4096))}
	for i := 0; i < n; i++ {
		key, err := d.value()
		if err != nil {
			return nil, err
		}
		ks, err := key.AsString()
		if err != nil {
			return nil, fmt.Errorf("%w: map key at offset %d: %v", ErrUnknownTag, d.pos, err)
		}
		val, err := d.value()
		if err != nil {
			return nil, err
		}
		// Duplicate keys overwrite, keeping first position.
		m.Set(ks, val)
	}
	return m, nil
}

// extValue decodes an extension body of n content bytes: a string type name
// followed by a binary payload, which together must consume exactly n bytes.
func (d *decoder) extValue(n int) (*Value, error) {
	start := d.pos
	if _, err := d.take(n); err != nil {
		return nil, err
	}
	// Re-decode within the content window so inner reads cannot spill into
	// the bytes that follow the extension.
	sub := &decoder{data: d.data[:start+n], pos: start}

	name, err := sub.value()
	if err != nil {
		return nil, err
	}
	ns, err := name.AsString()
	if err != nil {
		return nil, fmt.Errorf("%w: name at offset %d: %v", ErrMalformedExtension, start, err)
	}
	payload, err := sub.value()
	if err != nil {
		return nil, err
	}
	pb, err := payload.AsBinary()
	if err != nil {
		return nil, fmt.Errorf("%w: payload at offset %d: %v", ErrMalformedExtension, start, err)
	}
	if sub.pos != start+n {
		return nil, fmt.Errorf("%w: length mismatch at offset %d", ErrMalformedExtension, start)
	}
	return Ext(ns, pb), nil
}

// ============================================================
// Primitive reads
// ============================================================

func (d *decoder) byte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, decodeErr(ErrTruncated, d.pos)
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || d.pos+n > len(d.data) {
		return nil, decodeErr(ErrTruncated, d.pos)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) uint16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *decoder) uint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *decoder) uint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// length reads a 1, 2 or 4 byte big-endian length selected by width index
// 0, 1 or 2 (the offset from the family's 8-bit marker).
func (d *decoder) length(width byte) (int, error) {
	switch width {
	case 0:
		b, err := d.byte()
		return int(b), err
	case 1:
		v, err := d.uint16()
		return int(v), err
	default:
		v, err := d.uint32()
		return int(v), err
	}
}
