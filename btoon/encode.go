package btoon

import (
	"encoding/binary"
	"math"
)

// Wire markers, MessagePack-derived. Fix ranges:
// positive fixint 0x00-0x7f, fixmap 0x80-0x8f, fixarray 0x90-0x9f,
// fixstr 0xa0-0xbf, negative fixint 0xe0-0xff.
const (
	markerNil     = 0xc0
	markerFalse   = 0xc2
	markerTrue    = 0xc3
	markerBin8    = 0xc4
	markerBin16   = 0xc5
	markerBin32   = 0xc6
	markerExt8    = 0xc7
	markerExt16   = 0xc8
	markerExt32   = 0xc9
	markerFloat32 = 0xca
	markerFloat64 = 0xcb
	markerUint8   = 0xcc
	markerUint16  = 0xcd
	markerUint32  = 0xce
	markerUint64  = 0xcf
	markerInt8    = 0xd0
	markerInt16   = 0xd1
	markerInt32   = 0xd2
	markerInt64   = 0xd3
	markerStr8    = 0xd9
	markerStr16   = 0xda
	markerStr32   = 0xdb
	markerArray16 = 0xdc
	markerArray32 = 0xdd
	markerMap16   = 0xde
	markerMap32   = 0xdf
)

// EncodeOptions configures top-level encoding.
type EncodeOptions struct {
	// Compression selects the envelope algorithm. The zero value (None)
	// stores the codec output uncompressed; Auto trials candidates and
	// keeps the smallest envelope.
	Compression Algorithm

	// Level is the compression effort preset. Zero means LevelDefault.
	Level Level
}

// Encode encodes a value to a complete BTOON document: codec output wrapped
// in a compression envelope. A nil opts encodes uncompressed.
func Encode(v *Value, opts *EncodeOptions) ([]byte, error) {
	raw := EncodeValue(v)
	if opts == nil {
		return Wrap(raw, None, LevelDefault)
	}
	return Wrap(raw, opts.Compression, opts.Level)
}

// EncodeValue encodes a value to raw codec bytes without an envelope.
// Encoding cannot fail: every constructible Value is encodable.
func EncodeValue(v *Value) []byte {
	return appendValue(nil, v)
}

func appendValue(dst []byte, v *Value) []byte {
	if v == nil {
		return append(dst, markerNil)
	}
	switch v.typ {
	case TypeNull:
		return append(dst, markerNil)
	case TypeBool:
		if v.boolVal {
			return append(dst, markerTrue)
		}
		return append(dst, markerFalse)
	case TypeInt:
		return appendInt(dst, v.intVal)
	case TypeFloat:
		dst = append(dst, markerFloat64)
		return binary.BigEndian.AppendUint64(dst, math.Float64bits(v.floatVal))
	case TypeString:
		return appendString(dst, v.strVal)
	case TypeBinary:
		return appendBinary(dst, v.binVal)
	case TypeArray:
		dst = appendArrayHeader(dst, len(v.arrVal))
		for _, elem := range v.arrVal {
			dst = appendValue(dst, elem)
		}
		return dst
	case TypeMap:
		dst = appendMapHeader(dst, len(v.mapVal))
		for _, e := range v.mapVal {
			dst = appendString(dst, e.Key)
			dst = appendValue(dst, e.Value)
		}
		return dst
	case TypeExtension:
		return appendExt(dst, v.extVal)
	default:
		// Unreachable: the constructors cover every Type.
		return append(dst, markerNil)
	}
}

// appendInt picks the smallest marker that holds the value. Non-negative
// values use the unsigned family, negative values the signed one; sign is
// preserved exactly either way.
func appendInt(dst []byte, v int64) []byte {
	if v >= 0 {
		switch {
		case v <= 0x7f:
			return append(dst, byte(v))
		case v <= math.MaxUint8:
			return append(dst, markerUint8, byte(v))
		case v <= math.MaxUint16:
			dst = append(dst, markerUint16)
			return binary.BigEndian.AppendUint16(dst, uint16(v))
		case v <= math.MaxUint32:
			dst = append(dst, markerUint32)
			return binary.BigEndian.AppendUint32(dst, uint32(v))
		default:
			dst = append(dst, markerUint64)
			return binary.BigEndian.AppendUint64(dst, uint64(v))
		}
	}
	switch {
	case v >= -32:
		return append(dst, byte(v))
	case v >= math.MinInt8:
		return append(dst, markerInt8, byte(v))
	case v >= math.MinInt16:
		dst = append(dst, markerInt16)
		return binary.BigEndian.AppendUint16(dst, uint16(v))
	case v >= math.MinInt32:
		dst = append(dst, markerInt32)
		return binary.BigEndian.AppendUint32(dst, uint32(v))
	default:
		dst = append(dst, markerInt64)
		return binary.BigEndian.AppendUint64(dst, uint64(v))
	}
}

func appendString(dst []byte, s string) []byte {
	n := len(s)
	switch {
	case n <= 31:
		dst = append(dst, 0xa0|byte(n))
	case n <= math.MaxUint8:
		dst = append(dst, markerStr8, byte(n))
	case n <= math.MaxUint16:
		dst = append(dst, markerStr16)
		dst = binary.BigEndian.AppendUint16(dst, uint16(n))
	default:
		dst = append(dst, markerStr32)
		dst = binary.BigEndian.AppendUint32(dst, uint32(n))
	}
	return append(dst, s...)
}

func appendBinary(dst []byte, b []byte) []byte {
	n := len(b)
	switch {
	case n <= math.MaxUint8:
		dst = append(dst, markerBin8, byte(n))
	case n <= math.MaxUint16:
		dst = append(dst, markerBin16)
		dst = binary.BigEndian.AppendUint16(dst, uint16(n))
	default:
		dst = append(dst, markerBin32)
		dst = binary.BigEndian.AppendUint32(dst, uint32(n))
	}
	return append(dst, b...)
}

func appendArrayHeader(dst []byte, n int) []byte {
	switch {
	case n <= 15:
		return append(dst, 0x90|byte(n))
	case n <= math.MaxUint16:
		dst = append(dst, markerArray16)
		return binary.BigEndian.AppendUint16(dst, uint16(n))
	default:
		dst = append(dst, markerArray32)
		return binary.BigEndian.AppendUint32(dst, uint32(n))
	}
}

func appendMapHeader(dst []byte, n int) []byte {
	switch {
	case n <= 15:
		return append(dst, 0x80|byte(n))
	case n <= math.MaxUint16:
		dst = append(dst, markerMap16)
		return binary.BigEndian.AppendUint16(dst, uint16(n))
	default:
		dst = append(dst, markerMap32)
		return binary.BigEndian.AppendUint32(dst, uint32(n))
	}
}

// appendExt encodes an extension: an ext marker with the total content
// length, where the content is the type name encoded as a string followed
// by the payload encoded as binary.
func appendExt(dst []byte, ext *ExtValue) []byte {
	content := appendString(nil, ext.Name)
	content = appendBinary(content, ext.Data)

	n := len(content)
	switch {
	case n <= math.MaxUint8:
		dst = append(dst, markerExt8, byte(n))
	case n <= math.MaxUint16:
		dst = append(dst, markerExt16)
		dst = binary.BigEndian.AppendUint16(dst, uint16(n))
	default:
		dst = append(dst, markerExt32)
		dst = binary.BigEndian.AppendUint32(dst, uint32(n))
	}
	return append(dst, content...)
}
