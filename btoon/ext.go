package btoon

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"
)

// Extension type names used by the Go binding layer. The codec never
// interprets them; any other name is carried through untouched.
const (
	ExtTimestamp = "timestamp"  // 12 bytes: epoch seconds (i64 BE) + nanos (u32 BE)
	ExtDate      = "date"       // 8 bytes: epoch milliseconds (i64 BE)
	ExtDateTime  = "datetime"   // 8 bytes: epoch nanoseconds (i64 BE)
	ExtBigInt    = "bigint"     // sign byte (0 or 1) + big-endian magnitude
	ExtDecimal   = "decimal"    // ASCII decimal string, e.g. "-123.45"
	ExtVectorF32 = "vector_f32" // packed IEEE-754 float32 BE
	ExtVectorF64 = "vector_f64" // packed IEEE-754 float64 BE
)

// Timestamp creates a timestamp extension from a time.Time.
func Timestamp(t time.Time) *Value {
	data := make([]byte, 12)
	binary.BigEndian.PutUint64(data, uint64(t.Unix()))
	binary.BigEndian.PutUint32(data[8:], uint32(t.Nanosecond()))
	return Ext(ExtTimestamp, data)
}

// TimeOf extracts the time from a timestamp extension.
func TimeOf(v *Value) (time.Time, error) {
	data, err := extPayload(v, ExtTimestamp, 12)
	if err != nil {
		return time.Time{}, err
	}
	sec := int64(binary.BigEndian.Uint64(data))
	nanos := binary.BigEndian.Uint32(data[8:])
	return time.Unix(sec, int64(nanos)).UTC(), nil
}

// Date creates a date extension from epoch milliseconds.
func Date(millis int64) *Value {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, uint64(millis))
	return Ext(ExtDate, data)
}

// DateOf extracts epoch milliseconds from a date extension.
func DateOf(v *Value) (int64, error) {
	data, err := extPayload(v, ExtDate, 8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(data)), nil
}

// DateTime creates a datetime extension from epoch nanoseconds.
func DateTime(nanos int64) *Value {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, uint64(nanos))
	return Ext(ExtDateTime, data)
}

// DateTimeOf extracts epoch nanoseconds from a datetime extension.
func DateTimeOf(v *Value) (int64, error) {
	data, err := extPayload(v, ExtDateTime, 8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(data)), nil
}

// BigInt creates a bigint extension from a math/big integer.
func BigInt(n *big.Int) *Value {
	sign := byte(0)
	if n.Sign() < 0 {
		sign = 1
	}
	mag := n.Bytes()
	data := make([]byte, 1+len(mag))
	data[0] = sign
	copy(data[1:], mag)
	return Ext(ExtBigInt, data)
}

// BigIntOf extracts the integer from a bigint extension.
func BigIntOf(v *Value) (*big.Int, error) {
	ext, err := namedExt(v, ExtBigInt)
	if err != nil {
		return nil, err
	}
	if len(ext.Data) < 1 {
		return nil, fmt.Errorf("btoon: bigint payload too short")
	}
	n := new(big.Int).SetBytes(ext.Data[1:])
	if ext.Data[0] != 0 {
		n.Neg(n)
	}
	return n, nil
}

// Decimal creates a decimal extension from its string form. The string
// must be an optionally signed sequence of digits with at most one dot.
func Decimal(s string) (*Value, error) {
	if _, _, ok := parseDecimal(s); !ok {
		return nil, fmt.Errorf("btoon: invalid decimal %q", s)
	}
	return Ext(ExtDecimal, []byte(s)), nil
}

// DecimalOf extracts the string form from a decimal extension.
func DecimalOf(v *Value) (string, error) {
	ext, err := namedExt(v, ExtDecimal)
	if err != nil {
		return "", err
	}
	s := string(ext.Data)
	if _, _, ok := parseDecimal(s); !ok {
		return "", fmt.Errorf("btoon: invalid decimal payload %q", s)
	}
	return s, nil
}

// Float32Vector creates a vector_f32 extension from packed floats.
func Float32Vector(fs []float32) *Value {
	data := make([]byte, 0, 4*len(fs))
	for _, f := range fs {
		data = binary.BigEndian.AppendUint32(data, math.Float32bits(f))
	}
	return Ext(ExtVectorF32, data)
}

// Float32VectorOf extracts the floats from a vector_f32 extension.
func Float32VectorOf(v *Value) ([]float32, error) {
	ext, err := namedExt(v, ExtVectorF32)
	if err != nil {
		return nil, err
	}
	if len(ext.Data)%4 != 0 {
		return nil, fmt.Errorf("btoon: vector_f32 payload length %d not a multiple of 4", len(ext.Data))
	}
	out := make([]float32, len(ext.Data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.BigEndian.Uint32(ext.Data[4*i:]))
	}
	return out, nil
}

// Float64Vector creates a vector_f64 extension from packed floats.
func Float64Vector(fs []float64) *Value {
	data := make([]byte, 0, 8*len(fs))
	for _, f := range fs {
		data = binary.BigEndian.AppendUint64(data, math.Float64bits(f))
	}
	return Ext(ExtVectorF64, data)
}

// Float64VectorOf extracts the floats from a vector_f64 extension.
func Float64VectorOf(v *Value) ([]float64, error) {
	ext, err := namedExt(v, ExtVectorF64)
	if err != nil {
		return nil, err
	}
	if len(ext.Data)%8 != 0 {
		return nil, fmt.Errorf("btoon: vector_f64 payload length %d not a multiple of 8", len(ext.Data))
	}
	out := make([]float64, len(ext.Data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.BigEndian.Uint64(ext.Data[8*i:]))
	}
	return out, nil
}

// ============================================================
// Helpers
// ============================================================

func namedExt(v *Value, name string) (*ExtValue, error) {
	ext, err := v.AsExt()
	if err != nil {
		return nil, err
	}
	if ext.Name != name {
		return nil, fmt.Errorf("btoon: expected %s extension, got %q", name, ext.Name)
	}
	return ext, nil
}

func extPayload(v *Value, name string, size int) ([]byte, error) {
	ext, err := namedExt(v, name)
	if err != nil {
		return nil, err
	}
	if len(ext.Data) != size {
		return nil, fmt.Errorf("btoon: %s payload is %d bytes, want %d", name, len(ext.Data), size)
	}
	return ext.Data, nil
}

// decimalDigits reports precision (significant digits) and scale (fraction
// digits) of a decimal extension payload.
func decimalDigits(ext *ExtValue) (precision, scale int, ok bool) {
	if ext.Name != ExtDecimal {
		return 0, 0, false
	}
	return parseDecimal(string(ext.Data))
}

func parseDecimal(s string) (precision, scale int, ok bool) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	if s == "" {
		return 0, 0, false
	}
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if hasDot && fracPart == "" {
		return 0, 0, false
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return 0, 0, false
		}
	}
	trimmed := strings.TrimLeft(intPart, "0")
	precision = len(trimmed) + len(fracPart)
	if precision == 0 {
		precision = 1 // the value zero
	}
	return precision, len(fracPart), true
}
