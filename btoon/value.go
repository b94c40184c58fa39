package btoon

import (
	"bytes"
	"fmt"
)

// Type represents BTOON value types.
type Type uint8

const (
	TypeNull Type = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeBinary
	TypeArray
	TypeMap
	TypeExtension
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBinary:
		return "binary"
	case TypeArray:
		return "array"
	case TypeMap:
		return "map"
	case TypeExtension:
		return "extension"
	default:
		return "unknown"
	}
}

// Value represents a BTOON value.
type Value struct {
	typ Type

	// Scalar values (only one valid based on typ)
	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string
	binVal   []byte

	// Container values
	arrVal []*Value
	mapVal []MapEntry

	// Extension
	extVal *ExtValue
}

// MapEntry represents a key-value pair in a map.
type MapEntry struct {
	Key   string
	Value *Value
}

// ExtValue represents an extension: a named, opaque payload.
type ExtValue struct {
	Name string // Type discriminator, e.g. "timestamp", "decimal"
	Data []byte // Payload bytes, never interpreted by the codec
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{typ: TypeNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{typ: TypeBool, boolVal: v}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return &Value{typ: TypeInt, intVal: v}
}

// Float creates a float value.
func Float(v float64) *Value {
	return &Value{typ: TypeFloat, floatVal: v}
}

// String creates a string value.
func String(v string) *Value {
	return &Value{typ: TypeString, strVal: v}
}

// Binary creates a binary value.
func Binary(v []byte) *Value {
	return &Value{typ: TypeBinary, binVal: v}
}

// Array creates an array value.
func Array(values ...*Value) *Value {
	return &Value{typ: TypeArray, arrVal: values}
}

// Map creates a map value from key-value entries. Duplicate keys keep the
// last value, at the position of the first occurrence.
func Map(entries ...MapEntry) *Value {
	v := &Value{typ: TypeMap, mapVal: make([]MapEntry, 0, len(entries))}
	for _, e := range entries {
		v.Set(e.Key, e.Value)
	}
	return v
}

// Ext creates an extension value.
func Ext(name string, data []byte) *Value {
	return &Value{typ: TypeExtension, extVal: &ExtValue{Name: name, Data: data}}
}

// Entry creates a MapEntry for use in Map construction.
func Entry(key string, value *Value) MapEntry {
	return MapEntry{Key: key, Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Type returns the value type.
func (v *Value) Type() Type {
	if v == nil {
		return TypeNull
	}
	return v.typ
}

// IsNull returns true if this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.typ == TypeNull
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if v == nil {
		return false, fmt.Errorf("btoon: nil value")
	}
	if v.typ != TypeBool {
		return false, fmt.Errorf("btoon: expected bool, got %s", v.typ)
	}
	return v.boolVal, nil
}

// AsInt returns the integer value.
func (v *Value) AsInt() (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("btoon: nil value")
	}
	if v.typ != TypeInt {
		return 0, fmt.Errorf("btoon: expected int, got %s", v.typ)
	}
	return v.intVal, nil
}

// AsFloat returns the float value.
func (v *Value) AsFloat() (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("btoon: nil value")
	}
	if v.typ != TypeFloat {
		return 0, fmt.Errorf("btoon: expected float, got %s", v.typ)
	}
	return v.floatVal, nil
}

// AsString returns the string value.
func (v *Value) AsString() (string, error) {
	if v == nil {
		return "", fmt.Errorf("btoon: nil value")
	}
	if v.typ != TypeString {
		return "", fmt.Errorf("btoon: expected string, got %s", v.typ)
	}
	return v.strVal, nil
}

// AsBinary returns the binary value.
func (v *Value) AsBinary() ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("btoon: nil value")
	}
	if v.typ != TypeBinary {
		return nil, fmt.Errorf("btoon: expected binary, got %s", v.typ)
	}
	return v.binVal, nil
}

// AsArray returns the array elements.
func (v *Value) AsArray() ([]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("btoon: nil value")
	}
	if v.typ != TypeArray {
		return nil, fmt.Errorf("btoon: expected array, got %s", v.typ)
	}
	return v.arrVal, nil
}

// AsMap returns the map entries in insertion order.
func (v *Value) AsMap() ([]MapEntry, error) {
	if v == nil {
		return nil, fmt.Errorf("btoon: nil value")
	}
	if v.typ != TypeMap {
		return nil, fmt.Errorf("btoon: expected map, got %s", v.typ)
	}
	return v.mapVal, nil
}

// AsExt returns the extension value.
func (v *Value) AsExt() (*ExtValue, error) {
	if v == nil {
		return nil, fmt.Errorf("btoon: nil value")
	}
	if v.typ != TypeExtension {
		return nil, fmt.Errorf("btoon: expected extension, got %s", v.typ)
	}
	return v.extVal, nil
}

// Len returns the length of an array or map, or the byte length of a
// string or binary.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.typ {
	case TypeString:
		return len(v.strVal)
	case TypeBinary:
		return len(v.binVal)
	case TypeArray:
		return len(v.arrVal)
	case TypeMap:
		return len(v.mapVal)
	default:
		return 0
	}
}

// Get returns a field value by key from a map, or nil if absent.
func (v *Value) Get(key string) *Value {
	if v == nil || v.typ != TypeMap {
		return nil
	}
	for _, e := range v.mapVal {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Has reports whether a map contains the key.
func (v *Value) Has(key string) bool {
	if v == nil || v.typ != TypeMap {
		return false
	}
	for _, e := range v.mapVal {
		if e.Key == key {
			return true
		}
	}
	return false
}

// Index returns the i-th element of an array.
func (v *Value) Index(i int) (*Value, error) {
	if v == nil || v.typ != TypeArray {
		return nil, fmt.Errorf("btoon: not an array")
	}
	if i < 0 || i >= len(v.arrVal) {
		return nil, fmt.Errorf("btoon: index %d out of bounds (len=%d)", i, len(v.arrVal))
	}
	return v.arrVal[i], nil
}

// ============================================================
// Mutators
// ============================================================

// Set sets a field value on a map. An existing key is overwritten in place,
// preserving its position; a new key appends.
func (v *Value) Set(key string, val *Value) {
	if v.typ != TypeMap {
		panic("btoon: cannot set on non-map")
	}
	for i := range v.mapVal {
		if v.mapVal[i].Key == key {
			v.mapVal[i].Value = val
			return
		}
	}
	v.mapVal = append(v.mapVal, MapEntry{Key: key, Value: val})
}

// Append adds a value to an array.
func (v *Value) Append(val *Value) {
	if v.typ != TypeArray {
		panic("btoon: cannot append to non-array")
	}
	v.arrVal = append(v.arrVal, val)
}

// ============================================================
// Comparison and Numerics
// ============================================================

// Equal reports structural equality. Map entry order is significant.
func (v *Value) Equal(o *Value) bool {
	if v.IsNull() && o.IsNull() {
		return true
	}
	if v == nil || o == nil || v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeBool:
		return v.boolVal == o.boolVal
	case TypeInt:
		return v.intVal == o.intVal
	case TypeFloat:
		return v.floatVal == o.floatVal
	case TypeString:
		return v.strVal == o.strVal
	case TypeBinary:
		return bytes.Equal(v.binVal, o.binVal)
	case TypeArray:
		if len(v.arrVal) != len(o.arrVal) {
			return false
		}
		for i := range v.arrVal {
			if !v.arrVal[i].Equal(o.arrVal[i]) {
				return false
			}
		}
		return true
	case TypeMap:
		if len(v.mapVal) != len(o.mapVal) {
			return false
		}
		for i := range v.mapVal {
			if v.mapVal[i].Key != o.mapVal[i].Key {
				return false
			}
			if !v.mapVal[i].Value.Equal(o.mapVal[i].Value) {
				return false
			}
		}
		return true
	case TypeExtension:
		return v.extVal.Name == o.extVal.Name && bytes.Equal(v.extVal.Data, o.extVal.Data)
	default:
		return false
	}
}

// Number returns a numeric value as float64 if int or float.
func (v *Value) Number() (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch v.typ {
	case TypeInt:
		return float64(v.intVal), true
	case TypeFloat:
		return v.floatVal, true
	default:
		return 0, false
	}
}

// IsNumeric returns true if int or float.
func (v *Value) IsNumeric() bool {
	return v != nil && (v.typ == TypeInt || v.typ == TypeFloat)
}
