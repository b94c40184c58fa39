package btoon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"sort"
	"time"
)

// ============================================================
// Go Bridge
// ============================================================
//
// Converts between native Go values and the BTOON Value model. The core
// codec is total over Values; this is the only layer that can fail to
// encode, and it does so with *EncodeError before the codec runs.

// FromGo converts a native Go value into a Value. Supported shapes:
// nil, bool, all int/uint widths, float32/64, string, []byte, time.Time,
// *big.Int, []any, map[string]any (keys sorted for deterministic output),
// []MapEntry, and *Value (passed through). Anything else returns an
// *EncodeError.
func FromGo(v any) (*Value, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case *Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(int64(val)), nil
	case int8:
		return Int(int64(val)), nil
	case int16:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint:
		return uintValue(uint64(val))
	case uint8:
		return Int(int64(val)), nil
	case uint16:
		return Int(int64(val)), nil
	case uint32:
		return Int(int64(val)), nil
	case uint64:
		return uintValue(val)
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case string:
		return String(val), nil
	case []byte:
		return Binary(val), nil
	case time.Time:
		return Timestamp(val), nil
	case *big.Int:
		return BigInt(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, &EncodeError{Value: v}
		}
		return Float(f), nil

	case []any:
		arr := make([]*Value, 0, len(val))
		for i, elem := range val {
			ev, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr = append(arr, ev)
		}
		return Array(arr...), nil

	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]MapEntry, 0, len(keys))
		for _, k := range keys {
			ev, err := FromGo(val[k])
			if err != nil {
				return nil, fmt.Errorf("map[%q]: %w", k, err)
			}
			entries = append(entries, MapEntry{Key: k, Value: ev})
		}
		return Map(entries...), nil

	case []MapEntry:
		return Map(val...), nil

	default:
		return nil, &EncodeError{Value: v}
	}
}

func uintValue(v uint64) (*Value, error) {
	if v > math.MaxInt64 {
		return nil, &EncodeError{Value: v}
	}
	return Int(int64(v)), nil
}

// ToGo converts a Value into a native Go value: null to nil, scalars to
// their Go forms, arrays to []any, maps to map[string]any (insertion order
// is lost; use AsMap where order matters). Timestamp and bigint extensions
// become time.Time and *big.Int; other extensions come back as *ExtValue.
func ToGo(v *Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.typ {
	case TypeBool:
		return v.boolVal
	case TypeInt:
		return v.intVal
	case TypeFloat:
		return v.floatVal
	case TypeString:
		return v.strVal
	case TypeBinary:
		return v.binVal
	case TypeArray:
		out := make([]any, len(v.arrVal))
		for i, elem := range v.arrVal {
			out[i] = ToGo(elem)
		}
		return out
	case TypeMap:
		out := make(map[string]any, len(v.mapVal))
		for _, e := range v.mapVal {
			out[e.Key] = ToGo(e.Value)
		}
		return out
	case TypeExtension:
		switch v.extVal.Name {
		case ExtTimestamp:
			if t, err := TimeOf(v); err == nil {
				return t
			}
		case ExtBigInt:
			if n, err := BigIntOf(v); err == nil {
				return n
			}
		}
		return v.extVal
	default:
		return nil
	}
}

// Marshal converts a Go value and encodes it as a BTOON document.
func Marshal(v any, opts *EncodeOptions) ([]byte, error) {
	bv, err := FromGo(v)
	if err != nil {
		return nil, err
	}
	return Encode(bv, opts)
}

// Unmarshal decodes a BTOON document into a native Go value.
func Unmarshal(data []byte) (any, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return ToGo(v), nil
}

// ============================================================
// JSON Bridge
// ============================================================

// FromJSON converts JSON text into a Value. Numbers that parse as int64
// become ints, everything else floats; object keys are sorted.
func FromJSON(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("btoon: JSON parse: %w", err)
	}
	return FromGo(v)
}

// ToJSON converts a Value into JSON text. Binary renders as base64 (JSON
// []byte convention); known extensions render via their Go forms.
func ToJSON(v *Value) ([]byte, error) {
	return json.Marshal(ToGo(v))
}

// ToJSONIndent is ToJSON with indentation, for CLI display.
func ToJSONIndent(v *Value) ([]byte, error) {
	return json.MarshalIndent(ToGo(v), "", "  ")
}
