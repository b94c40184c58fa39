// Package btoon implements BTOON, a self-describing binary tree
// serialization format with optional compression and schema validation.
//
// BTOON documents are MessagePack-derived on the wire: every encoded unit
// starts with a one-byte marker, integers use the smallest marker that
// holds their magnitude, and strings/binary/containers are length-prefixed.
// Encoded values are always wrapped in a one-byte compression envelope so
// the wire format stays uniform whether or not compression is enabled.
//
// # Data Model
//
// Scalars: null, bool, int (int64), float (float64), string, binary
// Containers: array, map (ordered, unique keys)
// Special: extension (string type name + opaque payload)
//
// Maps preserve insertion order; re-setting a key overwrites in place.
// Extensions carry domain types (timestamps, decimals, big integers,
// packed float vectors) that the codec itself never interprets.
//
// # Basic Usage
//
//	data, err := btoon.Encode(btoon.Map(
//		btoon.Entry("id", btoon.Int(1)),
//		btoon.Entry("name", btoon.String("alice")),
//	), nil)
//
//	v, err := btoon.Decode(data)
//
// # Compression
//
//	data, err := btoon.Encode(v, &btoon.EncodeOptions{Compression: btoon.Zstd})
//
// Algorithm Auto trials a candidate set and keeps the smallest envelope;
// the chosen algorithm is recorded so Decode needs no hints.
//
// # Schemas
//
//	schema, err := btoon.NewSchema("User").
//		Version("1.0.0").
//		Field("id", btoon.TypeInt, btoon.FieldRequired()).
//		Field("username", btoon.TypeString, btoon.FieldRequired(), btoon.MaxLength(64)).
//		Field("email", btoon.TypeString, btoon.Pattern(`[^@]+@[^@]+`)).
//		Build()
//
//	err = btoon.Validate(value, schema, false)
//
// Validation is fail-fast: the first violation is returned as a
// *ValidationError carrying the offending field. Strict mode additionally
// rejects map keys the schema does not declare.
//
// For length-prefixed streaming of many documents over one byte stream,
// see the stream package.
package btoon
