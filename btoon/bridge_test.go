package btoon

import (
	"errors"
	"math"
	"math/big"
	"reflect"
	"testing"
	"time"
)

// ============================================================
// Go Bridge
// ============================================================

func TestFromGo_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  *Value
	}{
		{"nil", nil, Null()},
		{"bool", true, Bool(true)},
		{"int", 42, Int(42)},
		{"int8", int8(-5), Int(-5)},
		{"int64", int64(math.MinInt64), Int(math.MinInt64)},
		{"uint16", uint16(1000), Int(1000)},
		{"uint64 in range", uint64(7), Int(7)},
		{"float32", float32(1.5), Float(1.5)},
		{"float64", 2.5, Float(2.5)},
		{"string", "hi", String("hi")},
		{"bytes", []byte{1, 2}, Binary([]byte{1, 2})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromGo(tt.input)
			if err != nil {
				t.Fatalf("FromGo failed: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("FromGo(%v) = %v, want %v", tt.input, ToGo(got), ToGo(tt.want))
			}
		})
	}
}

func TestFromGo_Containers(t *testing.T) {
	v, err := FromGo(map[string]any{
		"list": []any{1, "two", 3.0, nil},
		"nest": map[string]any{"deep": true},
	})
	if err != nil {
		t.Fatalf("FromGo failed: %v", err)
	}
	entries, _ := v.AsMap()
	// map[string]any keys come out sorted.
	if entries[0].Key != "list" || entries[1].Key != "nest" {
		t.Errorf("keys = %q, %q", entries[0].Key, entries[1].Key)
	}
	if v.Get("list").Len() != 4 {
		t.Errorf("list length = %d, want 4", v.Get("list").Len())
	}
}

func TestFromGo_OrderedEntries(t *testing.T) {
	// []MapEntry keeps insertion order, unlike map[string]any.
	v, err := FromGo([]MapEntry{
		{Key: "z", Value: Int(1)},
		{Key: "a", Value: Int(2)},
	})
	if err != nil {
		t.Fatalf("FromGo failed: %v", err)
	}
	entries, _ := v.AsMap()
	if entries[0].Key != "z" || entries[1].Key != "a" {
		t.Errorf("order lost: %q, %q", entries[0].Key, entries[1].Key)
	}
}

func TestFromGo_RichTypes(t *testing.T) {
	now := time.Now().UTC()
	tv, err := FromGo(now)
	if err != nil {
		t.Fatalf("FromGo(time.Time) failed: %v", err)
	}
	if got, _ := TimeOf(tv); !got.Equal(now.Truncate(time.Nanosecond)) {
		t.Errorf("timestamp mismatch: %v vs %v", got, now)
	}

	n := new(big.Int).Lsh(big.NewInt(1), 100)
	bv, err := FromGo(n)
	if err != nil {
		t.Fatalf("FromGo(*big.Int) failed: %v", err)
	}
	if got, _ := BigIntOf(bv); got.Cmp(n) != 0 {
		t.Error("bigint mismatch")
	}
}

func TestFromGo_Unsupported(t *testing.T) {
	inputs := []any{
		struct{ X int }{1},
		make(chan int),
		func() {},
		uint64(math.MaxUint64), // above the int64 value model
		map[int]any{1: "x"},
	}
	for _, input := range inputs {
		_, err := FromGo(input)
		var eerr *EncodeError
		if !errors.As(err, &eerr) {
			t.Errorf("FromGo(%T) = %v, want *EncodeError", input, err)
		}
	}
}

func TestToGo(t *testing.T) {
	v := Map(
		Entry("n", Int(3)),
		Entry("f", Float(0.5)),
		Entry("s", String("x")),
		Entry("null", Null()),
		Entry("arr", Array(Bool(true), Bool(false))),
	)
	got := ToGo(v)
	want := map[string]any{
		"n":    int64(3),
		"f":    0.5,
		"s":    "x",
		"null": nil,
		"arr":  []any{true, false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToGo() = %#v, want %#v", got, want)
	}
}

func TestToGo_KnownExtensions(t *testing.T) {
	ts := time.Unix(1700000000, 500).UTC()
	if got, ok := ToGo(Timestamp(ts)).(time.Time); !ok || !got.Equal(ts) {
		t.Errorf("timestamp extension = %v", ToGo(Timestamp(ts)))
	}
	n := big.NewInt(-12345)
	if got, ok := ToGo(BigInt(n)).(*big.Int); !ok || got.Cmp(n) != 0 {
		t.Errorf("bigint extension = %v", ToGo(BigInt(n)))
	}
	// Unknown extensions come back as *ExtValue.
	if _, ok := ToGo(Ext("custom", nil)).(*ExtValue); !ok {
		t.Error("unknown extension should surface as *ExtValue")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	in := map[string]any{
		"name":  "widget",
		"count": 3,
		"tags":  []any{"a", "b"},
	}
	doc, err := Marshal(in, &EncodeOptions{Compression: Auto})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out, err := Unmarshal(doc)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("got %T, want map", out)
	}
	if m["name"] != "widget" || m["count"] != int64(3) {
		t.Errorf("round trip mismatch: %#v", m)
	}
}

// ============================================================
// JSON Bridge
// ============================================================

func TestFromJSON(t *testing.T) {
	v, err := FromJSON([]byte(`{"id": 7, "ratio": 0.5, "name": "x", "flags": [true, null]}`))
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if id := v.Get("id"); id.Type() != TypeInt {
		t.Errorf("integral JSON number became %s", id.Type())
	}
	if ratio := v.Get("ratio"); ratio.Type() != TypeFloat {
		t.Errorf("fractional JSON number became %s", ratio.Type())
	}
	if v.Get("flags").Len() != 2 {
		t.Error("array lost elements")
	}

	if _, err := FromJSON([]byte(`{broken`)); err == nil {
		t.Error("FromJSON should reject invalid JSON")
	}
}

func TestFromJSON_BigIntegers(t *testing.T) {
	// Above int64: falls back to float64 rather than failing.
	v, err := FromJSON([]byte(`{"big": 18446744073709551615}`))
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if v.Get("big").Type() != TypeFloat {
		t.Errorf("got %s, want float", v.Get("big").Type())
	}
}

func TestToJSON(t *testing.T) {
	v := Map(
		Entry("a", Int(1)),
		Entry("b", String("two")),
	)
	out, err := ToJSON(v)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	round, err := FromJSON(out)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if n, _ := round.Get("a").AsInt(); n != 1 {
		t.Errorf("a = %d, want 1", n)
	}
}

func TestJSON_DocumentPipeline(t *testing.T) {
	// JSON in, BTOON document out, back to JSON: the CLI encode/decode path.
	src := []byte(`{"user": "eve", "scores": [10, 20, 30]}`)
	v, err := FromJSON(src)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	doc, err := Encode(v, &EncodeOptions{Compression: Zlib})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	back, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !back.Equal(v) {
		t.Error("pipeline round trip mismatch")
	}
}
