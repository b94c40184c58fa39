package btoon

import (
	"errors"
	"sync"
	"testing"
)

func userSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema("User").
		Field("id", TypeInt, FieldRequired(), Min(1)).
		Field("username", TypeString, FieldRequired(), MaxLength(64), Pattern(`[a-z][a-z0-9_]*`)).
		Field("email", TypeString, Pattern(`[^@]+@[^@]+`)).
		Field("age", TypeInt, Min(0), Max(150)).
		Field("active", TypeBool, FieldDefault(Bool(true))).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return s
}

// ============================================================
// Validation
// ============================================================

func TestValidate_Success(t *testing.T) {
	s := userSchema(t)
	v := Map(
		Entry("id", Int(42)),
		Entry("username", String("alice")),
		Entry("email", String("alice@example.com")),
		Entry("age", Int(30)),
	)
	if err := Validate(v, s, false); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
	if err := Validate(v, s, true); err != nil {
		t.Errorf("Validate strict failed: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	s := userSchema(t)
	tests := []struct {
		name     string
		value    *Value
		strict   bool
		code     string
		field    string
	}{
		{
			name:  "not a map",
			value: Array(Int(1)),
			code:  CodeNotAnObject,
		},
		{
			name:  "missing required",
			value: Map(Entry("username", String("bob"))),
			code:  CodeMissingField,
			field: "id",
		},
		{
			name: "type mismatch",
			value: Map(
				Entry("id", String("42")),
				Entry("username", String("bob")),
			),
			code:  CodeTypeMismatch,
			field: "id",
		},
		{
			name: "min violation",
			value: Map(
				Entry("id", Int(0)),
				Entry("username", String("bob")),
			),
			code:  CodeConstraintViolation,
			field: "id",
		},
		{
			name: "max violation",
			value: Map(
				Entry("id", Int(1)),
				Entry("username", String("bob")),
				Entry("age", Int(200)),
			),
			code:  CodeConstraintViolation,
			field: "age",
		},
		{
			name: "pattern violation",
			value: Map(
				Entry("id", Int(1)),
				Entry("username", String("Bob")),
			),
			code:  CodeConstraintViolation,
			field: "username",
		},
		{
			name: "unknown field strict",
			value: Map(
				Entry("id", Int(1)),
				Entry("username", String("bob")),
				Entry("extra", Null()),
			),
			strict: true,
			code:   CodeUnknownField,
			field:  "extra",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.value, s, tt.strict)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if verr.Code != tt.code {
				t.Errorf("code = %q, want %q", verr.Code, tt.code)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestValidate_UnknownFieldLenientMode(t *testing.T) {
	s := userSchema(t)
	v := Map(
		Entry("id", Int(1)),
		Entry("username", String("bob")),
		Entry("extra", Null()),
	)
	if err := Validate(v, s, false); err != nil {
		t.Errorf("lenient validation should pass undeclared fields: %v", err)
	}
}

func TestValidate_FailFast(t *testing.T) {
	// Two violations present; only the first declared field's error
	// surfaces.
	s := userSchema(t)
	v := Map(
		Entry("username", Int(7)), // type mismatch, but id is checked first
	)
	err := Validate(v, s, false)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() = %v, want *ValidationError", err)
	}
	if verr.Field != "id" || verr.Code != CodeMissingField {
		t.Errorf("got %s on %q, want missing_field on id", verr.Code, verr.Field)
	}
}

func TestValidate_MaxLengthOnBinary(t *testing.T) {
	s, err := NewSchema("Blob").
		Field("data", TypeBinary, MaxLength(4)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ok := Map(Entry("data", Binary([]byte{1, 2, 3, 4})))
	if err := Validate(ok, s, false); err != nil {
		t.Errorf("4 bytes should pass: %v", err)
	}
	bad := Map(Entry("data", Binary([]byte{1, 2, 3, 4, 5})))
	err = Validate(bad, s, false)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Constraint != "max_length" {
		t.Errorf("got %v, want max_length violation", err)
	}
}

func TestValidate_PatternIsFullMatch(t *testing.T) {
	s, err := NewSchema("Code").
		Field("code", TypeString, Pattern(`[A-Z]{3}`)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := Validate(Map(Entry("code", String("ABC"))), s, false); err != nil {
		t.Errorf("full match should pass: %v", err)
	}
	if err := Validate(Map(Entry("code", String("xABCx"))), s, false); err == nil {
		t.Error("substring match should fail")
	}
}

func TestValidate_DecimalPrecisionScale(t *testing.T) {
	s, err := NewSchema("Invoice").
		Field("amount", TypeExtension, Precision(6), Scale(2)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	mustDecimal := func(str string) *Value {
		d, err := Decimal(str)
		if err != nil {
			t.Fatalf("Decimal(%q) failed: %v", str, err)
		}
		return d
	}

	tests := []struct {
		decimal    string
		ok         bool
		constraint string
	}{
		{"1234.56", true, ""},
		{"-999.99", true, ""},
		{"0.25", true, ""},
		{"12345.67", false, "precision"}, // 7 digits
		{"1.234", false, "scale"},        // 3 fraction digits
	}

	for _, tt := range tests {
		t.Run(tt.decimal, func(t *testing.T) {
			v := Map(Entry("amount", mustDecimal(tt.decimal)))
			err := Validate(v, s, false)
			if tt.ok {
				if err != nil {
					t.Errorf("Validate failed: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Constraint != tt.constraint {
				t.Errorf("got %v, want %s violation", err, tt.constraint)
			}
		})
	}
}

func TestValidate_NonDecimalExtensionAgainstDigits(t *testing.T) {
	s, err := NewSchema("S").
		Field("x", TypeExtension, Precision(5)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	v := Map(Entry("x", Ext("custom", []byte{1})))
	if err := Validate(v, s, false); err == nil {
		t.Error("digit constraints on a non-decimal extension should fail")
	}
}

// ============================================================
// Defaults
// ============================================================

func TestApplyDefaults(t *testing.T) {
	s := userSchema(t)
	v := Map(
		Entry("id", Int(1)),
		Entry("username", String("bob")),
	)
	out := ApplyDefaults(v, s)
	if b, err := out.Get("active").AsBool(); err != nil || !b {
		t.Errorf("active default not applied: %v, %v", b, err)
	}
	// The input map is untouched.
	if v.Has("active") {
		t.Error("ApplyDefaults mutated its input")
	}
	// Present fields are never overwritten.
	v2 := Map(
		Entry("id", Int(1)),
		Entry("username", String("bob")),
		Entry("active", Bool(false)),
	)
	out2 := ApplyDefaults(v2, s)
	if b, _ := out2.Get("active").AsBool(); b {
		t.Error("present field was overwritten by default")
	}
	// No defaults needed: the input comes back as-is.
	if got := ApplyDefaults(v2, s); got != v2 {
		t.Error("expected input passthrough when no defaults apply")
	}
}

func TestEncodeWithSchema(t *testing.T) {
	s := userSchema(t)
	v := Map(
		Entry("id", Int(9)),
		Entry("username", String("carol")),
	)
	doc, err := EncodeWithSchema(v, s, false, nil)
	if err != nil {
		t.Fatalf("EncodeWithSchema failed: %v", err)
	}
	got, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if b, err := got.Get("active").AsBool(); err != nil || !b {
		t.Error("default missing from the encoded document")
	}

	bad := Map(Entry("username", String("carol")))
	if _, err := EncodeWithSchema(bad, s, false, nil); err == nil {
		t.Error("invalid value should not encode")
	}
}

// ============================================================
// Registry
// ============================================================

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	s := userSchema(t)
	r.Register(s)

	if !r.Contains("User") || r.Len() != 1 {
		t.Fatal("schema not registered")
	}
	if r.Get("User") != s {
		t.Error("Get returned a different schema")
	}

	// Re-registering under the same name overwrites.
	s2, _ := NewSchema("User").Version("2.0.0").Field("id", TypeInt).Build()
	r.Register(s2)
	if r.Len() != 1 || r.Get("User").Version() != "2.0.0" {
		t.Error("re-register should overwrite")
	}

	r.RegisterAs("user_v1", s)
	if r.Len() != 2 || r.Get("user_v1") != s {
		t.Error("RegisterAs failed")
	}
}

func TestRegistry_ValidateUnknownSchema(t *testing.T) {
	r := NewRegistry()
	err := r.Validate(Map(), "Nope", false)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Code != CodeUnknownSchema {
		t.Errorf("got %v, want unknown_schema", err)
	}
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	r := NewRegistry()
	r.Register(userSchema(t))
	v := Map(
		Entry("id", Int(1)),
		Entry("username", String("dave")),
	)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := r.Validate(v, "User", true); err != nil {
					t.Errorf("Validate failed: %v", err)
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		s, _ := NewSchema("Other").Field("y", TypeInt).Build()
		for j := 0; j < 100; j++ {
			r.Register(s)
		}
	}()
	wg.Wait()
}
