package btoon

import (
	"fmt"
	"regexp"
)

// Validate checks a value against a schema. The value must be a map;
// fields are checked in declaration order and the first violation is
// returned as a *ValidationError (fail-fast). In strict mode, map keys the
// schema does not declare are rejected. The value is never mutated;
// default substitution happens at the encode boundary (ApplyDefaults).
func Validate(v *Value, schema *Schema, strict bool) error {
	if v.Type() != TypeMap {
		return &ValidationError{
			Code:    CodeNotAnObject,
			Message: fmt.Sprintf("expected map, got %s", v.Type()),
		}
	}

	for i := range schema.fields {
		f := &schema.fields[i]
		if !v.Has(f.Name) {
			if f.Required {
				return &ValidationError{
					Code:    CodeMissingField,
					Field:   f.Name,
					Message: "required field missing",
				}
			}
			continue
		}
		fv := v.Get(f.Name)
		if fv.Type() != f.Type {
			return &ValidationError{
				Code:    CodeTypeMismatch,
				Field:   f.Name,
				Message: fmt.Sprintf("expected %s, got %s", f.Type, fv.Type()),
			}
		}
		if err := checkConstraints(fv, f); err != nil {
			return err
		}
	}

	if strict {
		entries, _ := v.AsMap()
		for _, e := range entries {
			if _, known := schema.index[e.Key]; !known {
				return &ValidationError{
					Code:    CodeUnknownField,
					Field:   e.Key,
					Message: "unknown field",
				}
			}
		}
	}
	return nil
}

func checkConstraints(v *Value, f *Field) error {
	c := &f.Constraints
	if c.empty() {
		return nil
	}

	if c.MaxLength != nil && (v.Type() == TypeString || v.Type() == TypeBinary) {
		if v.Len() > *c.MaxLength {
			return constraintErr(f.Name, "max_length",
				"length %d exceeds maximum %d", v.Len(), *c.MaxLength)
		}
	}

	if c.Pattern != "" && v.Type() == TypeString {
		re, err := c.compilePattern()
		if err != nil {
			return constraintErr(f.Name, "pattern", "invalid pattern: %v", err)
		}
		s, _ := v.AsString()
		if !re.MatchString(s) {
			return constraintErr(f.Name, "pattern",
				"value %q does not match pattern %s", s, c.Pattern)
		}
	}

	if num, ok := v.Number(); ok {
		if c.Min != nil && num < *c.Min {
			return constraintErr(f.Name, "min", "value %v is less than minimum %v", num, *c.Min)
		}
		if c.Max != nil && num > *c.Max {
			return constraintErr(f.Name, "max", "value %v is greater than maximum %v", num, *c.Max)
		}
	}

	if (c.Precision != nil || c.Scale != nil) && v.Type() == TypeExtension {
		ext, _ := v.AsExt()
		prec, scale, ok := decimalDigits(ext)
		if !ok {
			return constraintErr(f.Name, "precision", "not a decimal extension")
		}
		if c.Precision != nil && prec > *c.Precision {
			return constraintErr(f.Name, "precision",
				"%d digits exceed precision %d", prec, *c.Precision)
		}
		if c.Scale != nil && scale > *c.Scale {
			return constraintErr(f.Name, "scale",
				"%d fraction digits exceed scale %d", scale, *c.Scale)
		}
	}
	return nil
}

func constraintErr(field, constraint, format string, args ...any) *ValidationError {
	return &ValidationError{
		Code:       CodeConstraintViolation,
		Field:      field,
		Constraint: constraint,
		Message:    fmt.Sprintf(format, args...),
	}
}

// compilePattern returns the full-match regexp for a pattern constraint,
// anchoring the expression so partial matches do not pass.
func (c *Constraints) compilePattern() (*regexp.Regexp, error) {
	return regexp.Compile(`\A(?:` + c.Pattern + `)\z`)
}

// ============================================================
// Encode boundary
// ============================================================

// ApplyDefaults returns a value with schema defaults substituted for absent
// optional fields. The input is not modified; if no defaults apply, the
// input is returned as-is.
func ApplyDefaults(v *Value, schema *Schema) *Value {
	if v.Type() != TypeMap {
		return v
	}
	missing := 0
	for i := range schema.fields {
		f := &schema.fields[i]
		if f.Default != nil && !v.Has(f.Name) {
			missing++
		}
	}
	if missing == 0 {
		return v
	}

	entries, _ := v.AsMap()
	out := Map(entries...)
	for i := range schema.fields {
		f := &schema.fields[i]
		if f.Default != nil && !out.Has(f.Name) {
			out.Set(f.Name, f.Default)
		}
	}
	return out
}

// EncodeWithSchema validates a value against a schema, applies defaults,
// and encodes.
func EncodeWithSchema(v *Value, schema *Schema, strict bool, opts *EncodeOptions) ([]byte, error) {
	if err := Validate(v, schema, strict); err != nil {
		return nil, err
	}
	return Encode(ApplyDefaults(v, schema), opts)
}
