package btoon

import (
	"fmt"
	"regexp"

	"github.com/blang/semver/v4"
)

// Field describes one schema field.
type Field struct {
	Name        string
	Type        Type
	Required    bool
	Default     *Value // Substituted for absent optional fields at encode time
	Constraints Constraints
}

// Constraints holds the per-field checks a validator applies to present
// values. Nil members are unset.
type Constraints struct {
	MaxLength *int     // Byte length bound for string/binary
	Pattern   string   // Full-match regexp for strings, empty when unset
	Min       *float64 // Inclusive numeric lower bound
	Max       *float64 // Inclusive numeric upper bound
	Precision *int     // Total digits for decimal extensions
	Scale     *int     // Fraction digits for decimal extensions
}

func (c Constraints) empty() bool {
	return c.MaxLength == nil && c.Pattern == "" && c.Min == nil &&
		c.Max == nil && c.Precision == nil && c.Scale == nil
}

// Schema is an ordered, named, versioned set of field descriptors.
// Immutable once built; safe to share across concurrent validations.
type Schema struct {
	name        string
	version     semver.Version
	description string
	fields      []Field
	index       map[string]int // field name -> position in fields
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Version returns the schema version string.
func (s *Schema) Version() string { return s.version.String() }

// Description returns the schema description.
func (s *Schema) Description() string { return s.description }

// Fields returns the field descriptors in declaration order. The returned
// slice is the schema's own; callers must not modify it.
func (s *Schema) Fields() []Field { return s.fields }

// FieldByName returns the descriptor for a field name, or nil.
func (s *Schema) FieldByName(name string) *Field {
	if i, ok := s.index[name]; ok {
		return &s.fields[i]
	}
	return nil
}

// ============================================================
// Builder
// ============================================================

// SchemaBuilder is a fluent accumulator for schemas. Every method returns
// the same builder; Build produces the immutable snapshot. The order of
// Field calls is the schema's field order.
type SchemaBuilder struct {
	name        string
	version     string
	description string
	fields      []Field
}

// NewSchema starts a schema builder. Version defaults to 1.0.0.
func NewSchema(name string) *SchemaBuilder {
	return &SchemaBuilder{name: name, version: "1.0.0"}
}

// Version sets the schema version (semantic version string).
func (b *SchemaBuilder) Version(v string) *SchemaBuilder {
	b.version = v
	return b
}

// Description sets the schema description.
func (b *SchemaBuilder) Description(d string) *SchemaBuilder {
	b.description = d
	return b
}

// Field appends a field descriptor.
func (b *SchemaBuilder) Field(name string, typ Type, opts ...FieldOption) *SchemaBuilder {
	f := Field{Name: name, Type: typ}
	for _, opt := range opts {
		opt(&f)
	}
	b.fields = append(b.fields, f)
	return b
}

// AddField appends an already-constructed descriptor.
func (b *SchemaBuilder) AddField(f Field) *SchemaBuilder {
	b.fields = append(b.fields, f)
	return b
}

// Build validates the accumulated definition and returns the schema.
func (b *SchemaBuilder) Build() (*Schema, error) {
	if b.name == "" {
		return nil, fmt.Errorf("btoon: schema name must not be empty")
	}
	ver, err := semver.Parse(b.version)
	if err != nil {
		return nil, fmt.Errorf("btoon: schema %s: invalid version %q: %w", b.name, b.version, err)
	}

	s := &Schema{
		name:        b.name,
		version:     ver,
		description: b.description,
		fields:      make([]Field, len(b.fields)),
		index:       make(map[string]int, len(b.fields)),
	}
	copy(s.fields, b.fields)

	for i, f := range s.fields {
		if f.Name == "" {
			return nil, fmt.Errorf("btoon: schema %s: field %d has no name", b.name, i)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("btoon: schema %s: duplicate field %q", b.name, f.Name)
		}
		s.index[f.Name] = i

		if f.Required && f.Default != nil {
			return nil, fmt.Errorf("btoon: schema %s: field %q is required and has a default", b.name, f.Name)
		}
		if f.Default != nil && f.Default.Type() != f.Type {
			return nil, fmt.Errorf("btoon: schema %s: field %q default is %s, field type is %s",
				b.name, f.Name, f.Default.Type(), f.Type)
		}
		if f.Constraints.Pattern != "" {
			if _, err := regexp.Compile(f.Constraints.Pattern); err != nil {
				return nil, fmt.Errorf("btoon: schema %s: field %q pattern: %w", b.name, f.Name, err)
			}
		}
		if f.Constraints.Min != nil && f.Constraints.Max != nil &&
			*f.Constraints.Min > *f.Constraints.Max {
			return nil, fmt.Errorf("btoon: schema %s: field %q has min > max", b.name, f.Name)
		}
	}
	return s, nil
}

// FieldOption configures a field descriptor.
type FieldOption func(*Field)

// FieldRequired marks the field required.
func FieldRequired() FieldOption {
	return func(f *Field) { f.Required = true }
}

// FieldDefault sets the value supplied for an absent optional field.
func FieldDefault(v *Value) FieldOption {
	return func(f *Field) { f.Default = v }
}

// MaxLength bounds the byte length of a string or binary field.
func MaxLength(n int) FieldOption {
	return func(f *Field) { f.Constraints.MaxLength = &n }
}

// Pattern requires a string field to fully match the regexp.
func Pattern(expr string) FieldOption {
	return func(f *Field) { f.Constraints.Pattern = expr }
}

// Min sets an inclusive numeric lower bound.
func Min(v float64) FieldOption {
	return func(f *Field) { f.Constraints.Min = &v }
}

// Max sets an inclusive numeric upper bound.
func Max(v float64) FieldOption {
	return func(f *Field) { f.Constraints.Max = &v }
}

// Precision bounds the total digit count of a decimal extension field.
func Precision(n int) FieldOption {
	return func(f *Field) { f.Constraints.Precision = &n }
}

// Scale bounds the fraction digit count of a decimal extension field.
func Scale(n int) FieldOption {
	return func(f *Field) { f.Constraints.Scale = &n }
}

// ParseType parses a type name as used in schema files.
func ParseType(s string) (Type, error) {
	switch s {
	case "null":
		return TypeNull, nil
	case "bool":
		return TypeBool, nil
	case "int":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	case "string":
		return TypeString, nil
	case "binary":
		return TypeBinary, nil
	case "array":
		return TypeArray, nil
	case "map":
		return TypeMap, nil
	case "extension":
		return TypeExtension, nil
	default:
		return TypeNull, fmt.Errorf("btoon: unknown type name %q", s)
	}
}
