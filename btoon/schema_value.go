package btoon

import "fmt"

// schemaMarker identifies a map as a serialized schema definition.
const schemaMarker = "btoon/schema/v1"

// ToValue serializes the schema as a BTOON map, so schemas themselves can
// travel as documents.
func (s *Schema) ToValue() *Value {
	m := Map(
		Entry("$schema", String(schemaMarker)),
		Entry("name", String(s.name)),
		Entry("version", String(s.version.String())),
	)
	if s.description != "" {
		m.Set("description", String(s.description))
	}

	fields := Array()
	for i := range s.fields {
		f := &s.fields[i]
		fm := Map(
			Entry("name", String(f.Name)),
			Entry("type", String(f.Type.String())),
			Entry("required", Bool(f.Required)),
		)
		if f.Default != nil {
			fm.Set("default", f.Default)
		}
		if !f.Constraints.empty() {
			fm.Set("constraints", constraintsToValue(&f.Constraints))
		}
		fields.Append(fm)
	}
	m.Set("fields", fields)
	return m
}

func constraintsToValue(c *Constraints) *Value {
	m := Map()
	if c.MaxLength != nil {
		m.Set("max_length", Int(int64(*c.MaxLength)))
	}
	if c.Pattern != "" {
		m.Set("pattern", String(c.Pattern))
	}
	if c.Min != nil {
		m.Set("min", Float(*c.Min))
	}
	if c.Max != nil {
		m.Set("max", Float(*c.Max))
	}
	if c.Precision != nil {
		m.Set("precision", Int(int64(*c.Precision)))
	}
	if c.Scale != nil {
		m.Set("scale", Int(int64(*c.Scale)))
	}
	return m
}

// SchemaFromValue rebuilds a schema from its serialized map form.
func SchemaFromValue(v *Value) (*Schema, error) {
	if v.Type() != TypeMap {
		return nil, fmt.Errorf("btoon: schema definition must be a map, got %s", v.Type())
	}
	name, err := v.Get("name").AsString()
	if err != nil {
		return nil, fmt.Errorf("btoon: schema definition name: %w", err)
	}
	b := NewSchema(name)
	if ver := v.Get("version"); ver != nil {
		s, err := ver.AsString()
		if err != nil {
			return nil, fmt.Errorf("btoon: schema definition version: %w", err)
		}
		b.Version(s)
	}
	if desc := v.Get("description"); desc != nil {
		s, err := desc.AsString()
		if err != nil {
			return nil, fmt.Errorf("btoon: schema definition description: %w", err)
		}
		b.Description(s)
	}

	fieldsVal := v.Get("fields")
	if fieldsVal != nil {
		fields, err := fieldsVal.AsArray()
		if err != nil {
			return nil, fmt.Errorf("btoon: schema definition fields: %w", err)
		}
		for i, fv := range fields {
			f, err := fieldFromValue(fv)
			if err != nil {
				return nil, fmt.Errorf("btoon: schema definition field %d: %w", i, err)
			}
			b.AddField(f)
		}
	}
	return b.Build()
}

func fieldFromValue(v *Value) (Field, error) {
	var f Field
	if v.Type() != TypeMap {
		return f, fmt.Errorf("field definition must be a map, got %s", v.Type())
	}
	name, err := v.Get("name").AsString()
	if err != nil {
		return f, fmt.Errorf("name: %w", err)
	}
	typeName, err := v.Get("type").AsString()
	if err != nil {
		return f, fmt.Errorf("type: %w", err)
	}
	typ, err := ParseType(typeName)
	if err != nil {
		return f, err
	}
	f = Field{Name: name, Type: typ}

	if req := v.Get("required"); req != nil {
		f.Required, err = req.AsBool()
		if err != nil {
			return f, fmt.Errorf("required: %w", err)
		}
	}
	if def := v.Get("default"); def != nil {
		f.Default = def
	}
	if cons := v.Get("constraints"); cons != nil {
		f.Constraints, err = constraintsFromValue(cons)
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

func constraintsFromValue(v *Value) (Constraints, error) {
	var c Constraints
	entries, err := v.AsMap()
	if err != nil {
		return c, fmt.Errorf("constraints: %w", err)
	}
	for _, e := range entries {
		switch e.Key {
		case "max_length":
			n, err := e.Value.AsInt()
			if err != nil {
				return c, fmt.Errorf("constraint max_length: %w", err)
			}
			i := int(n)
			c.MaxLength = &i
		case "pattern":
			s, err := e.Value.AsString()
			if err != nil {
				return c, fmt.Errorf("constraint pattern: %w", err)
			}
			c.Pattern = s
		case "min", "max":
			num, ok := e.Value.Number()
			if !ok {
				return c, fmt.Errorf("constraint %s: must be numeric", e.Key)
			}
			if e.Key == "min" {
				c.Min = &num
			} else {
				c.Max = &num
			}
		case "precision", "scale":
			n, err := e.Value.AsInt()
			if err != nil {
				return c, fmt.Errorf("constraint %s: %w", e.Key, err)
			}
			i := int(n)
			if e.Key == "precision" {
				c.Precision = &i
			} else {
				c.Scale = &i
			}
		default:
			return c, fmt.Errorf("unknown constraint %q", e.Key)
		}
	}
	return c, nil
}
