package btoon

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Schema definition files are YAML:
//
//	name: User
//	version: 1.0.0
//	description: User account record
//	fields:
//	  - name: id
//	    type: int
//	    required: true
//	    constraints:
//	      min: 1
//	  - name: username
//	    type: string
//	    required: true
//	    constraints:
//	      max_length: 64
//	  - name: email
//	    type: string
//	    constraints:
//	      pattern: "[^@]+@[^@]+"

type schemaFile struct {
	Name        string            `yaml:"name"`
	Version     string            `yaml:"version"`
	Description string            `yaml:"description"`
	Fields      []schemaFileField `yaml:"fields"`
}

type schemaFileField struct {
	Name        string         `yaml:"name"`
	Type        string         `yaml:"type"`
	Required    bool           `yaml:"required"`
	Default     any            `yaml:"default"`
	Constraints map[string]any `yaml:"constraints"`
}

// SchemaFromYAML parses a YAML schema definition and builds the schema.
func SchemaFromYAML(data []byte) (*Schema, error) {
	var sf schemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("btoon: schema YAML: %w", err)
	}

	b := NewSchema(sf.Name)
	if sf.Version != "" {
		b.Version(sf.Version)
	}
	if sf.Description != "" {
		b.Description(sf.Description)
	}

	for _, ff := range sf.Fields {
		typ, err := ParseType(ff.Type)
		if err != nil {
			return nil, fmt.Errorf("btoon: schema YAML: field %q: %w", ff.Name, err)
		}
		f := Field{Name: ff.Name, Type: typ, Required: ff.Required}
		if ff.Default != nil {
			f.Default, err = FromGo(ff.Default)
			if err != nil {
				return nil, fmt.Errorf("btoon: schema YAML: field %q default: %w", ff.Name, err)
			}
		}
		for key, raw := range ff.Constraints {
			if err := applyYAMLConstraint(&f.Constraints, key, raw); err != nil {
				return nil, fmt.Errorf("btoon: schema YAML: field %q: %w", ff.Name, err)
			}
		}
		b.AddField(f)
	}
	return b.Build()
}

func applyYAMLConstraint(c *Constraints, key string, raw any) error {
	switch key {
	case "max_length":
		n, ok := yamlInt(raw)
		if !ok {
			return fmt.Errorf("constraint max_length: want integer, got %T", raw)
		}
		c.MaxLength = &n
	case "pattern":
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("constraint pattern: want string, got %T", raw)
		}
		c.Pattern = s
	case "min", "max":
		f, ok := yamlFloat(raw)
		if !ok {
			return fmt.Errorf("constraint %s: want number, got %T", key, raw)
		}
		if key == "min" {
			c.Min = &f
		} else {
			c.Max = &f
		}
	case "precision", "scale":
		n, ok := yamlInt(raw)
		if !ok {
			return fmt.Errorf("constraint %s: want integer, got %T", key, raw)
		}
		if key == "precision" {
			c.Precision = &n
		} else {
			c.Scale = &n
		}
	default:
		return fmt.Errorf("unknown constraint %q", key)
	}
	return nil
}

func yamlInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}

func yamlFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
