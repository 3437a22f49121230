package params

import (
	"encoding/json"
	"strconv"

	"github.com/invopop/jsonschema"
)

// JSONSchema describes the schema's parameters as a JSON Schema object, for
// documentation and client generation.
func (s *Schema) JSONSchema() *jsonschema.Schema {
	root := &jsonschema.Schema{
		Version:    jsonschema.Version,
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}
	if s.strict {
		root.AdditionalProperties = jsonschema.FalseSchema
	}

	for _, d := range s.descs {
		root.Properties.Set(d.Name, descriptorSchema(d))
		if d.Required {
			root.Required = append(root.Required, d.Name)
		}
	}
	return root
}

func descriptorSchema(d Descriptor) *jsonschema.Schema {
	var prop *jsonschema.Schema
	if len(d.Types) == 1 {
		prop = typeSchema(d.Types[0])
	} else {
		prop = &jsonschema.Schema{}
		for _, t := range d.Types {
			prop.AnyOf = append(prop.AnyOf, typeSchema(t))
		}
	}

	prop.Description = d.Doc
	if def, ok := d.DefaultValue(); ok && def != nil {
		prop.Default = def
	}

	enum := d.AllowedValues()
	if len(enum) > 0 {
		if prop.Items != nil {
			prop.Items.Enum = enum
		} else {
			prop.Enum = enum
		}
	}
	if d.min != nil {
		prop.Minimum = json.Number(strconv.FormatFloat(*d.min, 'f', -1, 64))
	}
	if d.max != nil {
		prop.Maximum = json.Number(strconv.FormatFloat(*d.max, 'f', -1, 64))
	}
	if d.clampMax != nil {
		prop.Extras = map[string]any{"x-clamp": *d.clampMax}
	}
	return prop
}

func typeSchema(t Type) *jsonschema.Schema {
	switch t {
	case TypeInt:
		return &jsonschema.Schema{Type: "integer"}
	case TypeBool:
		return &jsonschema.Schema{Type: "boolean"}
	case TypeString:
		return &jsonschema.Schema{Type: "string"}
	case TypeFloat:
		return &jsonschema.Schema{Type: "number"}
	case TypeDate:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	case TypeUUID:
		return &jsonschema.Schema{Type: "string", Format: "uuid"}
	case TypeStringList:
		return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}}
	case TypeIDList:
		return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "integer"}}
	default:
		return &jsonschema.Schema{}
	}
}
