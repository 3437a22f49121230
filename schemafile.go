package params

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// schemaFile is the YAML form of a schema:
//
//	strict: true
//	pagination: true
//	params:
//	  - name: q
//	    type: string
//	    required: true
//	  - name: sort
//	    type: string
//	    default: name
//	    enum: [name, created]
//	  - name: limit
//	    type: int
//	    default: 25
//	    clamp: {max: 100, fallback: 25}
type schemaFile struct {
	Strict     bool          `yaml:"strict"`
	Pagination bool          `yaml:"pagination"`
	Params     []paramConfig `yaml:"params"`
}

type paramConfig struct {
	Name     string       `yaml:"name"`
	Type     Type         `yaml:"type"`
	Types    []Type       `yaml:"types"`
	Required bool         `yaml:"required"`
	Default  yaml.Node    `yaml:"default"`
	NotNull  bool         `yaml:"notnull"`
	Enum     []any        `yaml:"enum"`
	Min      *float64     `yaml:"min"`
	Max      *float64     `yaml:"max"`
	Clamp    *clampConfig `yaml:"clamp"`
	Doc      string       `yaml:"doc"`
}

type clampConfig struct {
	Max      int `yaml:"max"`
	Fallback int `yaml:"fallback"`
}

// LoadSchema reads a YAML schema definition. Defaults and enum values in the
// file are normalized with the parameter's first type, so a date default may
// be written as a string.
func LoadSchema(r io.Reader, opts ...SchemaOption) (*Schema, error) {
	var file schemaFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: decode schema: %w", ErrInvalidDescriptor, err)
	}

	var descs []Descriptor
	for _, pc := range file.Params {
		d, err := pc.descriptor()
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}

	if file.Strict {
		opts = append(opts, Strict())
	}
	if file.Pagination {
		// Pagination needs the final config, which options may replace.
		probe := &Schema{cfg: DefaultConfig()}
		for _, opt := range opts {
			opt(probe)
		}
		descs = append(descs, Pagination(probe.cfg)...)
	}

	return NewSchema(descs, opts...)
}

func (pc paramConfig) descriptor() (Descriptor, error) {
	types := pc.Types
	if pc.Type != "" {
		types = append([]Type{pc.Type}, types...)
	}
	if len(types) == 0 {
		types = []Type{TypeAny}
	}
	d := Param(pc.Name, types, Doc(pc.Doc))
	d.Required = pc.Required
	d.nonNull = pc.NotNull
	d.min, d.max = pc.Min, pc.Max

	first := types[0]
	if _, ok := normalizers[first]; !ok {
		return Descriptor{}, fmt.Errorf("%w: %s: unknown type %q", ErrInvalidDescriptor, pc.Name, first)
	}

	if pc.Default.Kind != 0 {
		var raw any
		if err := pc.Default.Decode(&raw); err != nil {
			return Descriptor{}, fmt.Errorf("%w: %s: default: %w", ErrInvalidDescriptor, pc.Name, err)
		}
		if raw != nil {
			v, err := normalizers[first](raw)
			if err != nil {
				return Descriptor{}, fmt.Errorf("%w: %s: default: %w", ErrInvalidDescriptor, pc.Name, err)
			}
			raw = v
		}
		d.def, d.hasDef = raw, true
	}

	elem := first
	switch first {
	case TypeStringList:
		elem = TypeString
	case TypeIDList:
		elem = TypeInt
	}
	for _, e := range pc.Enum {
		v, err := normalizers[elem](e)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: %s: enum: %w", ErrInvalidDescriptor, pc.Name, err)
		}
		d.oneOf = append(d.oneOf, v)
	}

	if pc.Clamp != nil {
		limit := pc.Clamp.Max
		d.clampMax, d.clampTo = &limit, pc.Clamp.Fallback
	}
	return d, nil
}
