package params

import (
	"fmt"
	"reflect"
	"slices"
)

// Descriptor declares one named request parameter.
type Descriptor struct {
	Name     string
	Types    []Type
	Required bool
	Doc      string

	def    any
	hasDef bool

	nonNull bool

	oneOf []any

	min, max  *float64
	clampMax  *int
	clampTo   int
	normalize Normalizer
}

// DescriptorOption configures a Descriptor at declaration time.
type DescriptorOption func(*Descriptor)

// Param declares a parameter accepting any of the given types, tried in order.
func Param(name string, types []Type, opts ...DescriptorOption) Descriptor {
	d := Descriptor{Name: name, Types: slices.Clone(types)}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Int declares an integer parameter.
func Int(name string, opts ...DescriptorOption) Descriptor {
	return Param(name, []Type{TypeInt}, opts...)
}

// Bool declares a boolean parameter.
func Bool(name string, opts ...DescriptorOption) Descriptor {
	return Param(name, []Type{TypeBool}, opts...)
}

// String declares a string parameter.
func String(name string, opts ...DescriptorOption) Descriptor {
	return Param(name, []Type{TypeString}, opts...)
}

// StringList declares an ordered list of strings.
func StringList(name string, opts ...DescriptorOption) Descriptor {
	return Param(name, []Type{TypeStringList}, opts...)
}

// IDList declares an ordered list of integer identifiers.
func IDList(name string, opts ...DescriptorOption) Descriptor {
	return Param(name, []Type{TypeIDList}, opts...)
}

// Float declares a floating point parameter.
func Float(name string, opts ...DescriptorOption) Descriptor {
	return Param(name, []Type{TypeFloat}, opts...)
}

// Date declares a date/time parameter.
func Date(name string, opts ...DescriptorOption) Descriptor {
	return Param(name, []Type{TypeDate}, opts...)
}

// UUID declares a UUID parameter.
func UUID(name string, opts ...DescriptorOption) Descriptor {
	return Param(name, []Type{TypeUUID}, opts...)
}

// Any declares a parameter whose value is passed through untouched.
func Any(name string, opts ...DescriptorOption) Descriptor {
	return Param(name, []Type{TypeAny}, opts...)
}

// Required marks the parameter as mandatory.
func Required() DescriptorOption {
	return func(d *Descriptor) {
		d.Required = true
	}
}

// Default sets the value used when an optional parameter is absent. The value
// is used verbatim.
func Default(v any) DescriptorOption {
	return func(d *Descriptor) {
		d.def = v
		d.hasDef = true
	}
}

// NotNull rejects an explicit null value.
func NotNull() DescriptorOption {
	return func(d *Descriptor) {
		d.nonNull = true
	}
}

// OneOf restricts the normalized value to the given set. For list types every
// element must be a member.
func OneOf(values ...any) DescriptorOption {
	return func(d *Descriptor) {
		d.oneOf = append(d.oneOf, values...)
	}
}

// Min rejects numeric values below n.
func Min(n float64) DescriptorOption {
	return func(d *Descriptor) {
		d.min = &n
	}
}

// Max rejects numeric values above n.
func Max(n float64) DescriptorOption {
	return func(d *Descriptor) {
		d.max = &n
	}
}

// Clamp replaces integer values above limit with fallback instead of failing.
func Clamp(limit, fallback int) DescriptorOption {
	return func(d *Descriptor) {
		d.clampMax = &limit
		d.clampTo = fallback
	}
}

// Normalize runs fn on the type-normalized value. Errors wrapping
// ErrInvalidValue are reported as invalid values, others as invalid types.
func Normalize(fn Normalizer) DescriptorOption {
	return func(d *Descriptor) {
		d.normalize = fn
	}
}

// Doc attaches a human readable description.
func Doc(s string) DescriptorOption {
	return func(d *Descriptor) {
		d.Doc = s
	}
}

// DefaultValue returns the declared default and whether one was set.
func (d Descriptor) DefaultValue() (any, bool) { return d.def, d.hasDef }

// Nullable reports whether an explicit null is accepted.
func (d Descriptor) Nullable() bool { return !d.nonNull }

// AllowedValues returns a copy of the OneOf set.
func (d Descriptor) AllowedValues() []any { return slices.Clone(d.oneOf) }

// listTyped reports whether every accepted type is a list type.
func (d Descriptor) listTyped() bool {
	if len(d.Types) == 0 {
		return false
	}
	for _, t := range d.Types {
		if !t.IsList() {
			return false
		}
	}
	return true
}

// holds reports whether a value of type rt can be read from the parameter.
// Custom normalizers and TypeAny may produce anything.
func (d Descriptor) holds(rt reflect.Type) bool {
	if rt.Kind() == reflect.Interface || d.normalize != nil {
		return true
	}
	for _, t := range d.Types {
		if t == TypeAny || goTypes[t] == rt {
			return true
		}
	}
	return false
}

// check reports authoring mistakes.
func (d Descriptor) check() error {
	if d.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDescriptor)
	}
	if len(d.Types) == 0 {
		return fmt.Errorf("%w: %s: no types", ErrInvalidDescriptor, d.Name)
	}
	for _, t := range d.Types {
		if _, ok := normalizers[t]; !ok {
			return fmt.Errorf("%w: %s: unknown type %q", ErrInvalidDescriptor, d.Name, t)
		}
	}
	if d.Required && d.hasDef {
		return fmt.Errorf("%w: %s: required parameter cannot have a default", ErrInvalidDescriptor, d.Name)
	}
	if d.min != nil && d.max != nil && *d.min > *d.max {
		return fmt.Errorf("%w: %s: min %v exceeds max %v", ErrInvalidDescriptor, d.Name, *d.min, *d.max)
	}
	if d.clampMax != nil && d.clampTo > *d.clampMax {
		return fmt.Errorf("%w: %s: clamp fallback %d exceeds max %d", ErrInvalidDescriptor, d.Name, d.clampTo, *d.clampMax)
	}
	return nil
}
