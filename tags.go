package params

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// schemaCache holds one compiled schema per struct type.
var schemaCache sync.Map // map[reflect.Type]schemaEntry

type schemaEntry struct {
	schema *Schema
	err    error
}

// SchemaFor compiles a schema from the `param` struct tags of T. Without
// options the schema is cached, so every such call for the same type returns
// the same *Schema. Calls with options compile a new schema each time.
//
// Supported tags:
//
//	param:"name[,required][,notnull]"
//	default:"3"         parsed with the field's type; lists are comma separated
//	enum:"a,b,c"        allowed values
//	minimum:"1"         hard lower bound
//	maximum:"50"        hard upper bound
//	clamp:"100"         soft ceiling, falls back to the default
//	doc:"..."           description
//
// The parameter type is derived from the field type: integers, bool, string,
// []string, []int64, float64, time.Time and uuid.UUID, optionally behind a
// pointer. Other field types accept any value.
func SchemaFor[T any](opts ...SchemaOption) (*Schema, error) {
	t := reflect.TypeFor[T]()
	if len(opts) > 0 {
		descs, err := descriptorsFromTags(t)
		if err != nil {
			return nil, err
		}
		return NewSchema(descs, opts...)
	}
	if cached, ok := schemaCache.Load(t); ok {
		e := cached.(schemaEntry)
		return e.schema, e.err
	}

	descs, err := descriptorsFromTags(t)
	var s *Schema
	if err == nil {
		s, err = NewSchema(descs)
	}
	actual, _ := schemaCache.LoadOrStore(t, schemaEntry{schema: s, err: err})
	e := actual.(schemaEntry)
	return e.schema, e.err
}

// descriptorsFromTags builds one descriptor per tagged field.
func descriptorsFromTags(t reflect.Type) ([]Descriptor, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidDescriptor, t)
	}

	var descs []Descriptor
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("param")
		if tag == "" || tag == "-" {
			continue
		}
		d, err := fieldDescriptor(f, tag)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

func fieldDescriptor(f reflect.StructField, tag string) (Descriptor, error) {
	name, opts := tagOptions(tag)
	typ := fieldType(f.Type)
	d := Param(name, []Type{typ}, Doc(f.Tag.Get("doc")))

	if tagContains(opts, "required") {
		d.Required = true
	}
	if tagContains(opts, "notnull") {
		d.nonNull = true
	}

	if raw, ok := f.Tag.Lookup("default"); ok {
		v, err := parseTagValue(typ, raw)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: %s: default: %w", ErrInvalidDescriptor, name, err)
		}
		d.def, d.hasDef = v, true
	}

	if raw := f.Tag.Get("enum"); raw != "" {
		elem := typ
		switch typ {
		case TypeStringList:
			elem = TypeString
		case TypeIDList:
			elem = TypeInt
		}
		for part := range strings.SplitSeq(raw, ",") {
			v, err := parseTagValue(elem, part)
			if err != nil {
				return Descriptor{}, fmt.Errorf("%w: %s: enum: %w", ErrInvalidDescriptor, name, err)
			}
			d.oneOf = append(d.oneOf, v)
		}
	}

	for key, dst := range map[string]**float64{"minimum": &d.min, "maximum": &d.max} {
		if raw := f.Tag.Get(key); raw != "" {
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return Descriptor{}, fmt.Errorf("%w: %s: %s: %w", ErrInvalidDescriptor, name, key, err)
			}
			*dst = &n
		}
	}
	lo, hi := kindBounds(f.Type)
	if lo != nil && (d.min == nil || *d.min < *lo) {
		d.min = lo
	}
	if hi != nil && (d.max == nil || *d.max > *hi) {
		d.max = hi
	}

	if raw := f.Tag.Get("clamp"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: %s: clamp: %w", ErrInvalidDescriptor, name, err)
		}
		fallback, ok := d.def.(int)
		if !ok {
			return Descriptor{}, fmt.Errorf("%w: %s: clamp needs an int default", ErrInvalidDescriptor, name)
		}
		d.clampMax, d.clampTo = &n, fallback
	}

	return d, nil
}

// fieldType maps a Go field type to a parameter type.
func fieldType(t reflect.Type) Type {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case reflect.TypeFor[time.Time]():
		return TypeDate
	case reflect.TypeFor[uuid.UUID]():
		return TypeUUID
	case reflect.TypeFor[[]string]():
		return TypeStringList
	case reflect.TypeFor[[]int64]():
		return TypeIDList
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInt
	case reflect.Bool:
		return TypeBool
	case reflect.String:
		return TypeString
	case reflect.Float32, reflect.Float64:
		return TypeFloat
	default:
		return TypeAny
	}
}

// kindBounds returns the range of integer fields narrower than int, and a
// lower bound of 0 for unsigned fields.
func kindBounds(t reflect.Type) (lo, hi *float64) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	bound := func(n float64) *float64 { return &n }

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		bits := t.Bits()
		return bound(-math.Exp2(float64(bits - 1))), bound(math.Exp2(float64(bits-1)) - 1)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return bound(0), bound(math.Exp2(float64(t.Bits())) - 1)
	case reflect.Uint, reflect.Uint64:
		return bound(0), nil
	default:
		return nil, nil
	}
}

// parseTagValue converts a tag string with the normalizer of typ.
func parseTagValue(typ Type, raw string) (any, error) {
	var in any = raw
	if typ.IsList() {
		in = strings.Split(raw, ",")
	}
	return normalizers[typ](in)
}

// Decode copies resolved values into the `param`-tagged fields of the struct
// dst points to. Null values leave the field untouched.
func Decode(p *Params, dst any) error {
	if p.opts == nil {
		return ErrNotResolved
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: decode target must be a non-nil struct pointer, got %T", ErrAccess, dst)
	}
	rv = rv.Elem()
	t := rv.Type()

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _ := tagOptions(f.Tag.Get("param"))
		if name == "" || name == "-" {
			continue
		}
		v, ok := p.opts.Get(name)
		if !ok {
			return fmt.Errorf("%w: %s: not declared", ErrAccess, name)
		}
		if v == nil {
			continue
		}
		if err := setField(rv.Field(i), v); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrAccess, name, err)
		}
	}
	return nil
}

func setField(field reflect.Value, v any) error {
	if field.Kind() == reflect.Pointer {
		elem := reflect.New(field.Type().Elem())
		if err := setField(elem.Elem(), v); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	val := reflect.ValueOf(v)
	if err := checkOverflow(field, val); err != nil {
		return err
	}
	switch {
	case val.Type().AssignableTo(field.Type()):
		field.Set(val)
	case val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String && field.Kind() != reflect.String:
		field.Set(val.Convert(field.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", v, field.Type())
	}
	return nil
}

// checkOverflow rejects integers that do not fit the field.
func checkOverflow(field reflect.Value, val reflect.Value) error {
	//exhaustive:ignore
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return nil
	}
	n := val.Int()

	//exhaustive:ignore
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.OverflowInt(n) {
			return fmt.Errorf("%d overflows %s", n, field.Type())
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n < 0 || field.OverflowUint(uint64(n)) {
			return fmt.Errorf("%d overflows %s", n, field.Type())
		}
	}
	return nil
}

// tagOptions splits a struct tag value on comma and returns
// the name and remaining options.
func tagOptions(tag string) (string, string) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, opts
}

// tagContains reports whether a comma-separated list of options
// contains a particular option.
func tagContains(opts string, name string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == name {
			return true
		}
	}
	return false
}
