package params

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Type tags a parameter's accepted value shape.
type Type string

// Supported parameter types.
const (
	TypeInt        Type = "int"
	TypeBool       Type = "bool"
	TypeString     Type = "string"
	TypeStringList Type = "string-list"
	TypeIDList     Type = "id-list"
	TypeFloat      Type = "float"
	TypeDate       Type = "date"
	TypeUUID       Type = "uuid"
	TypeAny        Type = "any"
)

// IsList reports whether values of t are ordered sequences.
func (t Type) IsList() bool {
	return t == TypeStringList || t == TypeIDList
}

// Normalizer converts a raw value into its canonical form or reports why it
// cannot. Errors wrap ErrInvalidType.
type Normalizer func(raw any) (any, error)

// normalizers maps each type tag to its normalizer.
var normalizers = map[Type]Normalizer{
	TypeInt:        func(raw any) (any, error) { return NormalizeInt(raw) },
	TypeBool:       func(raw any) (any, error) { return NormalizeBool(raw) },
	TypeString:     func(raw any) (any, error) { return NormalizeString(raw) },
	TypeStringList: func(raw any) (any, error) { return NormalizeStringList(raw) },
	TypeIDList:     func(raw any) (any, error) { return NormalizeIDList(raw) },
	TypeFloat:      func(raw any) (any, error) { return NormalizeFloat(raw) },
	TypeDate:       func(raw any) (any, error) { return NormalizeDate(raw) },
	TypeUUID:       func(raw any) (any, error) { return NormalizeUUID(raw) },
	TypeAny:        func(raw any) (any, error) { return raw, nil },
}

// goTypes maps each type to the Go type its normalizer produces.
var goTypes = map[Type]reflect.Type{
	TypeInt:        reflect.TypeFor[int](),
	TypeBool:       reflect.TypeFor[bool](),
	TypeString:     reflect.TypeFor[string](),
	TypeStringList: reflect.TypeFor[[]string](),
	TypeIDList:     reflect.TypeFor[[]int64](),
	TypeFloat:      reflect.TypeFor[float64](),
	TypeDate:       reflect.TypeFor[time.Time](),
	TypeUUID:       reflect.TypeFor[uuid.UUID](),
}

// NormalizerFor returns the normalizer registered for t.
func NormalizerFor(t Type) (Normalizer, bool) {
	n, ok := normalizers[t]
	return n, ok
}

// booleanTypes and booleanValues enumerate every raw input NormalizeBool
// accepts. String values also match case-insensitively.
var (
	booleanTypes  = [...]string{"bool", "int", "string"}
	booleanValues = [...]any{true, false, 1, 0, "true", "false", "1", "0"}
)

// BooleanTypes returns the raw kinds accepted by NormalizeBool.
func BooleanTypes() []string {
	return slices.Clone(booleanTypes[:])
}

// BooleanValues returns the raw values accepted by NormalizeBool.
func BooleanValues() []any {
	return slices.Clone(booleanValues[:])
}

// NormalizeBool maps true/false, 1/0 and their string forms to a bool.
func NormalizeBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch cases.Fold().String(strings.TrimSpace(v)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	default:
		if n, ok := integerValue(raw); ok {
			switch n {
			case 1:
				return true, nil
			case 0:
				return false, nil
			}
		}
	}
	return false, invalidType("bool", raw)
}

// NormalizeInt accepts any integer-valued number or base-10 string.
func NormalizeInt(raw any) (int, error) {
	if s, ok := raw.(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, invalidType("int", raw)
		}
		return n, nil
	}
	n, ok := integerValue(raw)
	if !ok || n < math.MinInt || n > math.MaxInt {
		return 0, invalidType("int", raw)
	}
	return int(n), nil
}

// NormalizeFloat accepts any number or numeric string.
func NormalizeFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, invalidType("float", raw)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, invalidType("float", raw)
		}
		return f, nil
	}
	if n, ok := integerValue(raw); ok {
		return float64(n), nil
	}
	return 0, invalidType("float", raw)
}

// NormalizeString accepts strings only.
func NormalizeString(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", invalidType("string", raw)
	}
	return s, nil
}

// NormalizeStringList accepts a sequence whose elements are all strings.
// Scalars are rejected rather than wrapped.
func NormalizeStringList(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return slices.Clone(v), nil
	case []any:
		out := make([]string, len(v))
		for i, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%w: expected string-list, element %d is %T", ErrInvalidType, i, e)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, invalidType("string-list", raw)
}

// NormalizeIDList accepts a sequence whose elements are all integers or
// integer strings.
func NormalizeIDList(raw any) ([]int64, error) {
	rv := reflect.ValueOf(raw)
	if raw == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, invalidType("id-list", raw)
	}
	out := make([]int64, rv.Len())
	for i := range rv.Len() {
		e := rv.Index(i).Interface()
		if s, ok := e.(string); ok {
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: expected id-list, element %d is %q", ErrInvalidType, i, s)
			}
			out[i] = n
			continue
		}
		n, ok := integerValue(e)
		if !ok {
			return nil, fmt.Errorf("%w: expected id-list, element %d is %T", ErrInvalidType, i, e)
		}
		out[i] = n
	}
	return out, nil
}

// dateLayouts are tried in order by NormalizeDate.
var dateLayouts = [...]string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	time.DateOnly,
}

// NormalizeDate accepts a time.Time or an RFC 3339, ISO 8601 or YYYY-MM-DD
// string.
func NormalizeDate(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, invalidType("date", raw)
}

// NormalizeUUID accepts a uuid.UUID or its string form.
func NormalizeUUID(raw any) (uuid.UUID, error) {
	switch v := raw.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err == nil {
			return id, nil
		}
	}
	return uuid.Nil, invalidType("uuid", raw)
}

// integerValue extracts an int64 from integer kinds, integral floats and
// json.Number. Booleans are never integers.
func integerValue(raw any) (int64, bool) {
	switch v := raw.(type) {
	case nil, bool:
		return 0, false
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float32:
		return integerValue(float64(v))
	}

	rv := reflect.ValueOf(raw)
	//exhaustive:ignore
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	default:
		return 0, false
	}
}

func invalidType(want string, raw any) error {
	if raw == nil {
		return fmt.Errorf("%w: expected %s, got null", ErrInvalidType, want)
	}
	return fmt.Errorf("%w: expected %s, got %T", ErrInvalidType, want, raw)
}
