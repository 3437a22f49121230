package params

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// resolveValue normalizes one present raw value and checks it against the
// descriptor's constraints.
func (s *Schema) resolveValue(d Descriptor, raw any) (any, *Violation) {
	if raw == nil {
		if d.Nullable() {
			return nil, nil
		}
		return nil, &Violation{
			Field:   d.Name,
			Message: fmt.Sprintf("%s: must not be null", ErrInvalidType),
			Kind:    ErrInvalidType,
		}
	}

	val, err := normalizeTypes(d.Types, raw)
	if err != nil {
		return nil, &Violation{Field: d.Name, Message: err.Error(), Value: raw, Kind: ErrInvalidType}
	}

	if d.normalize != nil {
		val, err = d.normalize(val)
		if err != nil {
			kind := ErrInvalidType
			if errors.Is(err, ErrInvalidValue) {
				kind = ErrInvalidValue
			}
			return nil, &Violation{Field: d.Name, Message: err.Error(), Value: raw, Kind: kind}
		}
	}

	val = s.clamp(d, val)

	if v := checkRange(d, val); v != nil {
		return nil, v
	}
	if v := checkOneOf(d, val); v != nil {
		return nil, v
	}
	return val, nil
}

// normalizeTypes tries each type's normalizer in order and returns the first
// success.
func normalizeTypes(types []Type, raw any) (any, error) {
	var firstErr error
	for _, t := range types {
		val, err := normalizers[t](raw)
		if err == nil {
			return val, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if len(types) == 1 {
		return nil, firstErr
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return nil, invalidType(strings.Join(names, " or "), raw)
}

// clamp applies the soft ceiling. Values over the limit are replaced, never
// rejected.
func (s *Schema) clamp(d Descriptor, val any) any {
	if d.clampMax == nil {
		return val
	}
	n, ok := val.(int)
	if !ok || n <= *d.clampMax {
		return val
	}
	s.logger.Debug("parameter clamped",
		"param", d.Name,
		"value", n,
		"max", *d.clampMax,
		"fallback", d.clampTo,
	)
	return d.clampTo
}

func checkRange(d Descriptor, val any) *Violation {
	if d.min == nil && d.max == nil {
		return nil
	}
	f, ok := numericValue(val)
	if !ok {
		return nil
	}
	if d.min != nil && f < *d.min {
		return &Violation{
			Field:   d.Name,
			Message: fmt.Sprintf("%s: must be at least %v", ErrInvalidValue, *d.min),
			Value:   val,
			Kind:    ErrInvalidValue,
		}
	}
	if d.max != nil && f > *d.max {
		return &Violation{
			Field:   d.Name,
			Message: fmt.Sprintf("%s: must be at most %v", ErrInvalidValue, *d.max),
			Value:   val,
			Kind:    ErrInvalidValue,
		}
	}
	return nil
}

func checkOneOf(d Descriptor, val any) *Violation {
	if len(d.oneOf) == 0 {
		return nil
	}

	items := []any{val}
	if rv := reflect.ValueOf(val); rv.Kind() == reflect.Slice {
		items = make([]any, rv.Len())
		for i := range rv.Len() {
			items[i] = rv.Index(i).Interface()
		}
	}

	for _, item := range items {
		found := false
		for _, allowed := range d.oneOf {
			if equalValue(allowed, item) {
				found = true
				break
			}
		}
		if !found {
			return &Violation{
				Field:   d.Name,
				Message: fmt.Sprintf("%s: must be one of %v", ErrInvalidValue, d.oneOf),
				Value:   item,
				Kind:    ErrInvalidValue,
			}
		}
	}
	return nil
}

// equalValue compares an allowed value with a normalized one. Integers of
// different Go kinds compare by value.
func equalValue(a, b any) bool {
	if x, ok := integerValue(a); ok {
		y, ok := integerValue(b)
		return ok && x == y
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}

func numericValue(val any) (float64, bool) {
	if f, ok := val.(float64); ok {
		return f, true
	}
	n, ok := integerValue(val)
	return float64(n), ok
}
