package params

import (
	"errors"
	"maps"
	"slices"
)

// Resolve validates raw against the schema and returns a fully defaulted
// option set. Every violation found is reported in a single *ProblemDetail;
// no partial result is returned. A key counts as present when it exists in
// raw, even if its value is nil.
func (s *Schema) Resolve(raw map[string]any) (*Options, error) {
	out := newOptions()
	var violations []Violation

	for _, d := range s.descs {
		v, present := raw[d.Name]
		if !present {
			if d.Required {
				violations = append(violations, Violation{
					Field:   d.Name,
					Message: ErrMissingRequired.Error(),
					Kind:    ErrMissingRequired,
				})
				continue
			}
			def, _ := d.DefaultValue()
			out.m.Set(d.Name, def)
			continue
		}

		val, violation := s.resolveValue(d, v)
		if violation != nil {
			violations = append(violations, *violation)
			continue
		}
		out.m.Set(d.Name, val)
	}

	for _, k := range slices.Sorted(maps.Keys(raw)) {
		if _, declared := s.index[k]; declared {
			continue
		}
		if s.strict {
			violations = append(violations, Violation{
				Field:   k,
				Message: ErrUndeclared.Error(),
				Value:   raw[k],
				Kind:    ErrUndeclared,
			})
			continue
		}
		out.m.Set(k, raw[k])
	}

	if len(violations) > 0 {
		return nil, newProblem(violations)
	}

	for _, v := range s.validators {
		if err := v.Validate(out); err != nil {
			violations = append(violations, validatorViolations(err)...)
		}
	}
	if len(violations) > 0 {
		return nil, newProblem(violations)
	}

	return out, nil
}

func validatorViolations(err error) []Violation {
	var pd *ProblemDetail
	if errors.As(err, &pd) {
		return pd.Errors
	}
	var v Violation
	if errors.As(err, &v) {
		return []Violation{v}
	}
	return []Violation{{Message: err.Error(), Kind: ErrInvalidValue}}
}
