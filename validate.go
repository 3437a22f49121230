package params

// Validator checks a fully resolved option set, typically for rules that span
// several parameters. A returned *ProblemDetail or Violation is merged into the
// resolve error as-is; any other error becomes a single ErrInvalidValue
// violation.
type Validator interface {
	Validate(o *Options) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(o *Options) error

// Validate calls f(o).
func (f ValidatorFunc) Validate(o *Options) error { return f(o) }
