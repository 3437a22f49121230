package params

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Sentinel errors for resolution and access.
var (
	ErrMissingRequired = errors.New("missing required parameter")
	ErrInvalidType     = errors.New("invalid type")
	ErrInvalidValue    = errors.New("invalid value")
	ErrUndeclared      = errors.New("undeclared parameter")

	ErrDuplicateDescriptor = errors.New("duplicate descriptor")
	ErrInvalidDescriptor   = errors.New("invalid descriptor")

	ErrAccess      = errors.New("parameter access")
	ErrNotResolved = fmt.Errorf("%w: not resolved", ErrAccess)
)

// Sentinel errors for request extraction.
var (
	ErrBindBody  = errors.New("bind body")
	ErrBindForm  = errors.New("bind form")
	ErrNoRequest = errors.New("no source request")
)

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// ProblemDetail is an RFC 9457 problem details response. It is the single
// error returned by a failed resolve and lists every violation found.
//
//nolint:errname // RFC 9457 standard name
type ProblemDetail struct {
	Type     string      `json:"type,omitempty" yaml:"type,omitempty"`
	Title    string      `json:"title,omitempty" yaml:"title,omitempty"`
	Status   int         `json:"status" yaml:"status"`
	Detail   string      `json:"detail,omitempty" yaml:"detail,omitempty"`
	Instance string      `json:"instance,omitempty" yaml:"instance,omitempty"`
	Errors   []Violation `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func newProblem(violations []Violation) *ProblemDetail {
	return &ProblemDetail{
		Type:   "about:blank",
		Title:  "Validation Failed",
		Status: http.StatusBadRequest,
		Detail: fmt.Sprintf("%d parameter violation(s)", len(violations)),
		Errors: violations,
	}
}

// Error returns the detail followed by each violation.
func (p *ProblemDetail) Error() string {
	msg := p.Detail
	if msg == "" {
		msg = p.Title
	}
	if len(p.Errors) == 0 {
		return msg
	}
	parts := make([]string, len(p.Errors))
	for i, v := range p.Errors {
		parts[i] = v.Error()
	}
	return msg + ": " + strings.Join(parts, "; ")
}

// StatusCode returns the HTTP status code.
func (p *ProblemDetail) StatusCode() int { return p.Status }

// Unwrap exposes every violation so errors.Is matches on any of their kinds.
func (p *ProblemDetail) Unwrap() []error {
	errs := make([]error, len(p.Errors))
	for i := range p.Errors {
		errs[i] = p.Errors[i]
	}
	return errs
}

// Fields returns the names of the violated parameters in report order.
func (p *ProblemDetail) Fields() []string {
	fields := make([]string, len(p.Errors))
	for i, v := range p.Errors {
		fields[i] = v.Field
	}
	return fields
}

// Violation describes a single parameter failure.
type Violation struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
	Value   any    `json:"value,omitempty" yaml:"value,omitempty"`
	Kind    error  `json:"-" yaml:"-"`
}

// Error returns "field: message".
func (v Violation) Error() string {
	return v.Field + ": " + v.Message
}

// Unwrap returns the violation kind (one of the Err* sentinels).
func (v Violation) Unwrap() error { return v.Kind }

// LogValue implements slog.LogValuer.
func (v Violation) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("field", v.Field),
		slog.String("message", v.Message),
	)
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement StatusCoder.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}
