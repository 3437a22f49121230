package params

import (
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Params is the per-request view of a Schema: it owns the most recently
// resolved options and, when built from a request, the request itself.
//
// A Params starts unresolved (unless built with input), becomes resolved on
// the first successful Resolve and stays resolved; later resolves replace the
// options wholesale. A failed resolve leaves the previous options in place.
// A Params is not safe for concurrent use.
type Params struct {
	schema *Schema
	req    *http.Request
	opts   *Options
}

// New returns params with no input. When the schema declares no required
// parameters the defaults are resolved immediately; otherwise the params stay
// unresolved until Resolve is called.
func (s *Schema) New() (*Params, error) {
	p := &Params{schema: s}
	for _, d := range s.descs {
		if d.Required {
			return p, nil
		}
	}
	if err := p.Resolve(nil); err != nil {
		return nil, err
	}
	return p, nil
}

// FromMap returns params resolved from raw.
func (s *Schema) FromMap(raw map[string]any) (*Params, error) {
	p := &Params{schema: s}
	if err := p.Resolve(raw); err != nil {
		return nil, err
	}
	return p, nil
}

// FromRequest returns params resolved from r via the schema's Extractor.
func (s *Schema) FromRequest(r *http.Request) (*Params, error) {
	p := &Params{schema: s, req: r}
	if err := p.refresh(); err != nil {
		return nil, err
	}
	return p, nil
}

// extract pulls raw input from r and fills _format from the Accept header
// when negotiation is enabled.
func (s *Schema) extract(r *http.Request) (map[string]any, error) {
	raw, err := s.extractor.Extract(r, s)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	if !s.negotiate {
		return raw, nil
	}
	if _, supplied := raw[FormatKey]; supplied {
		return raw, nil
	}
	if _, declared := s.index[FormatKey]; !declared {
		return raw, nil
	}
	if f, ok := negotiateFormat(r, s.cfg.Formats); ok {
		raw[FormatKey] = f
	}
	return raw, nil
}

// Schema returns the schema the params were built from.
func (p *Params) Schema() *Schema { return p.schema }

// Request returns the source request, or nil.
func (p *Params) Request() *http.Request { return p.req }

// Resolved reports whether a resolve has succeeded.
func (p *Params) Resolved() bool { return p.opts != nil }

// Resolve validates raw and replaces the current options. Values resolved by
// an earlier call are never merged in; absent optional parameters get their
// defaults again.
func (p *Params) Resolve(raw map[string]any) error {
	opts, err := p.schema.Resolve(raw)
	if err != nil {
		return err
	}
	p.opts = opts
	return nil
}

func (p *Params) refresh() error {
	if p.req == nil {
		return ErrNoRequest
	}
	raw, err := p.schema.extract(p.req)
	if err != nil {
		return err
	}
	return p.Resolve(raw)
}

// Options returns the resolved options. With forceRefresh, params built from a
// request are re-extracted and re-resolved first; for other params the flag
// has no effect.
func (p *Params) Options(forceRefresh bool) (*Options, error) {
	if forceRefresh && p.req != nil {
		if err := p.refresh(); err != nil {
			return nil, err
		}
	}
	if p.opts == nil {
		return nil, ErrNotResolved
	}
	return p.opts, nil
}

// Value returns the resolved value of name as T. A resolved null yields the
// zero T when T is one of the declared types. Unresolved params, unknown names and values of another type are
// access errors.
func Value[T any](p *Params, name string) (T, error) {
	var zero T
	if p.opts == nil {
		return zero, fmt.Errorf("%w: %s", ErrNotResolved, name)
	}
	v, ok := p.opts.Get(name)
	if !ok {
		return zero, fmt.Errorf("%w: %s: not declared", ErrAccess, name)
	}
	if v == nil {
		if d, declared := p.schema.Lookup(name); declared && !d.holds(reflect.TypeFor[T]()) {
			return zero, fmt.Errorf("%w: %s: declared %v, not %v", ErrAccess, name, d.Types, reflect.TypeFor[T]())
		}
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s: holds %T, not %T", ErrAccess, name, v, zero)
	}
	return t, nil
}

// Get returns the raw resolved value of name.
func (p *Params) Get(name string) (any, error) { return Value[any](p, name) }

// Int returns an int parameter.
func (p *Params) Int(name string) (int, error) { return Value[int](p, name) }

// Bool returns a bool parameter.
func (p *Params) Bool(name string) (bool, error) { return Value[bool](p, name) }

// String returns a string parameter.
func (p *Params) String(name string) (string, error) { return Value[string](p, name) }

// Strings returns a string-list parameter.
func (p *Params) Strings(name string) ([]string, error) { return Value[[]string](p, name) }

// IDs returns an id-list parameter.
func (p *Params) IDs(name string) ([]int64, error) { return Value[[]int64](p, name) }

// Float returns a float parameter.
func (p *Params) Float(name string) (float64, error) { return Value[float64](p, name) }

// Time returns a date parameter.
func (p *Params) Time(name string) (time.Time, error) { return Value[time.Time](p, name) }

// UUID returns a uuid parameter.
func (p *Params) UUID(name string) (uuid.UUID, error) { return Value[uuid.UUID](p, name) }

// ResponseFormat returns the resolved _format, or "" when there is none.
func (p *Params) ResponseFormat() string {
	f, _ := Value[string](p, FormatKey)
	return f
}

// SetResponseFormat overrides the resolved _format. The value is not
// validated; the options are rebuilt rather than edited. It fails on
// unresolved params and on schemas that do not declare _format.
func (p *Params) SetResponseFormat(format string) error {
	if p.opts == nil {
		return fmt.Errorf("%w: %s", ErrNotResolved, FormatKey)
	}
	if _, declared := p.schema.Lookup(FormatKey); !declared {
		return fmt.Errorf("%w: %s: not declared", ErrAccess, FormatKey)
	}
	p.opts = p.opts.With(FormatKey, format)
	return nil
}
