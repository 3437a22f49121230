package params

import (
	"context"
	"maps"
	"net/http"
)

type contextKey[T any] struct{}

func setValue[T any](ctx context.Context, val T) context.Context {
	return context.WithValue(ctx, contextKey[T]{}, val)
}

func getValue[T any](ctx context.Context) (T, bool) {
	val, ok := ctx.Value(contextKey[T]{}).(T)
	return val, ok
}

// attachment is raw input attached to a request by upstream middleware.
type attachment map[string]any

// Attach adds raw values to the request for HTTPExtractor to pick up. They
// override query and body values but not route parameters. Repeated calls
// merge, later values winning.
func Attach(r *http.Request, values map[string]any) *http.Request {
	merged := make(attachment, len(values))
	if prev, ok := getValue[attachment](r.Context()); ok {
		maps.Copy(merged, prev)
	}
	maps.Copy(merged, values)
	return r.WithContext(setValue(r.Context(), merged))
}

// WithParams stores resolved params in ctx.
func WithParams(ctx context.Context, p *Params) context.Context {
	return setValue(ctx, p)
}

// FromContext returns the params stored by Bind or WithParams.
func FromContext(ctx context.Context) (*Params, bool) {
	p, ok := getValue[*Params](ctx)
	return p, ok && p != nil
}
