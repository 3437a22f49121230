package params

import (
	"context"
	"fmt"
	"net/http"
)

// Void is used as a response type parameter when a handler has no body to
// return (results in 204 No Content).
type Void struct{}

// Handler is a typed handler whose request struct is decoded from resolved
// parameters. The *Params is also available from ctx through FromContext.
type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)

// Handle adapts h into an http.Handler. The schema is derived from the
// `param` tags of Req with SchemaFor; it panics if the tags are invalid.
// With opts the handler gets its own schema rather than the cached one.
// Responses are rendered in the resolved _format, and handler errors are
// written as problem details.
func Handle[Req, Resp any](h Handler[Req, Resp], opts ...SchemaOption) http.Handler {
	s, err := SchemaFor[Req](opts...)
	if err != nil {
		panic(fmt.Sprintf("params: handler schema: %v", err))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.FromRequest(r)
		if err != nil {
			WriteError(w, r, s, err)
			return
		}

		var req Req
		if err := Decode(p, &req); err != nil {
			WriteError(w, r, s, err)
			return
		}

		resp, err := h(WithParams(r.Context(), p), &req)
		if err != nil {
			WriteError(w, r, s, err)
			return
		}

		if _, ok := any(resp).(*Void); ok || resp == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		//nolint:errcheck,gosec // best-effort after WriteHeader
		Render(w, p, http.StatusOK, resp)
	})
}
