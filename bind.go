package params

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
)

// ErrorHandler writes the response for a request whose parameters failed to
// resolve.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type binder struct {
	schema  *Schema
	onError ErrorHandler
	logger  *slog.Logger
}

// BindOption configures Bind.
type BindOption func(*binder)

// WithErrorHandler replaces the default problem-details error response.
func WithErrorHandler(h ErrorHandler) BindOption {
	return func(b *binder) {
		b.onError = h
	}
}

// WithBindLogger sets the logger for rejected requests. It defaults to the
// schema's logger.
func WithBindLogger(l *slog.Logger) BindOption {
	return func(b *binder) {
		b.logger = l
	}
}

// Bind returns middleware that resolves s for every request. On success the
// *Params is available to the next handler through FromContext; on failure
// the request is answered with the problem details and next is not called.
func Bind(s *Schema, opts ...BindOption) Middleware {
	b := &binder{schema: s, logger: s.logger}
	for _, opt := range opts {
		opt(b)
	}
	if b.onError == nil {
		b.onError = func(w http.ResponseWriter, r *http.Request, err error) {
			WriteError(w, r, s, err)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := s.FromRequest(r)
			if err != nil {
				attrs := []slog.Attr{
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				}
				var pd *ProblemDetail
				if errors.As(err, &pd) {
					attrs = append(attrs, slog.Any("violations", pd.Fields()))
				} else {
					attrs = append(attrs, slog.String("err", err.Error()))
				}
				b.logger.LogAttrs(r.Context(), slog.LevelInfo, "request parameters rejected", attrs...)
				b.onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithParams(r.Context(), p)))
		})
	}
}

// WriteError writes err as RFC 9457 problem details in the format the request
// asked for. Resolution failures keep their violations and extraction
// failures become a plain 400. Other errors use their StatusCoder status, or
// 500 without one.
func WriteError(w http.ResponseWriter, r *http.Request, s *Schema, err error) {
	var (
		pd *ProblemDetail
		sc StatusCoder
	)
	switch {
	case errors.As(err, &pd):
	case errors.As(err, &sc):
		pd = &ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(sc.StatusCode()),
			Status: sc.StatusCode(),
			Detail: err.Error(),
		}
	case errors.Is(err, ErrBindBody), errors.Is(err, ErrBindForm):
		pd = &ProblemDetail{
			Type:   "about:blank",
			Title:  "Bad Request",
			Status: http.StatusBadRequest,
			Detail: err.Error(),
		}
	default:
		pd = &ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(http.StatusInternalServerError),
			Status: http.StatusInternalServerError,
		}
	}

	if id := GetRequestID(r); id != "" && pd.Instance == "" {
		cp := *pd
		cp.Instance = "urn:request:" + id
		pd = &cp
	}

	enc := requestEncoder(r, s)
	w.Header().Set("Content-Type", enc.ContentType())
	w.WriteHeader(pd.Status)
	//nolint:errcheck,gosec // best-effort after WriteHeader
	enc.Encode(w, pd)
}

// Render writes v with the encoder for the params' resolved _format.
func Render(w http.ResponseWriter, p *Params, status int, v any) error {
	enc, ok := EncoderFor(p.ResponseFormat())
	if !ok {
		enc = jsonCodec{}
	}
	w.Header().Set("Content-Type", enc.ContentType())
	w.WriteHeader(status)
	return enc.Encode(w, v)
}

// requestEncoder picks an encoder for a request that may not have resolved:
// the raw _format when it is allowed, else the configured default, else JSON.
func requestEncoder(r *http.Request, s *Schema) Encoder {
	cfg := s.Config()
	candidates := []string{r.PathValue(FormatKey), r.URL.Query().Get(FormatKey), cfg.DefaultFormat}
	for _, f := range candidates {
		if f == "" || !slices.Contains(cfg.Formats, f) {
			continue
		}
		if enc, ok := EncoderFor(f); ok {
			return enc
		}
	}
	return jsonCodec{}
}
