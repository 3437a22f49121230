package params

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrBodyTooLarge is reported when a request body exceeds its size limit.
var ErrBodyTooLarge = fmt.Errorf("%w: body too large", ErrBindBody)

type bodyTooLargeError struct {
	limit int64
}

func (e *bodyTooLargeError) Error() string {
	return fmt.Sprintf("%v: limit is %d bytes", ErrBodyTooLarge, e.limit)
}

func (e *bodyTooLargeError) Unwrap() error { return ErrBodyTooLarge }

func (e *bodyTooLargeError) StatusCode() int { return http.StatusRequestEntityTooLarge }

// BodyLimit returns middleware that limits the request body to maxBytes.
// Extraction of a larger body fails with ErrBodyTooLarge, which WriteError
// answers with 413 Payload Too Large.
func BodyLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// bodyError wraps a body read failure, keeping size-limit failures distinct.
func bodyError(sentinel, err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return &bodyTooLargeError{limit: mbe.Limit}
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
