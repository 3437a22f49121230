package params_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bjaus/params"
	"github.com/bjaus/params/paramtest"
)

func TestLogger(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		handlerStatus int
		bind          bool
		target        string
		wantSubstr    []string
		notSubstr     []string
	}{
		"request is logged": {
			handlerStatus: http.StatusOK,
			target:        "/test-log",
			wantSubstr:    []string{"msg=request", "method=GET", "path=/test-log", "status=200", "latency="},
			notSubstr:     []string{"params."},
		},
		"status code is captured": {
			handlerStatus: http.StatusCreated,
			target:        "/",
			wantSubstr:    []string{"status=201", "level=INFO"},
		},
		"client error is logged at warn": {
			handlerStatus: http.StatusNotFound,
			target:        "/",
			wantSubstr:    []string{"status=404", "level=WARN"},
		},
		"server error is logged at error": {
			handlerStatus: http.StatusBadGateway,
			target:        "/",
			wantSubstr:    []string{"status=502", "level=ERROR"},
		},
		"resolved params are logged": {
			handlerStatus: http.StatusOK,
			bind:          true,
			target:        "/?page=2&q=boots",
			wantSubstr:    []string{"params.page=2", "params.q=boots", "params._format=json"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			mw := []params.Middleware{params.Logger(logger)}
			if tc.bind {
				s := params.MustSchema([]params.Descriptor{params.Int("page"), params.String("q")})
				mw = append([]params.Middleware{params.Bind(s)}, mw...)
			}
			handler := params.Chain(mw...)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.handlerStatus)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), paramtest.NewRequest(t, http.MethodGet, tc.target))

			out := buf.String()
			for _, s := range tc.wantSubstr {
				assert.Contains(t, out, s, "log output should contain %q", s)
			}
			for _, s := range tc.notSubstr {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestLogger_unwrap_response_controller(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := params.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		rc := http.NewResponseController(w)
		_ = rc.Flush() //nolint:errcheck
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, paramtest.NewRequest(t, http.MethodGet, "/unwrap-test"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, rec.Flushed)
	assert.Contains(t, buf.String(), "request")
}

func TestLogger_with_request_id(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := params.Chain(params.RequestID(), params.Logger(logger))(okHandler())
	handler.ServeHTTP(httptest.NewRecorder(), paramtest.NewRequest(t, http.MethodGet, "/", paramtest.Header("X-Request-ID", "abc-123")))

	assert.Contains(t, buf.String(), "request_id=abc-123")
}

func TestSchema_clamp_logged_at_debug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := params.MustSchema(params.Pagination(params.DefaultConfig()), params.WithLogger(logger))
	_, err := s.Resolve(map[string]any{"limit": 500})
	assert.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "parameter clamped")
	assert.Contains(t, out, "param=limit")
	assert.Contains(t, out, "value=500")
	assert.Contains(t, out, "fallback=25")
}
