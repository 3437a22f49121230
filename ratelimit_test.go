package params_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/params"
	"github.com/bjaus/params/paramtest"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		rate        float64
		burst       int
		numReqs     int
		wantOK      int
		wantLimited int
		wantRetry   string
	}{
		"requests within rate succeed": {
			rate:    100,
			burst:   10,
			numReqs: 5,
			wantOK:  5,
		},
		"requests exceeding rate get 429": {
			rate:        1,
			burst:       1,
			numReqs:     5,
			wantOK:      1,
			wantLimited: 4,
			wantRetry:   "1",
		},
		"slow rate retry after": {
			rate:        0.25,
			burst:       1,
			numReqs:     2,
			wantOK:      1,
			wantLimited: 1,
			wantRetry:   "4",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			handler := params.RateLimit(params.RateLimitConfig{
				Rate:  tc.rate,
				Burst: tc.burst,
			})(okHandler())

			okCount, limitedCount := 0, 0
			for range tc.numReqs {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, paramtest.NewRequest(t, http.MethodGet, "/"))
				switch rec.Code {
				case http.StatusOK:
					okCount++
				case http.StatusTooManyRequests:
					limitedCount++
					assert.Equal(t, tc.wantRetry, rec.Header().Get("Retry-After"))
				}
			}

			assert.Equal(t, tc.wantOK, okCount, "expected OK responses")
			assert.Equal(t, tc.wantLimited, limitedCount, "expected rate-limited responses")
		})
	}
}

func TestRateLimit_key_param(t *testing.T) {
	t.Parallel()

	s := params.MustSchema([]params.Descriptor{params.String("api_key")})
	handler := params.Chain(
		params.Bind(s),
		params.RateLimit(params.RateLimitConfig{Rate: 1, Burst: 1, KeyParam: "api_key"}),
	)(okHandler())

	do := func(target, remote string) int {
		r := paramtest.NewRequest(t, http.MethodGet, target)
		r.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("/?api_key=a", "10.0.0.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, do("/?api_key=a", "10.0.0.2:1"))
	assert.Equal(t, http.StatusOK, do("/?api_key=b", "10.0.0.1:1"))

	// Without the parameter the remote IP is the key.
	assert.Equal(t, http.StatusOK, do("/", "10.0.0.3:1"))
	assert.Equal(t, http.StatusTooManyRequests, do("/", "10.0.0.3:2"))
	assert.Equal(t, http.StatusOK, do("/", "10.0.0.4:1"))
}

func TestRateLimit_custom_key_func(t *testing.T) {
	t.Parallel()

	handler := params.RateLimit(params.RateLimitConfig{
		Rate:  1,
		Burst: 1,
		KeyFunc: func(r *http.Request) string {
			return r.Header.Get("X-User-ID")
		},
	})(okHandler())

	do := func(user string) int {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, paramtest.NewRequest(t, http.MethodGet, "/", paramtest.Header("X-User-ID", user)))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("user-a"))
	assert.Equal(t, http.StatusTooManyRequests, do("user-a"))
	assert.Equal(t, http.StatusOK, do("user-b"))
}

func TestRateLimit_remote_addr_without_port(t *testing.T) {
	t.Parallel()

	handler := params.RateLimit(params.RateLimitConfig{Rate: 100, Burst: 10})(okHandler())

	rec := httptest.NewRecorder()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/", http.NoBody)
	require.NoError(t, err)
	req.RemoteAddr = "10.0.0.1"

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_cleanup_expired_limiters(t *testing.T) {
	t.Parallel()

	handler := params.RateLimit(params.RateLimitConfig{
		Rate:            1,
		Burst:           1,
		CleanupInterval: time.Millisecond,
		MaxIdle:         time.Millisecond,
	})(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, paramtest.NewRequest(t, http.MethodGet, "/"))
	assert.Equal(t, http.StatusOK, rec.Code)

	time.Sleep(5 * time.Millisecond)

	// The idle limiter was pruned, so a fresh one admits the request.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, paramtest.NewRequest(t, http.MethodGet, "/"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_custom_on_limit(t *testing.T) {
	t.Parallel()

	handler := params.RateLimit(params.RateLimitConfig{
		Rate:  1,
		Burst: 1,
		OnLimit: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
	})(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, paramtest.NewRequest(t, http.MethodGet, "/"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, paramtest.NewRequest(t, http.MethodGet, "/"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
