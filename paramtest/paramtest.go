// Package paramtest provides test helpers for code built on params.
package paramtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bjaus/params"
)

// Client wraps an httptest.Server for convenient endpoint testing.
type Client struct {
	Server *httptest.Server
}

// NewClient starts a test server for h.
func NewClient(t testing.TB, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Response holds a decoded JSON response.
type Response[T any] struct {
	Status  int
	Headers http.Header
	Body    *T
	Problem *params.ProblemDetail
}

// Get sends a GET request and decodes the JSON response.
func Get[Resp any](t testing.TB, c *Client, path string) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodGet, path, nil)
}

// Post sends a POST request with a JSON body and decodes the JSON response.
func Post[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPost, path, body)
}

func do[Resp any](t testing.TB, c *Client, method, path string, body any) *Response[Resp] {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err, "paramtest: marshal request body")
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, reqBody)
	require.NoError(t, err, "paramtest: create request")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "paramtest: execute request")
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("paramtest: close body: %v", closeErr)
		}
	}()

	result := &Response[Resp]{
		Status:  resp.StatusCode,
		Headers: resp.Header,
	}
	if resp.StatusCode == http.StatusNoContent || resp.ContentLength == 0 {
		return result
	}

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "paramtest: read body")
	if resp.StatusCode >= http.StatusBadRequest {
		var pd params.ProblemDetail
		if json.Unmarshal(data, &pd) == nil {
			result.Problem = &pd
		}
		return result
	}

	var decoded Resp
	if json.Unmarshal(data, &decoded) == nil {
		result.Body = &decoded
	}
	return result
}

// RequestOption customizes a request built by NewRequest.
type RequestOption func(t testing.TB, r *http.Request) *http.Request

// NewRequest builds a server-side request for exercising extraction directly.
func NewRequest(t testing.TB, method, target string, opts ...RequestOption) *http.Request {
	t.Helper()
	r := httptest.NewRequestWithContext(context.Background(), method, target, nil)
	for _, opt := range opts {
		r = opt(t, r)
	}
	return r
}

// JSONBody sets v, marshaled as JSON, as the request body.
func JSONBody(v any) RequestOption {
	return func(t testing.TB, r *http.Request) *http.Request {
		t.Helper()
		b, err := json.Marshal(v)
		require.NoError(t, err, "paramtest: marshal body")
		return withBody(r, "application/json", b)
	}
}

// FormBody sets values as a URL-encoded form body.
func FormBody(values url.Values) RequestOption {
	return func(_ testing.TB, r *http.Request) *http.Request {
		return withBody(r, "application/x-www-form-urlencoded", []byte(values.Encode()))
	}
}

// RawBody sets body with the given content type.
func RawBody(contentType, body string) RequestOption {
	return func(_ testing.TB, r *http.Request) *http.Request {
		return withBody(r, contentType, []byte(body))
	}
}

// PathValue sets a route wildcard, as the ServeMux would after matching pattern.
func PathValue(pattern, name, value string) RequestOption {
	return func(_ testing.TB, r *http.Request) *http.Request {
		r.Pattern = pattern
		r.SetPathValue(name, value)
		return r
	}
}

// Header sets a request header.
func Header(key, value string) RequestOption {
	return func(_ testing.TB, r *http.Request) *http.Request {
		r.Header.Set(key, value)
		return r
	}
}

// Attachment attaches values to the request with params.Attach.
func Attachment(values map[string]any) RequestOption {
	return func(_ testing.TB, r *http.Request) *http.Request {
		return params.Attach(r, values)
	}
}

func withBody(r *http.Request, contentType string, b []byte) *http.Request {
	r.Body = io.NopCloser(bytes.NewReader(b))
	r.ContentLength = int64(len(b))
	r.Header.Set("Content-Type", contentType)
	return r
}

// RequireViolations asserts that err is a resolve failure reporting exactly
// the given fields, in order.
func RequireViolations(t testing.TB, err error, fields ...string) *params.ProblemDetail {
	t.Helper()
	var pd *params.ProblemDetail
	require.True(t, errors.As(err, &pd), "expected *params.ProblemDetail, got %v", err)
	require.Equal(t, fields, pd.Fields())
	return pd
}

// RequireViolation asserts that err reports field with the given kind and
// returns that violation.
func RequireViolation(t testing.TB, err error, field string, kind error) params.Violation {
	t.Helper()
	var pd *params.ProblemDetail
	require.True(t, errors.As(err, &pd), "expected *params.ProblemDetail, got %v", err)
	for _, v := range pd.Errors {
		if v.Field == field {
			require.ErrorIs(t, v, kind)
			return v
		}
	}
	require.Failf(t, "missing violation", "no violation for %q in %s", field, strings.Join(pd.Fields(), ", "))
	return params.Violation{}
}
