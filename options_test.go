package params_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/params"
)

func resolvedOptions(t *testing.T) *params.Options {
	t.Helper()

	s := params.MustSchema([]params.Descriptor{
		params.String("q"),
		params.IDList("ids"),
		params.Int("page", params.Default(1)),
	})
	opts, err := s.Resolve(map[string]any{"q": "boots", "ids": []int{3, 1}, "extra": true})
	require.NoError(t, err)
	return opts
}

func TestOptions_accessors(t *testing.T) {
	t.Parallel()

	opts := resolvedOptions(t)

	assert.Equal(t, 5, opts.Len())
	assert.Equal(t, []string{"q", "ids", "page", params.FormatKey, "extra"}, opts.Keys())
	assert.True(t, opts.Has("page"))
	assert.False(t, opts.Has("nope"))

	v, ok := opts.Get("q")
	assert.True(t, ok)
	assert.Equal(t, "boots", v)

	var keys []string
	for k := range opts.All() {
		keys = append(keys, k)
		if k == "ids" {
			break
		}
	}
	assert.Equal(t, []string{"q", "ids"}, keys)

	assert.Equal(t, map[string]any{
		"q": "boots", "ids": []int64{3, 1}, "page": 1, params.FormatKey: "json", "extra": true,
	}, opts.Map())
}

func TestOptions_With(t *testing.T) {
	t.Parallel()

	opts := resolvedOptions(t)
	next := opts.With("page", 2)

	v, _ := opts.Get("page")
	assert.Equal(t, 1, v)
	v, _ = next.Get("page")
	assert.Equal(t, 2, v)
	assert.Equal(t, opts.Keys(), next.Keys())

	added := opts.With("new", "x")
	assert.Equal(t, "new", added.Keys()[added.Len()-1])
}

func TestOptions_nil(t *testing.T) {
	t.Parallel()

	var opts *params.Options
	assert.Equal(t, 0, opts.Len())
	assert.Empty(t, opts.Keys())
	assert.False(t, opts.Has("x"))

	b, err := json.Marshal(opts)
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestOptions_MarshalJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(resolvedOptions(t))
	require.NoError(t, err)
	assert.Equal(t, `{"q":"boots","ids":[3,1],"page":1,"_format":"json","extra":true}`, string(b))
}

func TestOptions_MarshalYAML(t *testing.T) {
	t.Parallel()

	b, err := yaml.Marshal(resolvedOptions(t))
	require.NoError(t, err)
	assert.Equal(t, "q: boots\nids:\n    - 3\n    - 1\npage: 1\n_format: json\nextra: true\n", string(b))
}

func TestOptions_LogValue(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("resolved", "params", resolvedOptions(t))

	assert.Contains(t, buf.String(), "params.q=boots params.ids=\"[3 1]\" params.page=1")
}

func TestEncoderFor(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		format   string
		wantType string
		wantOK   bool
	}{
		"json":    {format: "json", wantType: "application/json", wantOK: true},
		"yaml":    {format: "yaml", wantType: "application/yaml", wantOK: true},
		"text":    {format: "text", wantType: "text/plain", wantOK: true},
		"unknown": {format: "xml"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			enc, ok := params.EncoderFor(tc.format)
			require.Equal(t, tc.wantOK, ok)
			if ok {
				assert.Equal(t, tc.wantType, enc.ContentType())
			}
		})
	}
}

func TestTextEncoder_problem(t *testing.T) {
	t.Parallel()

	_, err := params.MustSchema([]params.Descriptor{params.Int("a", params.Required())}).Resolve(nil)
	require.Error(t, err)

	enc, _ := params.EncoderFor("text")
	var buf bytes.Buffer
	require.NoError(t, enc.Encode(&buf, err))
	assert.Equal(t, "400 Validation Failed: 1 parameter violation(s)\n  a: missing required parameter\n", buf.String())
}
