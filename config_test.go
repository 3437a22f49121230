package params_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/params"
)

// These tests use t.Setenv and cannot run in parallel.

func TestConfigFromEnv_defaults(t *testing.T) {
	cfg, err := params.ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, params.DefaultConfig(), cfg)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PARAMS_DEFAULT_FORMAT", "yaml")
	t.Setenv("PARAMS_FORMATS", "json;yaml;text")
	t.Setenv("PARAMS_PAGE_DEFAULT", "0")
	t.Setenv("PARAMS_LIMIT_DEFAULT", "50")
	t.Setenv("PARAMS_LIMIT_MAX", "200")
	t.Setenv("PARAMS_STRICT", "true")

	cfg, err := params.ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, params.Config{
		DefaultFormat: "yaml",
		Formats:       []string{"json", "yaml", "text"},
		PageDefault:   0,
		LimitDefault:  50,
		LimitMax:      200,
		Strict:        true,
	}, cfg)

	s := params.MustSchema(params.Pagination(cfg), params.WithConfig(cfg))
	assert.True(t, s.IsStrict())

	p, err := s.FromMap(map[string]any{"limit": 201})
	require.NoError(t, err)
	limit, err := p.Int("limit")
	require.NoError(t, err)
	assert.Equal(t, 50, limit)
	assert.Equal(t, "yaml", p.ResponseFormat())
}

func TestConfigFromEnv_invalid(t *testing.T) {
	tests := map[string]struct {
		env     map[string]string
		wantMsg string
	}{
		"bad int": {
			env:     map[string]string{"PARAMS_LIMIT_MAX": "lots"},
			wantMsg: "decode env",
		},
		"bad bool": {
			env:     map[string]string{"PARAMS_STRICT": "sometimes"},
			wantMsg: "decode env",
		},
		"default format not allowed": {
			env: map[string]string{"PARAMS_DEFAULT_FORMAT": "yaml"},
		},
		"limit default above max": {
			env: map[string]string{"PARAMS_LIMIT_DEFAULT": "500"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := params.ConfigFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestPagination(t *testing.T) {
	t.Parallel()

	descs := params.Pagination(params.DefaultConfig())
	require.Len(t, descs, 2)

	assert.Equal(t, "page", descs[0].Name)
	def, _ := descs[0].DefaultValue()
	assert.Equal(t, 1, def)

	assert.Equal(t, "limit", descs[1].Name)
	def, _ = descs[1].DefaultValue()
	assert.Equal(t, 25, def)
}
