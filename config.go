package params

import (
	"fmt"
	"slices"

	"github.com/joeshaw/envdecode"
)

// FormatKey is the reserved response-format selector parameter.
const FormatKey = "_format"

// Config holds deployment-level settings shared by schemas. Defaults can be
// loaded from the environment with ConfigFromEnv.
type Config struct {
	// DefaultFormat is used when a request carries no _format. ENV: PARAMS_DEFAULT_FORMAT
	DefaultFormat string `env:"PARAMS_DEFAULT_FORMAT,default=json"`
	// Formats lists the accepted _format values, ";"-separated. ENV: PARAMS_FORMATS
	Formats []string `env:"PARAMS_FORMATS,default=json"`

	// PageDefault is the default page number. ENV: PARAMS_PAGE_DEFAULT
	PageDefault int `env:"PARAMS_PAGE_DEFAULT,default=1"`
	// LimitDefault is the default page size and the clamp fallback. ENV: PARAMS_LIMIT_DEFAULT
	LimitDefault int `env:"PARAMS_LIMIT_DEFAULT,default=25"`
	// LimitMax is the largest page size accepted as-is. ENV: PARAMS_LIMIT_MAX
	LimitMax int `env:"PARAMS_LIMIT_MAX,default=100"`

	// Strict rejects undeclared parameters. ENV: PARAMS_STRICT
	Strict bool `env:"PARAMS_STRICT,default=false"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		DefaultFormat: "json",
		Formats:       []string{"json"},
		PageDefault:   1,
		LimitDefault:  25,
		LimitMax:      100,
	}
}

// ConfigFromEnv builds a Config from PARAMS_* environment variables, falling
// back to the defaults for unset ones. Values that do not parse are errors.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DefaultFormat != "" && !slices.Contains(c.Formats, c.DefaultFormat) {
		return fmt.Errorf("%w: %s: default format %q not in %v", ErrInvalidDescriptor, FormatKey, c.DefaultFormat, c.Formats)
	}
	if c.LimitDefault > c.LimitMax {
		return fmt.Errorf("%w: limit: default %d exceeds max %d", ErrInvalidDescriptor, c.LimitDefault, c.LimitMax)
	}
	return nil
}

// formatDescriptor is the _format parameter every schema receives unless it
// declares its own or opts out.
func (c Config) formatDescriptor() Descriptor {
	allowed := make([]any, len(c.Formats))
	for i, f := range c.Formats {
		allowed[i] = f
	}
	return String(FormatKey,
		Default(c.DefaultFormat),
		OneOf(allowed...),
		NotNull(),
		Doc("Response format."),
	)
}

// Pagination declares the page and limit parameters. A limit above
// LimitMax silently falls back to LimitDefault.
func Pagination(c Config) []Descriptor {
	return []Descriptor{
		Int("page", Default(c.PageDefault), Min(1), Doc("Page number, starting at 1.")),
		Int("limit", Default(c.LimitDefault), Clamp(c.LimitMax, c.LimitDefault), Min(1), Doc("Page size.")),
	}
}
