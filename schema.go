package params

import (
	"fmt"
	"log/slog"
	"slices"
)

// Schema is a compiled, immutable set of parameter descriptors. Build it once
// per endpoint and share it across requests.
type Schema struct {
	descs []Descriptor
	index map[string]int

	cfg       Config
	strict    bool
	noFormat  bool
	negotiate bool

	extractor  Extractor
	validators []Validator
	logger     *slog.Logger
}

// SchemaOption configures a Schema.
type SchemaOption func(*Schema)

// WithConfig replaces the default Config.
func WithConfig(cfg Config) SchemaOption {
	return func(s *Schema) {
		s.cfg = cfg
	}
}

// Strict rejects raw keys that match no descriptor.
func Strict() SchemaOption {
	return func(s *Schema) {
		s.strict = true
	}
}

// WithoutFormat omits the built-in _format parameter.
func WithoutFormat() SchemaOption {
	return func(s *Schema) {
		s.noFormat = true
	}
}

// WithFormatNegotiation derives _format from the Accept header when a request
// does not supply it explicitly.
func WithFormatNegotiation() SchemaOption {
	return func(s *Schema) {
		s.negotiate = true
	}
}

// WithExtractor sets how raw input is pulled from an *http.Request.
func WithExtractor(e Extractor) SchemaOption {
	return func(s *Schema) {
		s.extractor = e
	}
}

// WithValidator adds a check that runs after every parameter resolved cleanly.
func WithValidator(v Validator) SchemaOption {
	return func(s *Schema) {
		s.validators = append(s.validators, v)
	}
}

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(l *slog.Logger) SchemaOption {
	return func(s *Schema) {
		s.logger = l
	}
}

// NewSchema compiles descriptors into a Schema. Duplicate names and
// malformed descriptors are reported here, never at resolve time.
func NewSchema(descs []Descriptor, opts ...SchemaOption) (*Schema, error) {
	s := &Schema{
		cfg:       DefaultConfig(),
		extractor: HTTPExtractor{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.Strict {
		s.strict = true
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if err := s.cfg.validate(); err != nil {
		return nil, err
	}

	s.index = make(map[string]int, len(descs)+1)
	s.descs = make([]Descriptor, 0, len(descs)+1)
	for _, d := range descs {
		if err := s.add(d); err != nil {
			return nil, err
		}
	}

	if _, declared := s.index[FormatKey]; !declared && !s.noFormat {
		if err := s.add(s.cfg.formatDescriptor()); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on error. Use it for package-level
// schema variables.
func MustSchema(descs []Descriptor, opts ...SchemaOption) *Schema {
	s, err := NewSchema(descs, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) add(d Descriptor) error {
	if err := d.check(); err != nil {
		return err
	}
	if _, dup := s.index[d.Name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateDescriptor, d.Name)
	}
	s.index[d.Name] = len(s.descs)
	s.descs = append(s.descs, d)
	return nil
}

// Descriptors returns the declared descriptors in declaration order, the
// built-in _format last.
func (s *Schema) Descriptors() []Descriptor {
	return slices.Clone(s.descs)
}

// Lookup returns the descriptor declared under name.
func (s *Schema) Lookup(name string) (Descriptor, bool) {
	i, ok := s.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return s.descs[i], true
}

// Config returns the schema's configuration.
func (s *Schema) Config() Config { return s.cfg }

// IsStrict reports whether undeclared keys are rejected.
func (s *Schema) IsStrict() bool { return s.strict }
