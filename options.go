package params

import (
	"iter"
	"log/slog"
	"maps"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Options is an immutable, ordered mapping of resolved parameter values.
// Declared parameters come first in declaration order, passthrough keys after
// them in sorted order.
type Options struct {
	m *orderedmap.OrderedMap[string, any]
}

func newOptions() *Options {
	return &Options{m: orderedmap.New[string, any]()}
}

// Get returns the value resolved for name.
func (o *Options) Get(name string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.m.Get(name)
	return cloneValue(v), ok
}

// Has reports whether name was resolved.
func (o *Options) Has(name string) bool {
	_, ok := o.Get(name)
	return ok
}

// Len returns the number of resolved entries.
func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return o.m.Len()
}

// Keys returns the resolved names in order.
func (o *Options) Keys() []string {
	keys := make([]string, 0, o.Len())
	for k := range o.All() {
		keys = append(keys, k)
	}
	return keys
}

// All iterates over the resolved entries in order.
func (o *Options) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if o == nil {
			return
		}
		for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, cloneValue(pair.Value)) {
				return
			}
		}
	}
}

// Map returns the entries as a plain map.
func (o *Options) Map() map[string]any {
	return maps.Collect(o.All())
}

// With returns a copy of o with name set to v. o itself is unchanged.
func (o *Options) With(name string, v any) *Options {
	out := newOptions()
	for k, val := range o.All() {
		out.m.Set(k, val)
	}
	out.m.Set(name, v)
	return out
}

// MarshalJSON encodes the options as a JSON object, preserving order.
func (o *Options) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	return o.m.MarshalJSON()
}

// MarshalYAML encodes the options as a YAML mapping, preserving order.
func (o *Options) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for k, v := range o.All() {
		var key, val yaml.Node
		if err := key.Encode(k); err != nil {
			return nil, err
		}
		if err := val.Encode(v); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &key, &val)
	}
	return node, nil
}

// LogValue implements slog.LogValuer.
func (o *Options) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, o.Len())
	for k, v := range o.All() {
		attrs = append(attrs, slog.Any(k, v))
	}
	return slog.GroupValue(attrs...)
}

// cloneValue copies the list types so callers cannot mutate resolved state.
func cloneValue(v any) any {
	switch t := v.(type) {
	case []string:
		return slices.Clone(t)
	case []int64:
		return slices.Clone(t)
	case []any:
		return slices.Clone(t)
	default:
		return v
	}
}
