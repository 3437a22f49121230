package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Encoder writes values in one response format.
type Encoder interface {
	ContentType() string
	Encode(w io.Writer, v any) error
}

// Decoder reads request bodies of one media type.
type Decoder interface {
	ContentType() string
	Decode(r io.Reader, v any) error
}

// jsonCodec implements both Encoder and Decoder for JSON. Numbers decode as
// json.Number so integers survive without float rounding.
type jsonCodec struct{}

func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) Encode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func (jsonCodec) Decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// yamlCodec implements both Encoder and Decoder for YAML.
type yamlCodec struct{}

func (yamlCodec) ContentType() string { return "application/yaml" }

func (yamlCodec) Encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (yamlCodec) Decode(r io.Reader, v any) error {
	err := yaml.NewDecoder(r).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// textCodec writes options as key=value lines and problems as one line per
// violation.
type textCodec struct{}

func (textCodec) ContentType() string { return "text/plain" }

func (textCodec) Encode(w io.Writer, v any) error {
	switch t := v.(type) {
	case *Options:
		for k, val := range t.All() {
			if _, err := fmt.Fprintf(w, "%s=%v\n", k, val); err != nil {
				return err
			}
		}
		return nil
	case *ProblemDetail:
		if _, err := fmt.Fprintf(w, "%d %s: %s\n", t.Status, t.Title, t.Detail); err != nil {
			return err
		}
		for _, vio := range t.Errors {
			if _, err := fmt.Fprintf(w, "  %s\n", vio.Error()); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintln(w, v)
		return err
	}
}

// encoders maps _format values to their encoder.
var encoders = map[string]Encoder{
	"json": jsonCodec{},
	"yaml": yamlCodec{},
	"text": textCodec{},
}

// EncoderFor returns the encoder for a _format value.
func EncoderFor(format string) (Encoder, bool) {
	enc, ok := encoders[format]
	return enc, ok
}

// decoderFor returns the body decoder for a media type. An empty media type
// is treated as JSON.
func decoderFor(mediaType string) (Decoder, bool) {
	switch mediaType {
	case "", "application/json":
		return jsonCodec{}, true
	case "application/yaml", "application/x-yaml", "text/yaml":
		return yamlCodec{}, true
	default:
		return nil, false
	}
}
