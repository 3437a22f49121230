package params

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

const (
	// maxMultipartMemory is the maximum memory used for multipart form parsing (32 MB).
	maxMultipartMemory = 32 << 20
	// maxBodyBytes caps how much of a body is buffered for extraction (10 MB).
	maxBodyBytes = 10 << 20
)

// Extractor pulls the raw parameter mapping out of an incoming request.
type Extractor interface {
	Extract(r *http.Request, s *Schema) (map[string]any, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(r *http.Request, s *Schema) (map[string]any, error)

// Extract calls f(r, s).
func (f ExtractorFunc) Extract(r *http.Request, s *Schema) (map[string]any, error) { return f(r, s) }

// HTTPExtractor merges request sources into one raw mapping. Later sources
// override earlier ones:
//
//  1. query string
//  2. body (JSON, YAML, or form encoded, by Content-Type)
//  3. attachment (see Attach)
//  4. route parameters (r.PathValue)
//
// The body is buffered and restored, so extraction can be repeated.
type HTTPExtractor struct {
	// BodyKey, when set, merges only the object found under this key of a
	// decoded JSON or YAML body.
	BodyKey string
}

// Extract implements Extractor.
func (e HTTPExtractor) Extract(r *http.Request, s *Schema) (map[string]any, error) {
	raw := make(map[string]any)

	mergeValues(raw, r.URL.Query(), s)

	body, err := e.extractBody(r, s)
	if err != nil {
		return nil, err
	}
	maps.Copy(raw, body)

	if att, ok := getValue[attachment](r.Context()); ok {
		maps.Copy(raw, att)
	}

	for _, name := range routeParamNames(r, s) {
		val := r.PathValue(name)
		if val == "" {
			continue
		}
		if d, ok := s.Lookup(name); ok && d.listTyped() {
			raw[name] = strings.Split(val, ",")
			continue
		}
		raw[name] = val
	}

	return raw, nil
}

// mergeValues copies url.Values into raw. Repeated keys and keys of list-typed
// descriptors become []string; a trailing "[]" on a key is dropped. When both
// "a" and "a[]" are present their values are joined, "a" first.
func mergeValues(raw map[string]any, values url.Values, s *Schema) {
	merged := make(map[string][]string, len(values))
	lists := make(map[string]bool)
	for _, key := range slices.Sorted(maps.Keys(values)) {
		name, bracketed := strings.CutSuffix(key, "[]")
		merged[name] = append(merged[name], values[key]...)
		if bracketed {
			lists[name] = true
		}
	}

	for name, vals := range merged {
		list := lists[name] || len(vals) > 1
		if d, ok := s.Lookup(name); ok && d.listTyped() {
			list = true
		}
		if list {
			raw[name] = vals
			continue
		}
		if len(vals) == 1 {
			raw[name] = vals[0]
		}
	}
}

func (e HTTPExtractor) extractBody(r *http.Request, s *Schema) (map[string]any, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBindBody, err)
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return extractForm(r, s, mediaType)
	}

	dec, ok := decoderFor(mediaType)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrBindBody, mediaType)
	}

	b, err := bufferBody(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}

	var decoded map[string]any
	if err := dec.Decode(bytes.NewReader(b), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBindBody, err)
	}

	if e.BodyKey == "" {
		return decoded, nil
	}
	nested, ok := decoded[e.BodyKey]
	if !ok || nested == nil {
		return nil, nil
	}
	obj, ok := nested.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected object, got %T", ErrBindBody, e.BodyKey, nested)
	}
	return obj, nil
}

func extractForm(r *http.Request, s *Schema, mediaType string) (map[string]any, error) {
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxMultipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, bodyError(ErrBindForm, err)
	}
	raw := make(map[string]any)
	mergeValues(raw, r.PostForm, s)
	return raw, nil
}

// bufferBody reads the body and puts an equivalent reader back in its place.
func bufferBody(r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, bodyError(ErrBindBody, err)
	}
	if len(b) > maxBodyBytes {
		return nil, &bodyTooLargeError{limit: maxBodyBytes}
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(b))
	return b, nil
}

// routeParamNames returns the wildcard names of the matched route pattern
// followed by any declared name not already listed.
func routeParamNames(r *http.Request, s *Schema) []string {
	names := patternWildcards(r.Pattern)
	for _, d := range s.descs {
		if !slices.Contains(names, d.Name) {
			names = append(names, d.Name)
		}
	}
	return names
}

// patternWildcards extracts wildcard names from a ServeMux pattern such as
// "GET /users/{id}/files/{path...}".
func patternWildcards(pattern string) []string {
	var names []string
	for {
		start := strings.IndexByte(pattern, '{')
		if start < 0 {
			return names
		}
		end := strings.IndexByte(pattern[start:], '}')
		if end < 0 {
			return names
		}
		name := strings.TrimSuffix(pattern[start+1:start+end], "...")
		if name != "" && name != "$" {
			names = append(names, name)
		}
		pattern = pattern[start+end+1:]
	}
}
