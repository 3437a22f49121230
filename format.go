package params

import (
	"net/http"

	"github.com/elnormous/contenttype"
)

// formatMediaTypes maps _format values to the media type used for Accept
// negotiation.
var formatMediaTypes = map[string]string{
	"json": "application/json",
	"yaml": "application/yaml",
	"text": "text/plain",
}

// negotiateFormat picks the allowed format that best matches the request's
// Accept header. It reports false when the header is absent or nothing
// matches.
func negotiateFormat(r *http.Request, formats []string) (string, bool) {
	if r.Header.Get("Accept") == "" {
		return "", false
	}

	available := make([]contenttype.MediaType, 0, len(formats))
	byMediaType := make(map[string]string, len(formats))
	for _, f := range formats {
		mt, ok := formatMediaTypes[f]
		if !ok {
			continue
		}
		available = append(available, contenttype.NewMediaType(mt))
		byMediaType[mt] = f
	}
	if len(available) == 0 {
		return "", false
	}

	accepted, _, err := contenttype.GetAcceptableMediaType(r, available)
	if err != nil {
		return "", false
	}
	f, ok := byMediaType[accepted.Type+"/"+accepted.Subtype]
	return f, ok
}
