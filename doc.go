// Package params declares, extracts and validates request parameters.
// A Schema is an ordered list of parameter descriptors; resolving raw input
// against it yields an Options set with every declared parameter present,
// normalized to its declared type, or a single *ProblemDetail listing every
// violation found.
//
// Descriptors are built with typed constructors and options:
//
//	s := params.MustSchema([]params.Descriptor{
//	    params.String("q", params.Required()),
//	    params.Bool("archived", params.Default(false)),
//	    params.IDList("ids"),
//	    params.Int("limit", params.Default(25), params.Clamp(100, 25)),
//	})
//
// or derived from struct tags:
//
//	type ListReq struct {
//	    Query string  `param:"q,required"`
//	    IDs   []int64 `param:"ids"`
//	    Limit int     `param:"limit" default:"25" clamp:"100"`
//	}
//	s, err := params.SchemaFor[ListReq]()
//
// Every schema declares the reserved "_format" parameter, which selects the
// response encoding (json, yaml or text) and defaults to json.
//
// A *Params binds a schema to a request. Values are taken from the query
// string, the body, attached values and route wildcards, in increasing order
// of precedence, and read back with typed accessors:
//
//	p, err := s.FromRequest(r)
//	q, _ := p.String("q")
//	ids, _ := p.IDs("ids")
//
// Bind wraps the same flow as middleware with the standard
// func(http.Handler) http.Handler signature, answering invalid requests with
// RFC 9457 problem details.
package params
