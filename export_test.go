package params

// Test-only exports for internal functions.
var (
	TagOptions       = tagOptions
	TagContains      = tagContains
	PatternWildcards = patternWildcards
	NegotiateFormat  = negotiateFormat
	EqualValue       = equalValue
)

// ResetSchemaCache clears the SchemaFor cache.
func ResetSchemaCache() {
	schemaCache.Clear()
}
