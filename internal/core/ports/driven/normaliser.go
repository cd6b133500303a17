package driven

// TextNormaliser canonicalises text for embedding. The same instance must
// be used when building an index and when querying it.
type TextNormaliser interface {
	// Normalise is a pure, idempotent transformation. It never fails;
	// input it cannot process is passed through.
	Normalise(text string) string
}
