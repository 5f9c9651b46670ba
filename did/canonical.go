package did

import (
	"fmt"

	"github.com/piprate/json-gold/ld"
)

// defaultDocumentLoader is a shared caching loader so remote @context
// documents are fetched at most once per process.
var defaultDocumentLoader ld.DocumentLoader

func init() {
	innerLoader := ld.NewDefaultDocumentLoader(nil)
	defaultDocumentLoader = ld.NewCachingDocumentLoader(innerLoader)
}

// canonicalizeDocument normalizes a JSON-LD document to N-Quads using
// URDNA2015, producing a byte-stable form suitable for hashing.
func canonicalizeDocument(doc map[string]interface{}) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	processor := ld.NewJsonLdProcessor()
	options := ld.NewJsonLdOptions("")
	options.Format = "application/n-quads"
	options.Algorithm = ld.AlgorithmURDNA2015
	options.DocumentLoader = defaultDocumentLoader

	normalized, err := processor.Normalize(doc, options)
	if err != nil {
		return nil, fmt.Errorf("JSON-LD normalization failed: %w", err)
	}

	nquads, ok := normalized.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected normalization result type %T", normalized)
	}

	return []byte(nquads), nil
}
