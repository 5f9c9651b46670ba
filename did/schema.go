package did

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema constrains the shape a resolver is allowed to return.
// Resolvers talk to external infrastructure (HTTP resolvers, chain nodes),
// so their output is validated before it enters the cache.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "verificationMethod"],
  "properties": {
    "id": {
      "type": "string",
      "pattern": "^did:[a-z0-9]+:.+"
    },
    "controller": {
      "type": "array",
      "items": {"type": "string"}
    },
    "verificationMethod": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "type", "controller"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "type": {"type": "string", "minLength": 1},
          "controller": {"type": "string", "minLength": 1}
        }
      }
    },
    "authentication": {
      "type": "array",
      "items": {"type": "string"}
    },
    "assertionMethod": {
      "type": "array",
      "items": {"type": "string"}
    }
  }
}`

// ValidateDocument checks a resolved document against the DID document
// schema. A failure is reported as a resolution failure since it means the
// resolver produced output this core cannot trust.
func ValidateDocument(doc *Document) error {
	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("%w: schema validation: %v", ErrResolutionFailed, err)
	}

	if !result.Valid() {
		return fmt.Errorf("%w: document %q failed schema validation: %s",
			ErrResolutionFailed, doc.ID, result.Errors()[0])
	}

	return nil
}
