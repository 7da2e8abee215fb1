// # internal/ui/server/openapi.go
package server

import (
	"context"
	_ "embed"

	"steward/internal/core/errors"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.json
var specJSON []byte

// loadSpec parses and validates the embedded OpenAPI document so a drifted
// or broken spec fails at startup rather than when a client fetches it.
func loadSpec() ([]byte, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(specJSON)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "embedded openapi document does not parse")
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "embedded openapi document is invalid")
	}
	return specJSON, nil
}
