package snapshot

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ErrSchema is returned when a snapshot does not match the snapshot schema.
var ErrSchema = errors.New("snapshot does not match schema")

//go:embed schema.json
var schemaJSON []byte

// SchemaError is one schema violation.
type SchemaError struct {
	Field       string
	Description string
}

// Schema returns the embedded JSON schema.
func Schema() []byte {
	return schemaJSON
}

// ValidateSchema checks raw snapshot bytes (YAML or JSON) against the schema.
// It returns the violations found; a nil error with violations means the
// document parsed but is invalid.
func ValidateSchema(data []byte) ([]SchemaError, error) {
	var doc any

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]SchemaError, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		violations = append(violations, SchemaError{Field: verr.Field(), Description: verr.Description()})
	}

	return violations, nil
}
