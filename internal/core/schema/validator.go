// SPDX-License-Identifier: Apache-2.0

package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed detection.schema.json
var detectionSchema []byte

// DetectionSchema returns the JSON schema persisted detection records must satisfy
func DetectionSchema() map[string]interface{} {
	var s map[string]interface{}
	if err := json.Unmarshal(detectionSchema, &s); err != nil {
		panic(fmt.Sprintf("embedded detection schema is invalid: %v", err))
	}
	return s
}

// TODO: The gojsonschema library is quite old with no updates. It might be worth looking to see if there's a newer maintained
// alternative.

// Check validates document against schema and returns one entry per violation.
// A non-nil error means validation itself could not run.
func Check(schema map[string]interface{}, document interface{}) ([]string, error) {
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: failed to serialize schema: %w", err)
	}
	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)

	// Round-trip through JSON so YAML-decoded documents validate the same way
	docBytes, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: failed to serialize document: %w", err)
	}
	documentLoader := gojsonschema.NewBytesLoader(docBytes)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return problems, nil
}

// ValidateDetection checks a decoded detection document against the embedded schema
func ValidateDetection(document interface{}) ([]string, error) {
	return Check(DetectionSchema(), document)
}
