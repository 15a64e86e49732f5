// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFile reads and parses a file, trying YAML first, then JSON
func ParseFile(filePath string, v interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	return ParseData(data, v)
}

// ParseData parses data, trying YAML first, then JSON
func ParseData(data []byte, v interface{}) error {
	// YAML is a superset of JSON, so JSON documents normally take the first branch
	err := yaml.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	jsonErr := json.Unmarshal(data, v)
	if jsonErr == nil {
		return nil
	}

	return fmt.Errorf("failed to parse as YAML (%v) or JSON (%v)", err, jsonErr)
}

// Marshal encodes v as JSON for .json paths and YAML for everything else
func Marshal(filePath string, v interface{}) ([]byte, error) {
	if IsJSONFile(filePath) {
		return marshalJSON(v)
	}
	return marshalYAML(v)
}

// WriteFile writes data to a file in the format implied by its extension
func WriteFile(filePath string, v interface{}) error {
	data, err := Marshal(filePath, v)
	if err != nil {
		return err
	}

	return os.WriteFile(filePath, data, 0644)
}

// FormatData formats data as YAML or JSON string
func FormatData(v interface{}, useYAML bool) (string, error) {
	var data []byte
	var err error

	if useYAML {
		data, err = marshalYAML(v)
	} else {
		data, err = marshalJSON(v)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func marshalJSON(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshaling JSON: %w", err)
	}
	return append(data, '\n'), nil
}

func marshalYAML(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("error marshaling YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("error marshaling YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// IsYAMLFile returns true if the file extension suggests it's a YAML file
func IsYAMLFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	return ext == ".yaml" || ext == ".yml"
}

// IsJSONFile returns true if the file extension suggests it's a JSON file
func IsJSONFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	return ext == ".json"
}
