// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"os"

	"github.com/kusari-oss/piper/internal/core/format"
	"github.com/kusari-oss/piper/internal/core/models"
	"github.com/kusari-oss/piper/internal/core/schema"
	"github.com/kusari-oss/piper/internal/detect"
)

// LoadDetectionFile reads a persisted detection record. The document must
// match the detection schema and its derived fields must agree with its signals.
func LoadDetectionFile(path string) (models.DetectionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.DetectionRecord{}, &models.FilesystemError{Path: path, Err: err}
	}
	return ParseDetection(path, data)
}

// ParseDetection validates and decodes a detection record document. source names it in errors.
func ParseDetection(source string, data []byte) (models.DetectionRecord, error) {
	var doc interface{}
	if err := format.ParseData(data, &doc); err != nil {
		return models.DetectionRecord{}, &models.InvalidInputError{Source: source, Err: err}
	}

	problems, err := schema.ValidateDetection(doc)
	if err != nil {
		return models.DetectionRecord{}, &models.InvalidInputError{Source: source, Err: err}
	}
	if len(problems) > 0 {
		return models.DetectionRecord{}, &models.InvalidInputError{Source: source, Problems: problems}
	}

	var record models.DetectionRecord
	if err := format.ParseData(data, &record); err != nil {
		return models.DetectionRecord{}, &models.InvalidInputError{Source: source, Err: err}
	}

	if problems := detect.Verify(record); len(problems) > 0 {
		return models.DetectionRecord{}, &models.InvalidInputError{Source: source, Problems: problems}
	}

	return record, nil
}
