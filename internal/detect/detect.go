// SPDX-License-Identifier: Apache-2.0

package detect

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/kusari-oss/piper/internal/core/format"
	"github.com/kusari-oss/piper/internal/core/models"
)

// DefaultReportPath is where scan results are persisted unless configured otherwise
const DefaultReportPath = ".pipeline/detection.json"

// Scan detects the technology stack of the project at root
func Scan(root string) (models.DetectionRecord, error) {
	signals, err := ScanSignals(root)
	if err != nil {
		return models.DetectionRecord{}, err
	}
	return Classify(signals), nil
}

// Verify re-derives the decisive fields of record from its signals and
// reports every field that disagrees.
func Verify(record models.DetectionRecord) []string {
	var problems []string

	var unknown []string
	for tag := range record.Signals {
		if !IsKnownTag(tag) {
			unknown = append(unknown, tag)
		}
	}
	sort.Strings(unknown)
	for _, tag := range unknown {
		problems = append(problems, fmt.Sprintf("signals: unknown tag %q", tag))
	}

	want := Classify(record.Signals)
	types := record.Types
	if types == nil {
		types = []string{}
	}
	if !reflect.DeepEqual(want.Types, types) {
		problems = append(problems, fmt.Sprintf("types: got %v, signals imply %v", types, want.Types))
	}
	if want.Framework != record.Framework {
		problems = append(problems, fmt.Sprintf("framework: got %q, signals imply %q", record.Framework, want.Framework))
	}
	if want.Deploy != record.Deploy {
		problems = append(problems, fmt.Sprintf("deploy: got %q, signals imply %q", record.Deploy, want.Deploy))
	}

	return problems
}

// WriteReport persists a detection record, creating parent directories as needed
func WriteReport(record models.DetectionRecord, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating report directory: %w", err)
	}
	if err := format.WriteFile(path, record); err != nil {
		return fmt.Errorf("error writing detection report: %w", err)
	}
	return nil
}
