// SPDX-License-Identifier: Apache-2.0

package detect

import (
	"github.com/kusari-oss/piper/internal/core/models"
)

// Classify reduces raw signal evidence to a detection record.
// It is a pure function of signals.
func Classify(signals map[string][]string) models.DetectionRecord {
	record := models.DetectionRecord{
		Types:   []string{},
		Signals: make(map[string][]string, len(signalTable)),
	}

	for _, signal := range signalTable {
		files := signals[signal.Tag]
		if files == nil {
			files = []string{}
		}
		record.Signals[signal.Tag] = append([]string{}, files...)
	}

	for _, tag := range models.StackTags {
		if len(record.Signals[tag]) > 0 {
			record.Types = append(record.Types, tag)
		}
	}

	for _, fw := range models.FrameworkPriority {
		if len(record.Signals[string(fw)]) > 0 {
			record.Framework = fw
			break
		}
	}

	for _, target := range models.DeployPriority {
		if len(record.Signals[string(target)]) > 0 {
			record.Deploy = target
			break
		}
	}

	return record
}
