// SPDX-License-Identifier: Apache-2.0

package models

import (
	"fmt"
	"strings"
)

// FilesystemError means the project root (or a marker under it) could not be read
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem error at %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// ManifestParseError means a manifest exists but is not readable structured data
type ManifestParseError struct {
	Path string
	Err  error
}

func (e *ManifestParseError) Error() string {
	return fmt.Sprintf("error parsing manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestParseError) Unwrap() error { return e.Err }

// InvalidInputError means a persisted detection record cannot drive plan building
type InvalidInputError struct {
	Source   string
	Problems []string
	Err      error
}

func (e *InvalidInputError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid detection record %s", e.Source)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	for _, p := range e.Problems {
		fmt.Fprintf(&b, "\n- %s", p)
	}
	return b.String()
}

func (e *InvalidInputError) Unwrap() error { return e.Err }
