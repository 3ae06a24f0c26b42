// Package tabular reads uploaded noise and arrival files into untyped grids.
package tabular

import (
	"path/filepath"
	"strings"
)

// extensionMatcher implements CanHandle for a set of file extensions.
type extensionMatcher struct {
	extensions []string
}

func (m extensionMatcher) CanHandle(filename string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	for _, e := range m.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
