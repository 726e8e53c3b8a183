package util

import (
	"path/filepath"
)

// ToRelativePath returns fullPath relative to rootPath, or fullPath itself
// when no relative form exists
func ToRelativePath(rootPath, fullPath string) string {
	relPath, err := filepath.Rel(rootPath, fullPath)
	if err != nil {
		return fullPath
	}
	return relPath
}
