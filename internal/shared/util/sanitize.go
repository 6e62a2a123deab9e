package util

import (
	"errors"
	"path/filepath"
	"strings"
)

// SanitizeFileName keeps the base name of an uploaded file and rejects
// traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "\\", "/")
	s = strings.TrimSpace(filepath.Base(s))
	if s == "" || s == "." || s == "/" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}
