package util

import (
	"errors"
	"strings"
)

// SanitizeFileName replaces path separators so a document name from the
// invoice table cannot escape its storage key prefix, and rejects traversal
// patterns outright.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" || strings.Contains(s, "..") {
		return "", errors.New("invalid file name")
	}
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s, nil
}
