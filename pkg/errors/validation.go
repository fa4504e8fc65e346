package errors

import (
	"strings"
	"unicode"
)

const maxSceneNameLen = 128

// ValidateSceneName validates a scene name before it is used as a storage key.
// Scene names become file names, Redis keys and SQLite/Mongo identifiers, so
// the rules are conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateSceneName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidSceneName, "scene name cannot be empty")
	}

	if len(name) > maxSceneNameLen {
		return New(ErrCodeInvalidSceneName, "scene name too long (max %d characters)", maxSceneNameLen)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSceneName, "scene name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidSceneName, "scene name contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidSceneName, "scene name cannot start with a dot")
	}

	return nil
}

// ValidateNodeText validates the text of a new node.
// Empty text is allowed (an empty node can be typed into later); control
// characters other than newline and tab are not.
func ValidateNodeText(text string) error {
	for _, r := range text {
		if r == '\n' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node text contains invalid control characters")
		}
	}
	return nil
}
