package errors

import (
	"strings"
	"unicode"
)

// ValidateGraphName validates a user-supplied graph name for safety.
// Names end up in file paths, cache keys and store documents, so the rules
// are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateGraphName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "graph name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "graph name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "graph name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "graph name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateElementID validates a node or container identifier from an
// uploaded graph. IDs are module paths like "encoder.block1.conv", so dots
// are allowed but path separators and control characters are not.
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGraph, "element id cannot be empty")
	}

	if len(id) > 512 {
		return New(ErrCodeInvalidGraph, "element id too long (max 512 characters): %q", truncate(id, 64))
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "element id contains invalid control characters: %q", truncate(id, 64))
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidGraph, "element id cannot contain path separators: %q", truncate(id, 64))
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
