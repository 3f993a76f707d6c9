package errors

import (
	"strings"
	"unicode"
)

// MaxNodeIDLength bounds node identifiers accepted from files and the API.
const MaxNodeIDLength = 512

// ValidateNodeID validates a node identifier read from external input.
//
// The rules are conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - Maximum length of MaxNodeIDLength bytes
//
// The engine itself accepts any string; this check guards the decoders.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", MaxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id %q contains control characters", id)
		}
	}

	return nil
}

// ValidatePath validates a relative output path for safety.
// It prevents path traversal when the server or CLI writes artifacts.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateFiniteSize rejects negative node dimensions. Zero means "use the
// configured default" and is accepted.
func ValidateFiniteSize(id string, width, height float64) error {
	if width < 0 || height < 0 {
		return New(ErrCodeInvalidInput, "node %q has negative size %gx%g", id, width, height)
	}
	if width != width || height != height {
		return New(ErrCodeInvalidInput, "node %q has NaN size", id)
	}
	return nil
}
