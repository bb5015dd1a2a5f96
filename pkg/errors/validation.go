package errors

import (
	"strings"
	"unicode"
)

// ValidateStateID validates a state identifier from an input document.
// Identifiers are opaque, so validation is intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - Maximum length of 256 characters
func ValidateStateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDocument, "state identifier cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidDocument, "state identifier too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "state identifier contains control characters")
		}
	}

	return nil
}

// ValidateOutputPath validates a user-supplied output path for safety.
// It rejects empty paths, control characters and null bytes; directory
// layout is up to the caller.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "output path contains a null byte")
	}

	for _, r := range path {
		if r != '\t' && unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains control characters")
		}
	}

	return nil
}
