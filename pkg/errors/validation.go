package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// runIDRegex matches the canonical lowercase UUID text form used for run ids.
var runIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateRunID validates a stored run identifier.
// Run ids become file names in the file store, so anything other than the
// canonical UUID form is rejected.
func ValidateRunID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "run id cannot be empty")
	}
	if !runIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid run id: %q", id)
	}
	return nil
}

// ValidateSourceName validates the display name of an uploaded image.
// It ensures the name is a simple basename without path components.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 255 characters
//   - No control characters
//   - No path separators or traversal sequences
func ValidateSourceName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "source name cannot be empty")
	}

	const maxNameLength = 255
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "source name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "source name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "source name cannot contain path separators")
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidInput, "source name cannot be %q", name)
	}

	return nil
}
