package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// MaxBoxDimension bounds box widths and heights accepted from user input.
const MaxBoxDimension = 1e9

// ValidateBoxSize validates a box size read from user input.
// Both dimensions must be finite, strictly positive and at most MaxBoxDimension.
func ValidateBoxSize(width, height float64) error {
	for _, d := range []struct {
		name string
		v    float64
	}{{"width", width}, {"height", height}} {
		switch {
		case math.IsNaN(d.v) || math.IsInf(d.v, 0):
			return New(ErrCodeInvalidBox, "%s must be a finite number", d.name)
		case d.v <= 0:
			return New(ErrCodeInvalidBox, "%s must be positive, got %g", d.name, d.v)
		case d.v > MaxBoxDimension:
			return New(ErrCodeInvalidBox, "%s too large (max %g)", d.name, float64(MaxBoxDimension))
		}
	}
	return nil
}

// ValidateLabel validates an optional box label.
// Empty labels are allowed; others are limited to 128 printable characters.
func ValidateLabel(label string) error {
	if len(label) > 128 {
		return New(ErrCodeInvalidInput, "label too long (max 128 characters)")
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
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

// sessionIDRegex matches canonical lowercase UUID strings.
var sessionIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateSessionID validates a session identifier taken from a URL or flag.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if !sessionIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid session id: %q", id)
	}
	return nil
}
