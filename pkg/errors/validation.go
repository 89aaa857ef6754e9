package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateCoordinates rejects NaN and infinite coordinates.
func ValidateCoordinates(x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return New(ErrCodeInvalidGeometry, "non-finite position (%v, %v)", x, y)
	}
	return nil
}

// ValidateScale rejects negative or non-finite scale components.
func ValidateScale(x, y float64) error {
	if err := ValidateCoordinates(x, y); err != nil {
		return New(ErrCodeInvalidGeometry, "non-finite scale (%v, %v)", x, y)
	}
	if x < 0 || y < 0 {
		return New(ErrCodeInvalidGeometry, "negative scale (%v, %v)", x, y)
	}
	return nil
}

// ValidateDot validates a connector dot parameter. Any finite value is
// accepted; out of range values are resolved by the connector itself.
func ValidateDot(dot float64) error {
	if math.IsNaN(dot) || math.IsInf(dot, 0) {
		return New(ErrCodeInvalidInput, "dot must be finite, got %v", dot)
	}
	return nil
}

// ValidatePath validates a file path given on the command line or in a
// configuration file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
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

	for _, seg := range strings.Split(strings.ReplaceAll(path, "\\", "/"), "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateSessionID validates a session identifier taken from a URL.
// Identifiers are lowercase hex with dashes and at most 64 characters.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "session id too long (max 64 characters)")
	}
	for _, r := range id {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r == '-') {
			return New(ErrCodeInvalidInput, "session id contains invalid character %q", r)
		}
	}
	return nil
}
