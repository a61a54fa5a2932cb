package errors

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// scopeRegex matches topology scope names: "world", "usa", ISO3 codes.
var scopeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,63}$`)

// ValidateScope validates a scope name. Scopes name embedded files and
// topology objects, so the rules are conservative:
//   - No empty names
//   - Letters, digits, dash and underscore only, starting with a letter
//   - Maximum length of 64 characters
func ValidateScope(scope string) error {
	if scope == "" {
		return New(ErrCodeInvalidScope, "scope cannot be empty")
	}
	if !scopeRegex.MatchString(scope) {
		return New(ErrCodeInvalidScope, "invalid scope name: %q", scope)
	}
	return nil
}

// ValidateFillKey validates a symbolic fill key. Fill keys become CSS class
// names in the legend, so whitespace and control characters are rejected.
func ValidateFillKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "fill key cannot be empty")
	}
	if len(key) > 128 {
		return New(ErrCodeInvalidInput, "fill key too long (max 128 characters)")
	}
	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "fill key %q contains whitespace or control characters", key)
		}
	}
	return nil
}

// ValidateMapID validates the identifier of a saved map definition.
func ValidateMapID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "map id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid map id %q", id)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

// ValidateDataType validates the format of a remote overlay dataset.
func ValidateDataType(dataType string) error {
	switch dataType {
	case "json", "csv":
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported data type %q (want json or csv)", dataType)
}
