package validation

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxResourceNameLength is counted in characters, not bytes
const MaxResourceNameLength = 255

// ValidateName validates a user's display name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	if !utf8.ValidString(trimmed) {
		return errors.New("name must be valid UTF-8")
	}

	if utf8.RuneCountInString(trimmed) > 100 {
		return errors.New("name is too long (max 100 characters)")
	}

	return nil
}

// NormalizeResourceName returns the canonical form a folder or file name is stored in.
// NFC keeps visually identical names from slipping past the sibling uniqueness check.
func NormalizeResourceName(name string) string {
	return strings.TrimSpace(norm.NFC.String(name))
}

// ValidateResourceName checks an already normalized folder or file name
func ValidateResourceName(name string) error {
	if name == "" {
		return errors.New("name is required")
	}

	if !utf8.ValidString(name) {
		return errors.New("name must be valid UTF-8")
	}

	if utf8.RuneCountInString(name) > MaxResourceNameLength {
		return errors.New("name is too long (max 255 characters)")
	}

	if name == "." || name == ".." {
		return errors.New("name is reserved")
	}

	for _, r := range name {
		if r == '/' || unicode.IsControl(r) {
			return errors.New("name contains an invalid character")
		}
	}

	return nil
}
