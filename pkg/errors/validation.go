package errors

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// maxPathLength bounds user-supplied image paths.
const maxPathLength = 4096

// ValidateImagePath validates an input or output image path supplied by a user.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
func ValidateImagePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "%s names a directory, not an image file", path)
	}

	return nil
}

// ValidateFormat checks that format is one of allowed (case-sensitive).
func ValidateFormat(format string, allowed []string) error {
	if !slices.Contains(allowed, format) {
		return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateExtension checks that path ends in one of the allowed extensions
// (compared case-insensitively, with the leading dot).
func ValidateExtension(path string, allowed []string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return New(ErrCodeInvalidFormat, "%s has no file extension (must be one of: %s)", path, strings.Join(allowed, ", "))
	}
	if !slices.Contains(allowed, ext) {
		return New(ErrCodeInvalidFormat, "%s: unsupported extension %q (must be one of: %s)", path, ext, strings.Join(allowed, ", "))
	}
	return nil
}
