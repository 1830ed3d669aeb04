package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// SectionFileExtensions lists the file extensions accepted for section definition files.
var SectionFileExtensions = []string{".json", ".toml", ".yaml", ".yml"}

// ValidateSectionFile validates the path of a section definition file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Extension must be one of [SectionFileExtensions]
func ValidateSectionFile(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "section file path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range SectionFileExtensions {
		if ext == allowed {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported section file extension %q (want one of %s)",
		ext, strings.Join(SectionFileExtensions, ", "))
}

// ValidateSectionID validates a section id received from an untrusted caller,
// such as an HTTP request. Registration itself only requires a non-empty id.
func ValidateSectionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "section id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "section id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "section id contains invalid control characters")
		}
	}
	return nil
}
