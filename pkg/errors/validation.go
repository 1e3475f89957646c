package errors

import (
	"strings"
	"unicode"
)

// maxMapIDLength bounds map and hotspot identifiers. Ids are embedded in
// URLs, cache keys, and file names, so excessively long values are rejected.
const maxMapIDLength = 256

// ValidateMapID validates a map identifier for safety and correctness.
// Ids travel through navigation requests and document keys, so the rules
// are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No path-like separators (/, \) or traversal sequences (..)
//   - Maximum length of 256 characters
func ValidateMapID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidMapID, "map id cannot be empty")
	}

	if len(id) > maxMapIDLength {
		return New(ErrCodeInvalidMapID, "map id too long (max %d characters)", maxMapIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidMapID, "map id contains invalid control characters")
		}
	}

	// Path-like separators would let a crafted id escape key/file namespaces.
	dangerousPatterns := []string{
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"..",   // Parent directory
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidMapID, "map id contains invalid sequence: %q", pattern)
		}
	}

	return nil
}

// ValidateHotspotID validates a hotspot identifier using the same rules
// as map ids. Hotspot ids share key and URL namespaces with map ids.
func ValidateHotspotID(id string) error {
	if err := ValidateMapID(id); err != nil {
		return New(ErrCodeInvalidHotspot, "hotspot id: %s", UserMessage(err))
	}
	return nil
}

// ValidateImageRef validates an image reference for a map node.
// A reference is either a URL with a safe scheme (http, https, file, data)
// or an absolute filesystem path. Relative paths are rejected because the
// document has no base directory to resolve them against once exported.
func ValidateImageRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidImageRef, "image reference cannot be empty")
	}

	const maxRefLength = 2048
	if len(ref) > maxRefLength {
		return New(ErrCodeInvalidImageRef, "image reference too long (max %d characters)", maxRefLength)
	}

	for _, r := range ref {
		if r == '\x00' || (unicode.IsControl(r) && r != '\t') {
			return New(ErrCodeInvalidImageRef, "image reference contains invalid characters")
		}
	}

	for _, scheme := range []string{"http://", "https://", "file://", "data:image/"} {
		if strings.HasPrefix(ref, scheme) {
			return nil
		}
	}

	// Absolute POSIX path or Windows drive path.
	if strings.HasPrefix(ref, "/") {
		return nil
	}
	if len(ref) > 2 && ref[1] == ':' && (ref[2] == '\\' || ref[2] == '/') {
		return nil
	}

	return New(ErrCodeInvalidImageRef, "image reference must be a http(s)/file/data URL or an absolute path: %q", ref)
}

// ValidateDocumentName validates a stored document name.
// It ensures the name is a simple identifier without path components,
// usable as a file basename and a store key.
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "document name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "document name cannot contain path separators")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidInput, "document name cannot be a hidden file")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "document name contains invalid control characters")
		}
	}

	return nil
}
