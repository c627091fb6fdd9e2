package fileutil

import "strings"

const maxFilenameLength = 120

// SanitizeFilename maps a node display name to a filesystem-safe base name:
// path separators and control characters are replaced, whitespace collapses
// to single dashes, and the result is length-bounded. An empty or fully
// unsafe name comes back as "asset".
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|' || r < 0x20:
			b.WriteRune('-')
		case r == ' ' || r == '\t':
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}

	sanitized := b.String()
	for strings.Contains(sanitized, "--") {
		sanitized = strings.ReplaceAll(sanitized, "--", "-")
	}
	sanitized = strings.Trim(sanitized, "-.")
	if sanitized == "" {
		return "asset"
	}
	if len(sanitized) > maxFilenameLength {
		sanitized = sanitized[:maxFilenameLength]
	}
	return sanitized
}
