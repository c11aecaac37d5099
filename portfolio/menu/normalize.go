package menu

import (
	"strings"
	"unicode"
)

// Normalize maps a callback token or button label to registry key form:
// trimmed, lower-cased, with each run of spaces, hyphens or underscores
// collapsed to a single underscore. "Social Media" and "social-media" both
// become "social_media".
func Normalize(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	var b strings.Builder
	b.Grow(len(token))
	sep := false
	for _, r := range token {
		if r == '-' || r == '_' || unicode.IsSpace(r) {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}
	return b.String()
}
