package util

import (
	"strings"
	"unicode"
)

// Slugify converts a display name into a URL-safe slug: lowercase ASCII
// letters and digits separated by single hyphens.
func Slugify(parts ...string) string {
	var b strings.Builder
	lastHyphen := true

	for _, part := range parts {
		for _, r := range strings.ToLower(part) {
			switch {
			case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r):
				b.WriteRune(r)
				lastHyphen = false
			default:
				if !lastHyphen {
					b.WriteByte('-')
					lastHyphen = true
				}
			}
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.Trim(b.String(), "-")
}
