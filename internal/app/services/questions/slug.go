package questions

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const maxSlugLen = 50

// slugify lowercases the content and collapses every non-alphanumeric run
// into a single hyphen.
func slugify(content string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(content) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		slug = "question"
	}
	return slug
}

// withSuffix appends a short random suffix for collision retries.
func withSuffix(slug string) string {
	return slug + "-" + uuid.NewString()[:8]
}
