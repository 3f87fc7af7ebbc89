package profile

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const fallbackSlug = "member"

// pathReserved runes would split or truncate a slug used as a URL path segment.
const pathReserved = "/\\?#%"

// Slugify derives the public slug of a full name: diacritics stripped, lower-cased,
// periods removed, path-reserved runes treated as spaces and runs of whitespace
// collapsed to a single hyphen.
func Slugify(fullName string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, fullName)
	if err != nil {
		stripped = fullName
	}

	stripped = strings.ToLower(strings.ReplaceAll(stripped, ".", ""))
	stripped = strings.Map(func(r rune) rune {
		if strings.ContainsRune(pathReserved, r) {
			return ' '
		}
		return r
	}, stripped)
	slug := strings.Join(strings.Fields(stripped), "-")
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// SlugCandidate returns the n-th candidate for base; the first is base itself.
func SlugCandidate(base string, n int) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
