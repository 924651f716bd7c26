package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxSlugLength = 80

// Slugify turns a title into a lowercase, URL-safe slug. Accents are folded
// to their base letters; every other run of non-alphanumerics becomes one dash.
func Slugify(title string) string {
	var sb strings.Builder
	dash := false
	for _, r := range norm.NFKD.String(title) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			dash = false
			sb.WriteRune(unicode.ToLower(r))
		default:
			dash = true
		}
		if sb.Len() >= maxSlugLength {
			break
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}
