package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func unwanted(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return false
	}
	return r == utf8.RuneError || unicode.IsControl(r)
}

// Sanitize drops NUL, C0 and C1 controls except tab and line breaks, and invalid UTF-8.
// Clean input is returned unchanged without allocating.
func Sanitize(s string) string {
	if utf8.ValidString(s) && strings.IndexFunc(s, unwanted) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unwanted(r) {
			return -1
		}
		return r
	}, strings.ToValidUTF8(s, ""))
}
