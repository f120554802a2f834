package slug

import (
	"strings"
	"unicode"
)

// Make lowercases input and collapses every run of characters that are not
// letters or digits into a single dash. Kana and kanji count as letters.
func Make(input string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(input)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	s := strings.Trim(sb.String(), "-")
	if s == "" {
		return "untitled"
	}
	return s
}
