package documents

import "unicode/utf8"

// TruncateRunes cuts s to at most max characters. It may split a word but never a character.
func TruncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	i := 0
	for pos := range s {
		if i == max {
			return s[:pos]
		}
		i++
	}
	return s
}
