package extract

import (
	"regexp"
	"strings"
)

var (
	lineBreaks  = regexp.MustCompile(`\r\n|\r`)
	controlWS   = regexp.MustCompile(`[\t\f\v]+`)
	spaceRuns   = regexp.MustCompile(` +`)
	nbspReplace = strings.NewReplacer("\u00a0", " ")
)

// Normalize canonicalizes whitespace: CRLF and CR become LF, runs of tab/form-feed/vertical-tab
// become one space, NBSP becomes a space, and runs of spaces collapse to one.
func Normalize(text string) string {
	text = lineBreaks.ReplaceAllString(text, "\n")
	text = controlWS.ReplaceAllString(text, " ")
	text = nbspReplace.Replace(text)
	return spaceRuns.ReplaceAllString(text, " ")
}
