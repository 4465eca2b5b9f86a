// Package sanitize cleans user-supplied text before it is logged or
// forwarded to a collaborator.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	newlinePattern = regexp.MustCompile(`[\r\n]+`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// LogString strips line breaks so user input cannot forge log lines.
func LogString(s string) string {
	return newlinePattern.ReplaceAllString(s, " ")
}

// Query trims s, collapses whitespace runs to a single space and caps the
// result at max runes. A max of 0 means no cap.
func Query(s string, max int) string {
	s = spacePattern.ReplaceAllString(strings.TrimSpace(s), " ")
	if max > 0 {
		if r := []rune(s); len(r) > max {
			s = strings.TrimSpace(string(r[:max]))
		}
	}
	return s
}
