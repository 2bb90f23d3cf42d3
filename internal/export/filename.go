package export

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f\x7f]`)
)

// Filename returns "<client>_<date>.pdf" with whitespace runs collapsed to "_" and
// characters that are not allowed in file names replaced by "_"
func Filename(clientName, date string) string {
	base := clean(clientName)
	if base == "" {
		base = "invoice"
	}
	if d := clean(date); d != "" {
		base += "_" + d
	}
	return base + ".pdf"
}

func clean(s string) string {
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), "_")
	return unsafeChars.ReplaceAllString(s, "_")
}
