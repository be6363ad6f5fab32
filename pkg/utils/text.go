package utils

import "strings"

// TruncateText cuts s to at most max runes, appending an ellipsis when the
// text was shortened. Used to bound prompt and message sizes.
func TruncateText(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}
