package strings

import (
	"strings"
)

// DefaultCellMaxLen is the widest a free-text table cell (titles,
// descriptions) is printed.
const DefaultCellMaxLen = 60

// MinTruncateLen leaves room for one character plus "...".
const MinTruncateLen = 4

// Truncate collapses s onto a single line and cuts it to at most maxLen runes,
// ending in "..." when it was cut. maxLen below MinTruncateLen is raised to it.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// OrDash returns "-" for an empty string so empty table cells stay visible.
func OrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
