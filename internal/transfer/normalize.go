package transfer

import "strings"

// Normalize collapses all whitespace runs (including newlines) in extracted
// annotation text to single spaces and trims the ends. An empty result
// means the annotation covered no usable text, which callers report rather
// than silently skip.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
