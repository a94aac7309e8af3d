package formatting

import "regexp"

var (
	starRun       = regexp.MustCompile(`\*{2,}`)
	dotRun        = regexp.MustCompile(`\.{2,}`)
	dotBeforeCap  = regexp.MustCompile(`\.([A-Z])`)
	disallowedRun = regexp.MustCompile(`[^\w\s.,;:!?*\[\]()"-]+`)
)

// Sanitize normalizes raw model output. It collapses runs of '*' and '.',
// puts a space after a period that runs straight into a capital letter, and
// drops every character outside word characters, whitespace and
// .,;:!?*[]()"- .
//
// Dropping characters can expose new runs ("*~*" becomes "**"), so the pass
// is repeated until the text no longer changes. That settles after at most
// two effective passes and makes Sanitize idempotent.
func Sanitize(raw string) string {
	out := sanitizePass(raw)
	for {
		next := sanitizePass(out)
		if next == out {
			return out
		}
		out = next
	}
}

// sanitizePass applies the four rules once, in order. Collapsing must come
// before the space insertion so "..Next" and ".Next" end up identical.
func sanitizePass(s string) string {
	s = starRun.ReplaceAllString(s, "*")
	s = dotRun.ReplaceAllString(s, ".")
	s = dotBeforeCap.ReplaceAllString(s, ". $1")
	return disallowedRun.ReplaceAllString(s, "")
}
