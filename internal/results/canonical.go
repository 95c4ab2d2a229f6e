package results

import "regexp"

// startSuffix matches a multi-start suffix: the literal "_start" followed by a
// digit run, anchored at the end of the label.
var startSuffix = regexp.MustCompile(`_start\d+$`)

// CanonicalName strips the multi-start suffix from an algorithm label. Runs
// launched from different starting configurations share a canonical name and
// are one logical algorithm everywhere downstream. Stripping repeats until no
// suffix remains so the function is idempotent for any input.
func CanonicalName(label string) string {
	for {
		trimmed := startSuffix.ReplaceAllString(label, "")
		if trimmed == label {
			return label
		}
		label = trimmed
	}
}
