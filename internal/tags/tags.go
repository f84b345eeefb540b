// Package tags canonicalizes free-text tag strings.
package tags

import "strings"

// Normalize lowercases a tag, trims surrounding whitespace, and
// collapses internal whitespace runs into single hyphens.
// "  Climate   Policy " becomes "climate-policy".
func Normalize(tag string) string {
	fields := strings.Fields(strings.ToLower(tag))
	return strings.Join(fields, "-")
}

// Dedupe normalizes every tag and removes duplicates, keeping first
// occurrence order. Empty results are dropped.
func Dedupe(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		n := Normalize(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
