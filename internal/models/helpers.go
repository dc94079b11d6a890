// Package models defines the data structures shared across postcraft: post records,
// contexts and drafts.
package models

import (
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9-]`)

// Slugify converts a name to a filename-safe slug.
// Lowercases, replaces spaces and underscores with hyphens, strips everything else.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	return nonSlugChars.ReplaceAllString(s, "")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
