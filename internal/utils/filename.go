package utils

import (
	"fmt"
	"strings"
	"unicode"
)

// SanitizeTitle reduces a book title to a safe export filename stem. Only
// letters, digits, spaces, underscores and hyphens survive.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	sanitized := strings.TrimSpace(b.String())
	if sanitized == "" {
		sanitized = "Untitled"
	}
	return sanitized
}

// UniqueExportName returns "<stem><ext>", appending " (N)" suffixes until
// the name is absent from used, and records the result in used. Two titles
// collapsing to the same stem within a run never overwrite each other.
func UniqueExportName(stem, ext string, used map[string]bool) string {
	candidate := stem + ext
	for counter := 1; used[candidate]; counter++ {
		candidate = fmt.Sprintf("%s (%d)%s", stem, counter, ext)
	}
	used[candidate] = true
	return candidate
}
