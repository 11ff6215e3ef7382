package utils

import (
	"regexp"
	"strings"
)

var (
	wordSplitRe = regexp.MustCompile(`[^a-z0-9]+`)
	postcodeRe  = regexp.MustCompile(`\b(\d{4})\b`)
)

// Tokenize lowercases a query and splits it into alphanumeric words.
// Empty tokens are dropped.
func Tokenize(s string) []string {
	parts := wordSplitRe.Split(strings.ToLower(s), -1)
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}

// ExtractPostcode finds the first Australian-style 4-digit postcode in a
// message, or returns "" if none is present.
func ExtractPostcode(message string) string {
	match := postcodeRe.FindStringSubmatch(message)
	if match == nil {
		return ""
	}
	return match[1]
}
