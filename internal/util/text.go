package util

import (
	"regexp"
	"strings"
)

// FallbackKey is used when a heading has no usable characters.
const FallbackKey = "section"

var (
	reLeadingMarker = regexp.MustCompile(`^[#\s]+`)
	reSpaces        = regexp.MustCompile(`\s+`)
	reNonKey        = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeKey maps heading text to an identifier-safe key matching
// ^[a-z_][a-z0-9_]*$. Every input, including "", yields a key.
func NormalizeKey(heading string) string {
	s := strings.TrimSpace(heading)
	s = reLeadingMarker.ReplaceAllString(s, "")
	s = CollapseSpaces(s)
	s = asciiLower(s)
	s = reNonKey.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = FallbackKey
	}
	if c := s[0]; !(c >= 'a' && c <= 'z') && c != '_' {
		s = "_" + s
	}
	return s
}

func CollapseSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// NormalizeNewlines converts \r\n and lone \r to \n.
func NormalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

func asciiLower(input string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, input)
}
