package normalization

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ParseInputString trims and lowercases user input. cases.Caser keeps state, so one per call.
func ParseInputString(input string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(input))
}

// TrimmedPtr returns nil for blank input.
func TrimmedPtr(input *string) *string {
	if input == nil {
		return nil
	}
	v := strings.TrimSpace(*input)
	if v == "" {
		return nil
	}
	return &v
}

// RuneLen counts code points, which is how every length bound is measured.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Excerpt returns s unchanged up to max code points. Longer text is cut, trimmed and given "...".
func Excerpt(s string, max int) string {
	if RuneLen(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max])) + "..."
}
