package validation

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonMachineChars   = regexp.MustCompile(`[^a-z0-9]+`)
	multiUnderscores  = regexp.MustCompile(`_+`)
	leadingNonLetters = regexp.MustCompile(`^[^a-z]+`)
)

// MachineName derives a machine name from a human readable label.
//
//	"Read later"     -> "read_later"
//	"Café favourite" -> "cafe_favourite"
//	"5 Stars!"       -> "stars"
//
// The result is empty when label holds no ASCII letters.
func MachineName(label string) string {
	// Decompose accented characters, then drop everything outside ASCII.
	s := norm.NFKD.String(label)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonMachineChars.ReplaceAllString(s, "_")
	s = multiUnderscores.ReplaceAllString(s, "_")
	s = leadingNonLetters.ReplaceAllString(s, "")
	return strings.TrimRight(s, "_")
}
