package util

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// NaturalLess compares two strings in natural order, so "Plan 2" sorts
// before "Plan 10". Case is ignored.
func NaturalLess(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	for len(a) > 0 && len(b) > 0 {
		if unicode.IsDigit(rune(a[0])) && unicode.IsDigit(rune(b[0])) {
			an, arest := leadingInt(a)
			bn, brest := leadingInt(b)
			if an != bn {
				return an < bn
			}
			a, b = arest, brest
			continue
		}
		if a[0] != b[0] {
			// A digit sorts before any other character.
			ad := unicode.IsDigit(rune(a[0]))
			bd := unicode.IsDigit(rune(b[0]))
			if ad != bd {
				return ad
			}
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

// leadingInt splits off the leading run of digits.
func leadingInt(s string) (int, string) {
	i := 0
	for i < len(s) && unicode.IsDigit(rune(s[i])) {
		i++
	}
	n, _ := strconv.Atoi(s[:i])
	return n, s[i:]
}

var unsafeFilenameChars = regexp.MustCompile(`[\x00\\/:*?"<>|]`)

// SanitizeFilename makes a server-provided name safe to use as a local
// file name for downloaded exports.
func SanitizeFilename(filename string) string {
	safe := unsafeFilenameChars.ReplaceAllString(filename, "-")

	for strings.HasPrefix(safe, ".") || strings.HasPrefix(safe, "-") {
		safe = safe[1:]
	}
	if safe == "" {
		safe = "untitled"
	}
	return safe
}
