// Package textutils prepares transaction text for comparison.
package textutils

import (
	"strings"
	"unicode"
)

// transactionalPrefixes are stripped from the start of normalized text.
// Only the first match is removed and the order matters: "payment to " must be
// tried before "to ".
var transactionalPrefixes = []string{
	"payment to ",
	"payment from ",
	"transfer to ",
	"transfer from ",
	"sent to ",
	"received from ",
	"from ",
	"to ",
	"paid to ",
}

// Normalize lowercases s, removes one leading transactional prefix, replaces
// every rune other than letters, digits, spaces, hyphens and ampersands with a
// space, and collapses whitespace. The empty string normalizes to "".
func Normalize(s string) string {
	text := collapse(strings.ToLower(s))
	for _, prefix := range transactionalPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = text[len(prefix):]
			break
		}
	}
	return collapse(fold(text))
}

// Canonicalize is Normalize without prefix stripping. It is used for keyword
// lists so that "Coop-Pronto" and "coop pronto!" compare the same way the
// transaction text does.
func Canonicalize(s string) string {
	return collapse(fold(strings.ToLower(s)))
}

// CombineNormalized normalizes description and merchant separately and joins
// them with a single space. Either part may be empty.
func CombineNormalized(description, merchant string) string {
	return strings.TrimSpace(Normalize(description) + " " + Normalize(merchant))
}

func fold(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '&' {
			return r
		}
		return ' '
	}, s)
}

// collapse trims s and reduces every run of whitespace to one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
