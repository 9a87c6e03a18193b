// Package phone canonicalizes phone numbers into comparable keys.
package phone

import "strings"

// KeyLength is the number of trailing digits that form a phone key.
const KeyLength = 10

// Normalize derives the canonical 10-digit key from an arbitrary phone
// string: every non-digit character is stripped and the last 10 digits of
// what remains form the key. The second return value is false when the
// input contains no digits or fewer than 10 of them.
//
// Normalize is pure and never fails: all deduplication and DNC matching
// depends on it producing the same key for equivalent inputs.
func Normalize(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) < KeyLength {
		return "", false
	}

	return digits[len(digits)-KeyLength:], true
}
