package utils

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// TruncateRunes keeps the first max runes of s. A max <= 0 returns "".
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}

// persianFold maps Arabic code points commonly typed on Arabic keyboards to
// their Persian equivalents, and strips the tatweel.
var persianFold = strings.NewReplacer(
	"\u064a", "\u06cc", // arabic yeh
	"\u0649", "\u06cc", // alef maksura
	"\u0643", "\u06a9", // arabic kaf
	"\u0640", "", // tatweel
)

// NormalizeText returns s in NFC form with Arabic yeh/kaf folded to Persian
// and surrounding whitespace removed. Used for search terms and bank names so
// that visually identical strings compare equal.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	s = persianFold.Replace(s)
	return strings.TrimSpace(s)
}

var slugSeparators = strings.NewReplacer(" ", "-", "\u200c", "-")

// Slugify derives a URL slug from a Persian or Latin title: spaces and
// zero-width non-joiners become dashes and letters are lower-cased.
//
// Example:
//
//	utils.Slugify("وام ازدواج Melli") // "وام-ازدواج-melli"
func Slugify(s string) string {
	return strings.ToLower(slugSeparators.Replace(strings.TrimSpace(s)))
}

// ParseIDList parses a comma separated list of positive integer ids,
// skipping blanks and invalid entries and keeping first occurrence order.
//
// Example:
//
//	utils.ParseIDList(" 3, x,7,3") // []uint{3, 7}
func ParseIDList(s string) []uint {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]uint, 0, len(parts))
	seen := make(map[uint]struct{}, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil || n == 0 {
			continue
		}
		id := uint(n)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
