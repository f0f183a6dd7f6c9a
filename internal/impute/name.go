package impute

import (
	"math"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nameStripper removes the punctuation ignored by name comparison.
var nameStripper = strings.NewReplacer(".", "", ",", "")

// SanitizeName normalises a name for comparison: lower-case, with "." and
// "," removed. With foldAccents, diacritics are dropped as well, so
// "Bjornström" and "Bjornstrom" compare equal.
func SanitizeName(name string, foldAccents bool) string {
	if foldAccents {
		t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		if folded, _, err := transform.String(t, name); err == nil {
			name = folded
		}
	}
	return nameStripper.Replace(cases.Lower(language.Und).String(name))
}

// Ratio returns the similarity of a and b in [0, 100]: the
// SequenceMatcher ratio scaled by 100 and rounded half to even.
// It is 0 when either string is empty.
func Ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	return scaledRatio(difflib.NewMatcher(splitChars(a), splitChars(b)))
}

func scaledRatio(m *difflib.SequenceMatcher) int {
	return int(math.RoundToEven(100 * m.Ratio()))
}

// splitChars splits s into one element per character.
func splitChars(s string) []string {
	return strings.Split(s, "")
}
