package browserui

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SearchQuery normalizes a film title for the search box. The search index
// folds accented characters, so diacritics are stripped and whitespace
// collapsed before typing.
func SearchQuery(title string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, title)
	if err != nil {
		folded = title
	}
	return strings.Join(strings.Fields(folded), " ")
}
