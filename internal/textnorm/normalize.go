// Package textnorm builds comparison keys for Slovak place names and
// column headers.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

var punctReplacer = strings.NewReplacer(
	",", " ",
	".", " ",
	"-", " ",
	"–", " ",
	"_", " ",
	"/", " ",
	"'", "",
	"\"", "",
	" ", " ",
)

// Key standardizes a name for matching by:
//  1. Decomposing and dropping combining marks (Staré -> Stare)
//  2. Case folding
//  3. Turning punctuation and dashes into spaces
//  4. Collapsing runs of whitespace
func Key(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err == nil {
		name = stripped
	}

	name = cases.Fold().String(name)
	name = punctReplacer.Replace(name)
	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
