// Package pattern builds the regular expressions the rewrite engine uses
// to find import specifiers. Every externally derived string is routed
// through the escapers in internal/safety before it reaches a pattern;
// no raw interpolation happens here or anywhere upstream.
package pattern

import (
	"regexp"
	"strings"

	"github.com/oxhq/movfx/internal/safety"
)

// sourceExtensions are stripped from specifiers when deriving the forms
// an import of a file can take.
var sourceExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// quoteChars are the specifier delimiters recognized in source text.
const quoteChars = "'\"`"

// ImportSpecifier compiles a pattern matching a quoted import specifier
// exactly equal to spec. Group 1 and 2 capture the quote characters so a
// replacement can preserve them.
func ImportSpecifier(spec string) (*regexp.Regexp, error) {
	q := CharClass(quoteChars)
	return regexp.Compile("(" + q + ")" + safety.EscapeRegex(spec) + "(" + q + ")")
}

// ImportPrefix compiles a pattern matching a quoted specifier equal to
// spec or any deep path under it. Group 2 captures the deep suffix
// (beginning with a slash) so the replacement can carry it over.
func ImportPrefix(spec string) (*regexp.Regexp, error) {
	q := CharClass(quoteChars)
	deep := "((?:/" + NegatedCharClass(quoteChars) + "+)?)"
	return regexp.Compile("(" + q + ")" + safety.EscapeRegex(spec) + deep + "(" + q + ")")
}

// RelativeImport compiles a pattern matching any quoted relative
// specifier (./ or ../ prefixed). Group 2 captures the specifier.
func RelativeImport() *regexp.Regexp {
	q := CharClass(quoteChars)
	return regexp.MustCompile("(" + q + `)(\.\.?/` + NegatedCharClass(quoteChars) + `*)(` + q + ")")
}

// CharClass wraps chars in a [...] character class. Hyphens are
// hex-escaped so adjacent characters can never be read as a range.
func CharClass(chars string) string {
	return "[" + safety.EscapeRegexCharClass(chars) + "]"
}

// NegatedCharClass is CharClass with the set inverted.
func NegatedCharClass(chars string) string {
	return "[^" + safety.EscapeRegexCharClass(chars) + "]"
}

// SpecifierForms returns the specifier spellings that can refer to the
// file at relPath: the path as given, the path with a known source
// extension stripped, and for index modules the bare directory path.
func SpecifierForms(relPath string) []string {
	forms := []string{relPath}

	stripped := relPath
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(relPath, ext) && relPath != ext {
			stripped = strings.TrimSuffix(relPath, ext)
			break
		}
	}
	if stripped != relPath {
		forms = append(forms, stripped)
	}

	const index = "/index"
	if strings.HasSuffix(stripped, index) && stripped != index {
		forms = append(forms, strings.TrimSuffix(stripped, index))
	}

	return forms
}
