// Package naming turns code model names into Go identifiers.
package naming

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-openapi/swag"
	"github.com/huandu/xstrings"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// RemoveAccents removes accents from a string, converting accented characters to their base forms
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SplitWords splits a name into words on non-alphanumerics and camelCase
// boundaries. Acronyms stay together: "XMLHttpRequest" is XML, Http, Request.
func SplitWords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = RemoveAccents(s)

	var words []string
	for _, part := range nonAlnum.Split(s, -1) {
		if part == "" {
			continue
		}
		words = append(words, SplitCamelCase(part)...)
	}
	return words
}

// SplitCamelCase splits a camelCase or PascalCase string into words
func SplitCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var parts []string
	var current strings.Builder

	rs := []rune(s)
	for i, r := range rs {
		isNewWord := false
		if i > 0 && isUppercase(r) {
			if !isUppercase(rs[i-1]) {
				isNewWord = true
			} else if i < len(rs)-1 && !isUppercase(rs[i+1]) && !isDigit(rs[i+1]) {
				// "XMLHttp" -> "XML", "Http"
				isNewWord = true
			}
		}

		if isNewWord && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUppercase(r rune) bool { return r >= 'A' && r <= 'Z' }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// PascalCase upper-cases the first rune of every word and keeps the rest as
// written, so "listPets" becomes "ListPets" and "pet_store" "PetStore".
func PascalCase(s string) string {
	var b strings.Builder
	for _, w := range SplitWords(s) {
		b.WriteString(xstrings.FirstRuneToUpper(w))
	}
	return b.String()
}

// CamelCase is PascalCase with a lower-cased leading word. A leading acronym
// is lower-cased as a whole: "URLPath" becomes "urlPath".
func CamelCase(s string) string {
	words := SplitWords(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	first := words[0]
	if strings.ToUpper(first) == first {
		b.WriteString(strings.ToLower(first))
	} else {
		b.WriteString(xstrings.FirstRuneToLower(first))
	}
	for _, w := range words[1:] {
		b.WriteString(xstrings.FirstRuneToUpper(w))
	}
	return b.String()
}

// SnakeCase converts a string to snake_case
func SnakeCase(s string) string {
	words := SplitWords(s)
	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	return strings.Join(words, "_")
}

// KebabCase converts a string to kebab-case
func KebabCase(s string) string {
	words := SplitWords(s)
	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	return strings.Join(words, "-")
}

// GoIdentifier returns an exported Go identifier with the usual initialisms
// upper-cased ("pet_id" becomes "PetID"). A leading digit is prefixed with "N".
func GoIdentifier(s string) string {
	name := swag.ToGoName(RemoveAccents(s))
	if name == "" {
		return ""
	}
	if isDigit(rune(name[0])) {
		name = "N" + name
	}
	return name
}

// GoVarName returns an unexported Go identifier for s, escaped if it is a
// keyword or predeclared identifier.
func GoVarName(s string) string {
	name := swag.ToVarName(RemoveAccents(s))
	if name == "" {
		return ""
	}
	if isDigit(rune(name[0])) {
		name = "n" + name
	}
	return EscapeReserved(name, "Param")
}

// FileName returns the snake_case Go file name for a type name.
func FileName(typeName string) string {
	return SnakeCase(typeName) + ".go"
}
