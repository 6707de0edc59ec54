package naming

import (
	"regexp"
	"strings"

	"github.com/gertd/go-pluralize"
)

var plurals = pluralize.NewClient()

// Plural returns the plural of name. Names already ending in "s" are left
// alone, as are empty names.
func Plural(name string) string {
	if name == "" || strings.HasSuffix(name, "s") || strings.HasSuffix(name, "S") {
		return name
	}
	words := SplitWords(name)
	if len(words) == 0 {
		return name
	}
	last := words[len(words)-1]
	plural := plurals.Plural(last)
	if !strings.HasSuffix(name, last) {
		return name + "s"
	}
	return strings.TrimSuffix(name, last) + plural
}

// Singular returns the singular of name.
func Singular(name string) string {
	words := SplitWords(name)
	if len(words) == 0 {
		return name
	}
	last := words[len(words)-1]
	if !strings.HasSuffix(name, last) {
		return name
	}
	return strings.TrimSuffix(name, last) + plurals.Singular(last)
}

var reserved = map[string]bool{
	// keywords
	"break": true, "case": true, "chan": true, "const": true, "continue": true, "default": true,
	"defer": true, "else": true, "fallthrough": true, "for": true, "func": true, "go": true,
	"goto": true, "if": true, "import": true, "interface": true, "map": true, "package": true,
	"range": true, "return": true, "select": true, "struct": true, "switch": true, "type": true,
	"var": true,
	// predeclared identifiers that generated code relies on
	"any": true, "bool": true, "byte": true, "error": true, "string": true, "int": true,
	"len": true, "nil": true, "true": true, "false": true, "new": true, "make": true,
	// locals of generated methods
	"ctx": true, "client": true, "service": true, "req": true, "resp": true, "err": true,
}

// IsReserved reports whether name would clash with a Go keyword or a name
// generated methods use internally.
func IsReserved(name string) bool { return reserved[name] }

// EscapeReserved appends suffix to name if it is reserved.
func EscapeReserved(name, suffix string) string {
	if reserved[name] {
		return name + suffix
	}
	return name
}

var (
	toUnderscore     = regexp.MustCompile(`[\\/.+ -]+`)
	mergeUnderscores = regexp.MustCompile(`_{2,}`)
)

// symbols names enum values made only of punctuation, such as "*" or "+".
var symbols = map[rune]string{
	'!': "Exclamation", '"': "Quote", '#': "Hash", '$': "Dollar", '%': "Percent",
	'&': "Ampersand", '\'': "Apostrophe", '(': "LeftParen", ')': "RightParen",
	'*': "Asterisk", '+': "Plus", ',': "Comma", '-': "Minus", '.': "Dot", '/': "Slash",
	':': "Colon", ';': "Semicolon", '<': "LessThan", '=': "Equals", '>': "GreaterThan",
	'?': "Question", '@': "At", '[': "LeftBracket", '\\': "Backslash", ']': "RightBracket",
	'^': "Caret", '_': "Underscore", '`': "Backtick", '{': "LeftBrace", '|': "Pipe",
	'}': "RightBrace", '~': "Tilde",
}

// EnumMemberName returns the Go constant name for an enum value of typeName,
// e.g. ("PetKind", "golden-retriever") gives "PetKindGoldenRetriever".
func EnumMemberName(typeName, value string) string {
	v := strings.Trim(toUnderscore.ReplaceAllString(value, "_"), "_")
	v = mergeUnderscores.ReplaceAllString(v, "_")
	member := PascalCase(v)
	if member == "" {
		var b strings.Builder
		for _, r := range value {
			if name, ok := symbols[r]; ok {
				b.WriteString(name)
			}
		}
		member = b.String()
		if member == "" {
			member = "Empty"
		}
	}
	if isDigit(rune(member[0])) && typeName == "" {
		member = "N" + member
	}
	return typeName + member
}
