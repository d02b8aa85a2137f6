package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ToPascal joins the '-' and '_' separated parts of s, upper-casing the first letter of each.
func ToPascal(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	var b strings.Builder
	b.Grow(len(s))
	for _, part := range parts {
		b.WriteString(upperFirst(part))
	}
	return b.String()
}

// ToCamel is ToPascal with a lower-cased first letter.
func ToCamel(s string) string {
	return lowerFirst(ToPascal(s))
}

// ToKebab splits lower-to-upper case transitions with '-', lower-cases, and turns '_' into '-'.
func ToKebab(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	var prev rune
	for i, r := range s {
		if i > 0 && isLowerOrDigit(prev) && r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.ReplaceAll(strings.ToLower(b.String()), "_", "-")
}

// ToSnake is ToKebab with '_' separators.
func ToSnake(s string) string {
	return strings.ReplaceAll(ToKebab(s), "-", "_")
}

func isLowerOrDigit(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
