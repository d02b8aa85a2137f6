// Package naming renames every casing and plurality variant of a name inside free text.
package naming

import (
	"sort"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// protectedKeywords are infrastructure terms that are never renamed, even when a variant matches them.
var protectedKeywords = map[string]bool{
	"s3":         true,
	"sqs":        true,
	"sns":        true,
	"lambda":     true,
	"dynamodb":   true,
	"iam":        true,
	"cdk":        true,
	"construct":  true,
	"stack":      true,
	"app":        true,
	"stage":      true,
	"bucket":     true,
	"function":   true,
	"handler":    true,
	"service":    true,
	"controller": true,
}

// IsProtected reports whether word is a protected keyword (case-insensitive).
func IsProtected(word string) bool {
	return protectedKeywords[strings.ToLower(word)]
}

// Strategy renames occurrences of one name inside a piece of text.
type Strategy interface {
	Rename(text string) string
}

// patterns caches compiled variant alternations keyed by original name.
var patterns, _ = lru.New[string, *regexp2.Regexp](128)

// Engine is a compiled Strategy replacing variants of OriginalName with NewName.
type Engine struct {
	OriginalName string
	NewName      string

	pattern *regexp2.Regexp
	target  string
}

var _ Strategy = (*Engine)(nil)

// NewEngine compiles the variant pattern for originalName.
// An empty name on either side, or identical names, yields a no-op engine.
func NewEngine(originalName, newName string) *Engine {
	e := &Engine{OriginalName: originalName, NewName: newName}
	if originalName == "" || newName == "" || originalName == newName {
		return e
	}
	e.pattern = compileVariants(originalName)
	e.target = newName
	if !IsSingular(newName) {
		e.target = Singularize(newName)
	}
	return e
}

// Rename replaces every casing/plurality variant of originalName in text with newName.
func Rename(text, originalName, newName string) string {
	return NewEngine(originalName, newName).Rename(text)
}

// Rename applies the engine to text. Text without matches is returned unchanged.
func (e *Engine) Rename(text string) string {
	if e == nil || e.pattern == nil || text == "" {
		return text
	}
	match, err := e.pattern.FindStringMatch(text)
	if err != nil || match == nil {
		return text
	}

	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for match != nil {
		start, end := match.Index, match.Index+match.Length
		b.WriteString(string(runes[last:start]))
		b.WriteString(e.replacement(runes, start, end))
		last = end

		match, err = e.pattern.FindNextMatch(match)
		if err != nil {
			break
		}
	}
	b.WriteString(string(runes[last:]))
	return b.String()
}

func (e *Engine) replacement(runes []rune, start, end int) string {
	matched := string(runes[start:end])
	if IsProtected(matched) {
		return matched
	}

	target := e.target
	if !IsSingular(matched) {
		target = Pluralize(target)
	}

	var prev, next rune
	if start > 0 {
		prev = runes[start-1]
	}
	if end < len(runes) {
		next = runes[end]
	}
	snakeContext := prev == '_' || next == '_'
	kebabContext := prev == '-' || next == '-'

	switch {
	case matched == strings.ToUpper(matched) && strings.ToLower(matched) != matched:
		return strings.ToUpper(target)
	case strings.Contains(matched, "_") || snakeContext:
		return ToSnake(target)
	case strings.Contains(matched, "-") || kebabContext:
		return ToKebab(target)
	case startsUpper(matched):
		return ToPascal(target)
	default:
		return ToCamel(target)
	}
}

// startsUpper mirrors "first char equals its upper-case form", so digits count as upper.
func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.ToUpper(r) == r
	}
	return false
}

// Variants returns the deduplicated casing and plurality variants of name, longest first.
func Variants(name string) []string {
	forms := []string{name, ToPascal(name), ToCamel(name), ToKebab(name), ToSnake(name)}
	seen := make(map[string]bool, len(forms)*3)
	out := make([]string, 0, len(forms)*3)
	for _, form := range forms {
		for _, v := range []string{form, Pluralize(form), Singularize(form)} {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len([]rune(out[i])) > len([]rune(out[j]))
	})
	return out
}

func compileVariants(originalName string) *regexp2.Regexp {
	if re, ok := patterns.Get(originalName); ok {
		return re
	}

	pluralGuard := !strings.HasSuffix(strings.ToLower(originalName), "s")
	variants := Variants(originalName)
	alternatives := make([]string, 0, len(variants))
	for _, v := range variants {
		escaped := regexp2.Escape(v)
		switch {
		case len([]rune(v)) < 4:
			alternatives = append(alternatives, `\b`+escaped+`\b`)
		case pluralGuard && strings.HasSuffix(strings.ToLower(v), "s"):
			alternatives = append(alternatives, escaped+`(?![a-zA-Z])`)
		default:
			alternatives = append(alternatives, escaped)
		}
	}

	// ECMAScript keeps \b ASCII-only, so "éid" still matches a short "id".
	re, err := regexp2.Compile(strings.Join(alternatives, "|"), regexp2.IgnoreCase|regexp2.ECMAScript)
	if err != nil {
		return nil
	}
	patterns.Add(originalName, re)
	return re
}
