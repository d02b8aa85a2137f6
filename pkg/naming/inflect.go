package naming

import "strings"

// Singularize strips a plural suffix from name.
//
//	...ies            -> ...y
//	...{s,x,z,ch,sh}es -> strip "es"
//	...s (not ...ss)  -> strip "s"
//
// Suffix checks are case-sensitive.
func Singularize(name string) string {
	if strings.HasSuffix(name, "ies") {
		return name[:len(name)-3] + "y"
	}
	if strings.HasSuffix(name, "es") {
		base := name[:len(name)-2]
		if hasSibilantSuffix(base) {
			return base
		}
	}
	if strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss") {
		return name[:len(name)-1]
	}
	return name
}

// Pluralize appends the plural suffix for name.
func Pluralize(name string) string {
	if strings.HasSuffix(name, "y") && !vowelBeforeY(name) {
		return name[:len(name)-1] + "ies"
	}
	if hasSibilantSuffix(name) {
		return name + "es"
	}
	return name + "s"
}

// IsSingular reports whether Singularize leaves name unchanged.
func IsSingular(name string) bool {
	return name == Singularize(name)
}

func hasSibilantSuffix(s string) bool {
	for _, suffix := range []string{"s", "x", "z", "ch", "sh"} {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func vowelBeforeY(s string) bool {
	if len(s) < 2 {
		return false
	}
	switch s[len(s)-2] {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}
