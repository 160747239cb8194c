package product

import "strings"

const maxNameRunes = 100

// SanitizeName strips markup-significant characters from a provider-supplied
// product name and caps it at 100 characters (runes, so accented names keep
// their full length). Empty input becomes "Unknown Product".
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Unknown Product"
	}

	var b strings.Builder
	runes := 0
	for _, r := range name {
		switch r {
		case '<', '>', '"', '\'', '&':
			continue
		}
		b.WriteRune(r)
		runes++
		if runes == maxNameRunes {
			break
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "Unknown Product"
	}
	return out
}
