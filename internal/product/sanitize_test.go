package product

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean name", "Organic Whole Milk", "Organic Whole Milk"},
		{"strips angle brackets", `<b>Milk</b>`, "bMilk/b"},
		{"strips quotes and ampersand", `Mac & "Cheese"`, "Mac  Cheese"},
		{"trims whitespace", "  Butter  ", "Butter"},
		{"empty", "", "Unknown Product"},
		{"whitespace only", "   ", "Unknown Product"},
		{"only stripped chars", `<>"'&`, "Unknown Product"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeNameCapsLength(t *testing.T) {
	long := strings.Repeat("a", 250)
	got := SanitizeName(long)
	if len(got) > 100 {
		t.Errorf("len = %d, want <= 100", len(got))
	}
}

func TestSanitizeNameCapsRunesNotBytes(t *testing.T) {
	// 120 two-byte runes; the cap counts characters, not bytes.
	long := strings.Repeat("é", 120)
	got := SanitizeName(long)
	if n := utf8.RuneCountInString(got); n != 100 {
		t.Errorf("rune count = %d, want 100", n)
	}
}
