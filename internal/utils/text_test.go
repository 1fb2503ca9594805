package utils

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		s    string
		max  int
		want string
	}{
		{"", 5, ""},
		{"abc", 5, "abc"},
		{"abcdef", 3, "abc"},
		{"abc", 0, ""},
		// multi-byte runes are never split
		{"وام ازدواج", 3, "وام"},
	}
	for _, tc := range cases {
		if got := TruncateRunes(tc.s, tc.max); got != tc.want {
			t.Fatalf("TruncateRunes(%q, %d) = %q; want %q", tc.s, tc.max, got, tc.want)
		}
	}

	long := strings.Repeat("ب", 600)
	got := TruncateRunes(long, 500)
	if n := utf8.RuneCountInString(got); n != 500 || !utf8.ValidString(got) {
		t.Fatalf("expected 500 valid runes, got %d (valid=%v)", n, utf8.ValidString(got))
	}
}

func TestNormalizeText_FoldsArabicLetters(t *testing.T) {
	// "بانك ملي" typed with Arabic kaf and yeh
	in := "  بانك ملي  "
	want := "بانک ملی"
	if got := NormalizeText(in); got != want {
		t.Fatalf("NormalizeText = %q; want %q", got, want)
	}
	if got := NormalizeText("مـلی"); got != "ملی" {
		t.Fatalf("expected tatweel stripped, got %q", got)
	}
}

func TestParseIDList(t *testing.T) {
	cases := []struct {
		in   string
		want []uint
	}{
		{"", nil},
		{"   ", nil},
		{"1,2,3", []uint{1, 2, 3}},
		{" 3, x,7,3", []uint{3, 7}},
		{"0,-1,5", []uint{5}},
	}
	for _, tc := range cases {
		got := ParseIDList(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseIDList(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Bank Melli", "bank-melli"},
		{"  وام ازدواج  ", "وام-ازدواج"},
		{"قرض\u200cالحسنه مهر", "قرض-الحسنه-مهر"},
		{"already-a-slug", "already-a-slug"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}
