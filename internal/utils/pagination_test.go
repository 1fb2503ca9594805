package utils

import (
	"math"
	"testing"
)

func TestAtoiDefault(t *testing.T) {
	cases := map[string]struct {
		in   string
		want int
	}{
		"empty":      {"", 1},
		"plain":      {"3", 3},
		"negative":   {"-2", -2},
		"leading 0":  {"007", 7},
		"not number": {"abc", 1},
		"spaces":     {" 2 ", 1},
		"overflow":   {"99999999999999999999", 1},
	}
	for name, tc := range cases {
		if got := AtoiDefault(tc.in, 1); got != tc.want {
			t.Fatalf("%s: AtoiDefault(%q) = %d; want %d", name, tc.in, got, tc.want)
		}
	}
}

func TestPaginate_BlogPages(t *testing.T) {
	cases := []struct {
		name               string
		page, size         int
		total              int64
		number, offset, tp int
	}{
		{"first page", 1, 12, 25, 1, 0, 3},
		{"middle page", 2, 12, 25, 2, 12, 3},
		{"last partial page", 3, 12, 25, 3, 24, 3},
		{"past the end clamps", 99, 12, 25, 3, 24, 3},
		{"huge page clamps without overflow", math.MaxInt, 12, 25, 3, 24, 3},
		{"zero page", 0, 12, 25, 1, 0, 3},
		{"negative page", -5, 12, 25, 1, 0, 3},
		{"exact multiple", 2, 12, 24, 2, 12, 2},
		{"empty listing", 4, 12, 0, 1, 0, 0},
		{"default size", 2, 0, 30, 2, 12, 3},
	}
	for _, tc := range cases {
		p := Paginate(tc.page, tc.size, tc.total, 12)
		if p.Number != tc.number || p.Offset != tc.offset || p.TotalPages != tc.tp || p.Size != 12 {
			t.Fatalf("%s: got %+v; want number=%d offset=%d pages=%d", tc.name, p, tc.number, tc.offset, tc.tp)
		}
	}
}
