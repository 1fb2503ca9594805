// Package utils holds small helpers shared by the handlers and services:
// query parsing, page windows and Persian text normalization.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 int, returning def when s is empty or
// not a valid integer. Surrounding spaces are not trimmed.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Page is a resolved window over a listing of Total rows.
type Page struct {
	Number     int // 1-based, within [1, TotalPages] when TotalPages > 0
	Size       int
	Offset     int
	TotalPages int
}

// Paginate resolves the requested page against total rows. Size falls back
// to defSize when not positive. Page numbers below 1 become 1 and numbers past
// the last page become the last page, so Offset never exceeds total.
func Paginate(page, size int, total int64, defSize int) Page {
	if size <= 0 {
		size = defSize
	}
	if size <= 0 {
		size = 1
	}
	if total < 0 {
		total = 0
	}
	p := Page{Size: size, TotalPages: int((total + int64(size) - 1) / int64(size))}
	switch {
	case page < 1:
		page = 1
	case p.TotalPages > 0 && page > p.TotalPages:
		page = p.TotalPages
	case p.TotalPages == 0:
		page = 1
	}
	p.Number = page
	p.Offset = (page - 1) * size
	return p
}
