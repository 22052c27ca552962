package models

import (
	"strconv"
	"strings"
)

// ─── shared formatting helpers (package-private) ────────────────────────

// ljust pads s with spaces to width; longer strings are left intact.
func ljust(s string, width int) string {
	if n := len(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// sci formats v in scientific notation with prec fractional digits and a
// two-digit minimum exponent, e.g. 1.23456789e-03.
func sci(v float64, prec int) string {
	return strconv.FormatFloat(v, 'e', prec, 64)
}
