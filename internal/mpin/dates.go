package mpin

import "strings"

// DatePatterns returns every numeric string derivable from a YYYY-MM-DD date:
//
//	ddmm mmdd ddyy yydd mmyy yymm yyyy ddmmyy mmddyy yymmdd ddmmyyyy mmddyyyy
//
// where yy is the last two characters of the year. Empty or malformed input
// yields nil; a bad date only disables the matching demographic check.
func DatePatterns(date string) []string {
	if date == "" {
		return nil
	}
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return nil
	}
	for _, p := range parts {
		if !isDigits(p) {
			return nil
		}
	}

	y, m, d := parts[0], parts[1], parts[2]
	sy := y
	if len(y) >= 2 {
		sy = y[len(y)-2:]
	}

	return []string{
		d + m, m + d,
		d + sy, sy + d,
		m + sy, sy + m,
		y,
		d + m + sy, m + d + sy, sy + m + d,
		d + m + y, m + d + y,
	}
}

// isDigits reports whether s is non-empty and all ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
