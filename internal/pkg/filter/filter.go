// Package filter implements the list filters of the entity screens: a
// case-insensitive substring search over a few text fields plus equality
// filters on enum columns.
package filter

import "strings"

// All is the enum filter value that matches every row.
const All = "all"

// Matches reports whether q occurs in any of fields, ignoring case.
// An empty q matches everything.
func Matches(q string, fields ...string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Equals reports whether value passes the enum filter want.
func Equals[T ~string](want string, value T) bool {
	want = strings.TrimSpace(want)
	return want == "" || want == All || want == string(value)
}

// Apply keeps the rows for which keep returns true.
func Apply[T any](rows []T, keep func(*T) bool) []T {
	out := make([]T, 0, len(rows))
	for i := range rows {
		if keep(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}
