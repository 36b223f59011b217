// Package utils holds the small generic helpers the other packages share.
//
// Slices:
//   - Map, Filter: generic slice processing.
//
// Strings:
//   - FirstNonEmpty: picks the first set value out of aliased fields.
//   - SplitFields: splits a comma separated list, trimming and dropping blanks.
//   - Truncate: shortens a value for tabular output.
package utils

import (
	"strings"
	"unicode/utf8"
)

/* some Functional Programming in Go */
// map
type mapFunc[E any, R any] func(E) R

// Map applies f to every element of s.
func Map[S ~[]E, E any, R any](s S, f mapFunc[E, R]) []R {
	result := make([]R, len(s))
	for i, e := range s {
		result[i] = f(e)
	}

	return result
}

// filter
type keepFunc[E any] func(E) bool

// Filter keeps the elements of s for which f is true. The result is never nil.
func Filter[S ~[]E, E any](s S, f keepFunc[E]) S {
	result := S{}
	for _, v := range s {
		if f(v) {
			result = append(result, v)
		}
	}

	return result
}

/* generic helpers*/

// FirstNonEmpty returns the first value that is not the empty string.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

// SplitFields splits a comma separated list. "a, b,,c " gives [a b c].
func SplitFields(input string) []string {
	fields := []string{}
	for _, f := range strings.Split(input, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}

	return fields
}

// Truncate cuts s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}

	return string([]rune(s)[:n-3]) + "..."
}
