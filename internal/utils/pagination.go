// Package utils holds small helpers shared across layers. Nothing in here
// may depend on domain types or transport concerns.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 int, falling back to def when s is empty
// or malformed. Used for optional numeric query parameters (page, page_size,
// top_n) where a bad value should degrade to the default rather than fail
// the request.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
