// Package strings normalizes free-form labels coming off the wire.
package strings

import (
	"strings"
)

// Labels trims each value, drops blanks and removes case-insensitive
// duplicates, keeping the first spelling seen. The result is never nil.
//
//	Labels([]string{" Home ", "home", "", "Garden"})
//	// []string{"Home", "Garden"}
func Labels(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// FirstNonBlank returns the first value that is not blank after trimming, or
// fallback.
func FirstNonBlank(fallback string, values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return fallback
}
