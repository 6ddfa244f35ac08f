// Package classifier decides which object properties hold credentials.
package classifier

import "strings"

// markers are matched as case-insensitive substrings of a property key.
// The list is deliberately broad: a false positive such as
// "userInterfaceTheme" only costs a harmless rewrite.
var markers = []string{"login", "user", "email", "password"}

// IsSensitive reports whether key looks like it names a credential.
func IsSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Markers returns the substrings IsSensitive looks for.
func Markers() []string {
	out := make([]string, len(markers))
	copy(out, markers)
	return out
}
