// Package scanfilter decides whether a collected resource is inside the
// caller-supplied resource scope.
package scanfilter

import "path"

// IsIncluded reports whether candidateARN matches an entry in the filter set.
// Entries may use shell-style wildcards; anything else must match exactly.
// Callers with an empty filter keep every resource and should not call this.
func IsIncluded(candidateARN string, filterARNs []string) bool {
	for _, f := range filterARNs {
		if f == candidateARN {
			return true
		}
		if matched, err := path.Match(f, candidateARN); err == nil && matched {
			return true
		}
	}
	return false
}
