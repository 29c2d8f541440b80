// Package ids generates request identifiers.
package ids

import (
	"github.com/oklog/ulid/v2"
)

// New returns a lexicographically sortable ULID string. ulid.Make uses a
// process-wide monotonic entropy source and is safe for concurrent use.
func New() string {
	return ulid.Make().String()
}

// Valid reports whether s is acceptable as a caller-supplied request id:
// 1..64 characters drawn from [A-Za-z0-9._-].
func Valid(s string) bool {
	if len(s) == 0 || len(s) > 64 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
		default:
			return false
		}
	}
	return true
}
