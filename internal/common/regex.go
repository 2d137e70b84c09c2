package common

import (
	"regexp"
	"strings"
)

// CompileInsensitive compiles pattern as a case-insensitive regular expression.
// Patterns that already carry a flag group are left alone.
func CompileInsensitive(pattern string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(pattern, "(?") {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}
