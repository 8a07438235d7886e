package ctype

import "strings"

// SanitizeID drops every character of name that may not appear in a C
// identifier, keeping ASCII letters, digits and underscores in order.
// The result may be empty, may start with a digit and may collide with
// a keyword or another sanitized name; callers handle that.
func SanitizeID(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
			b.WriteByte(c)
		}
	}

	return b.String()
}
