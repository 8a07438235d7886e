package ctype

import (
	"regexp"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"!@£$%^&*()_+", "_"},
		{"filename.h", "filenameh"},
		{"my-lib 2.0", "mylib20"},
		{"ünïcödé", "ncd"},
		{"already_valid_ID9", "already_valid_ID9"},
		{"9lives", "9lives"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeID(tt.in), "SanitizeID(%q)", tt.in)
	}
}

func TestSanitizeIDNotUnique(t *testing.T) {
	// Distinct inputs can collapse to the same identifier; keeping the
	// results apart is up to the caller.
	assert.Equal(t, SanitizeID("a.b"), SanitizeID("a-b"))
	assert.Equal(t, "", SanitizeID("..."))
}

func TestSanitizeIDProperties(t *testing.T) {
	valid := regexp.MustCompile(`^[A-Za-z0-9_]*$`)

	idempotent := func(s string) bool {
		once := SanitizeID(s)
		return SanitizeID(once) == once && valid.MatchString(once)
	}

	assert.NoError(t, quick.Check(idempotent, nil))
}
