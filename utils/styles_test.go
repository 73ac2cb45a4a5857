package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", TruncateString("hello", 10))
	assert.Equal(t, "hello w...", TruncateString("hello world!", 10))
	assert.Equal(t, "..", TruncateString("hello", 2))
	assert.Equal(t, "äöü...", TruncateString("äöüäöüäöü", 6))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "ab", SanitizeString("a\x00\nb\x7f"))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "abcdef", PadRight("abcdef", 3))
}
