package textx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeText("  hello\x00 world \x07 "))
	assert.Equal(t, "a\tb\nc", SanitizeText("a\tb\nc"))
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpaces("  a \n b\t\tc "))
	assert.Equal(t, "", CollapseSpaces("   "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "héllo", Truncate("héllo world", 5))
	assert.Equal(t, "abc", Truncate("abc", -1))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 3, WordCount("one two  three"))
}
