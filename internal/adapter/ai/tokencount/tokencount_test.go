package tokencount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountTokens(t *testing.T) {
	t.Parallel()
	c := NewCounter()

	n, err := c.CountTokens("Hello, world", "gpt-4.1-mini")
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	empty, err := c.CountTokens("", "gpt-4.1-mini")
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestCountChatTokensIncludesFramingOverhead(t *testing.T) {
	t.Parallel()
	c := NewCounter()

	system := "You are a coach."
	user := "Evaluate this answer."

	chat, err := c.CountChatTokens(system, user, "gpt-4.1-mini")
	require.NoError(t, err)

	sysOnly, err := c.CountTokens(system, "gpt-4.1-mini")
	require.NoError(t, err)
	userOnly, err := c.CountTokens(user, "gpt-4.1-mini")
	require.NoError(t, err)

	assert.Greater(t, chat, sysOnly+userOnly)
}

func TestCalculateUsage(t *testing.T) {
	t.Parallel()
	usage, err := NewCounter().CalculateUsage("system", "user", "completion text", "gpt-4.1-mini", "chat")
	require.NoError(t, err)

	assert.Greater(t, usage.PromptTokens, 0)
	assert.Greater(t, usage.CompletionTokens, 0)
	assert.Equal(t, usage.PromptTokens+usage.CompletionTokens, usage.TotalTokens)
	assert.Equal(t, "gpt-4.1-mini", usage.Model)
	assert.Equal(t, "chat", usage.Provider)
}

func TestNormalizeModelName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "gpt-4", normalizeModelName("gpt-4.1-mini"))
	assert.Equal(t, "gpt-3.5-turbo", normalizeModelName("GPT-3.5-Turbo"))
	assert.Equal(t, "gpt-4", normalizeModelName("some-unknown-model"))
}
