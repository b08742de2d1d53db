package agent_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/concierge/agent"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	t.Run("returns short input unchanged", func(t *testing.T) {
		t.Parallel()
		r := agent.Truncate(`[{"name":"Samosa"}]`, 1024)
		assert.Equal(t, `[{"name":"Samosa"}]`, r.Content)
		assert.False(t, r.Truncated)
		assert.Empty(t, r.Notice())
	})

	t.Run("keeps the head", func(t *testing.T) {
		t.Parallel()
		r := agent.Truncate(strings.Repeat("a", 50)+strings.Repeat("b", 50), 60)
		assert.True(t, r.Truncated)
		assert.Equal(t, 100, r.TotalBytes)
		assert.Equal(t, 60, r.OutputBytes)
		assert.Equal(t, strings.Repeat("a", 50)+strings.Repeat("b", 10), r.Content)
		assert.Contains(t, r.Notice(), "60 of 100 bytes")
	})

	t.Run("never splits a rune", func(t *testing.T) {
		t.Parallel()
		r := agent.Truncate("₹₹₹", 4) // 3 bytes per rune
		assert.Equal(t, "₹", r.Content)
		assert.Equal(t, 3, r.OutputBytes)
	})

	t.Run("zero budget disables truncation", func(t *testing.T) {
		t.Parallel()
		r := agent.Truncate("abc", 0)
		assert.False(t, r.Truncated)
		assert.Equal(t, "abc", r.Content)
	})

	t.Run("handles empty input", func(t *testing.T) {
		t.Parallel()
		r := agent.Truncate("", 10)
		assert.Equal(t, "", r.Content)
		assert.False(t, r.Truncated)
	})
}
