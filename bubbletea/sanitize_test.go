package bubbletea_test

import (
	"testing"

	bt "github.com/fwojciec/concierge/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	t.Run("plain text is unchanged", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, `{"name":"Samosa","price":120}`, bt.Sanitize(`{"name":"Samosa","price":120}`))
	})

	t.Run("strips color codes", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Samosa", bt.Sanitize("\x1b[31mSamosa\x1b[0m"))
	})

	t.Run("strips operating system commands", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "ok", bt.Sanitize("\x1b]0;title\x07ok"))
	})

	t.Run("keeps tabs and newlines", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "a\tb\nc", bt.Sanitize("a\tb\nc"))
	})

	t.Run("drops control characters", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "abc", bt.Sanitize("a\x01b\x02c\x07"))
	})

	t.Run("normalizes CRLF", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "a\nb\n", bt.Sanitize("a\r\nb\r\n"))
	})

	t.Run("carriage return overwrites", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "loading done", bt.Sanitize("loading 50%\rloading done"))
		assert.Equal(t, "xycdef", bt.Sanitize("abcdef\rxy"))
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", bt.Sanitize(""))
	})
}
