package passcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Render(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		m, err := NewMessage("  ")
		require.NoError(t, err)

		got, err := m.Render("AB3F9K", "phone")

		require.NoError(t, err)
		assert.Equal(t, "Your verification code is: AB3F9K", got)
	})

	t.Run("custom", func(t *testing.T) {
		m, err := NewMessage("{{.Code}} is your {{.Channel}} code")
		require.NoError(t, err)

		got, err := m.Render("ZZ22ZZ", "email")

		require.NoError(t, err)
		assert.Equal(t, "ZZ22ZZ is your email code", got)
	})

	t.Run("broken template", func(t *testing.T) {
		_, err := NewMessage("{{.Code")

		assert.Error(t, err)
	})

	t.Run("unknown field", func(t *testing.T) {
		m, err := NewMessage("{{.Token}}")
		require.NoError(t, err)

		_, err = m.Render("AB3F9K", "phone")

		assert.Error(t, err)
	})
}
