package mail

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTP(t *testing.T) {
	_, err := NewSMTP(SMTPConfig{Host: "localhost"})
	assert.ErrorIs(t, err, ErrSMTPHostPortRequired)

	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 1025})
	require.NoError(t, err)
	assert.Equal(t, "localhost:1025", s.addr)
	assert.NoError(t, s.Close())
}

func TestSMTP_SendValidation(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 1025})
	require.NoError(t, err)

	t.Run("no recipients", func(t *testing.T) {
		assert.ErrorIs(t, s.Send(context.Background(), Message{From: "a@b.co"}), ErrSMTPNoRecipients)
	})

	t.Run("no sender", func(t *testing.T) {
		assert.ErrorIs(t, s.Send(context.Background(), Message{To: []string{"a@b.co"}}), ErrSMTPNoSender)
	})

	t.Run("header injection", func(t *testing.T) {
		err := s.Send(context.Background(), Message{From: "a@b.co", To: []string{"x@y.co\r\nBcc: evil@z.co"}})
		assert.ErrorIs(t, err, ErrHeaderInjection)
	})
}

func TestBuildMessage(t *testing.T) {
	t.Run("plain text", func(t *testing.T) {
		// Act
		raw, err := buildMessage("no-reply@otpgate.dev", Message{
			To:       []string{"user@example.com"},
			Subject:  "Your verification code",
			TextBody: "Your verification code is: AB3F9K",
		})

		// Assert
		require.NoError(t, err)
		s := string(raw)
		assert.Contains(t, s, "From: no-reply@otpgate.dev\r\n")
		assert.Contains(t, s, "To: user@example.com\r\n")
		assert.Contains(t, s, "Subject: Your verification code\r\n")
		assert.Contains(t, s, "Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		assert.True(t, strings.HasSuffix(s, "Your verification code is: AB3F9K"))
	})

	t.Run("multipart", func(t *testing.T) {
		raw, err := buildMessage("a@b.co", Message{To: []string{"c@d.co"}, TextBody: "t", HTMLBody: "<b>h</b>"})

		require.NoError(t, err)
		assert.Contains(t, string(raw), "multipart/alternative; boundary=otpgate-")
		assert.Contains(t, string(raw), "<b>h</b>")
	})
}
