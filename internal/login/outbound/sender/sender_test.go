package sender

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/login/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mailMock struct{ mock.Mock }

func (m *mailMock) Close() error { return nil }

func (m *mailMock) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type smsMock struct{ mock.Mock }

func (m *smsMock) Send(ctx context.Context, phone, message string) error {
	return m.Called(ctx, phone, message).Error(0)
}

func TestSender_Send(t *testing.T) {
	t.Run("email", func(t *testing.T) {
		// Arrange
		ml, sm := new(mailMock), new(smsMock)
		ml.On("Send", mock.Anything, mail.Message{
			To:       []string{"a@b.co"},
			Subject:  "Your login code",
			TextBody: "Your verification code is: AB3F9K",
		}).Return(nil).Once()
		s := NewSender(ml, sm, "Your login code", instrument.NewNoop())

		// Act
		err := s.Send(context.Background(), entity.Notice{
			Contact: "a@b.co", Channel: entity.ChannelEmail, Code: "AB3F9K", Message: "Your verification code is: AB3F9K",
		})

		// Assert
		assert.NoError(t, err)
		ml.AssertExpectations(t)
		sm.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("phone", func(t *testing.T) {
		ml, sm := new(mailMock), new(smsMock)
		boom := errors.New("sns: throttled")
		sm.On("Send", mock.Anything, "+15551234567", "Your verification code is: AB3F9K").Return(boom).Once()
		s := NewSender(ml, sm, "", instrument.NewNoop())

		err := s.Send(context.Background(), entity.Notice{
			Contact: "+15551234567", Channel: entity.ChannelPhone, Message: "Your verification code is: AB3F9K",
		})

		assert.ErrorIs(t, err, boom)
		sm.AssertExpectations(t)
	})

	t.Run("unknown channel", func(t *testing.T) {
		s := NewSender(new(mailMock), new(smsMock), "", instrument.NewNoop())

		err := s.Send(context.Background(), entity.Notice{Contact: "x"})

		assert.Error(t, err)
	})
}
