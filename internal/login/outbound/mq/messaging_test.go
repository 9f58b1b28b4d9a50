package mq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/login/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/seal"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

type brokerMock struct {
	mock.Mock
}

func (m *brokerMock) Close() error { return nil }

func (m *brokerMock) Ping(context.Context) error { return nil }

func (m *brokerMock) Consume(context.Context, string, messaging.Handler, ...messaging.ConsumeOption) error {
	return messaging.ErrUnsupported
}

func (m *brokerMock) Publish(ctx context.Context, destination string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	args := m.Called(ctx, destination, msg)
	return args.Get(0).(messaging.PublishResult), args.Error(1)
}

func TestMessaging_Send(t *testing.T) {
	sealer := seal.NewAESGCM(seal.StaticKeyProvider{KeyBytes: bytes.Repeat([]byte{7}, 32)})
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("publishes sealed passcode with correlation id", func(t *testing.T) {
		// Arrange
		broker := new(brokerMock)
		var published messaging.OutgoingMessage
		broker.On("Publish", mock.Anything, event.PasscodeRequestedDestination, mock.Anything).
			Run(func(args mock.Arguments) { published = args.Get(2).(messaging.OutgoingMessage) }).
			Return(messaging.PublishResult{}, nil).Once()
		m := NewMessaging(broker, sealer, uid.Static("evt-1"), clock.NewFixed(now), instrument.NewNoop())
		ctx := instrument.SetCorrelationID(context.Background(), "cid-9")

		// Act
		err := m.Send(ctx, entity.Notice{Contact: "a@b.co", Channel: entity.ChannelEmail, Code: "AB3F9K", Message: "Your verification code is: AB3F9K"})

		// Assert
		require.NoError(t, err)
		broker.AssertExpectations(t)
		assert.Equal(t, []messaging.Header{{Key: "cID", Value: []byte("cid-9")}}, published.Headers)
		assert.NotContains(t, string(published.Body), "AB3F9K")

		var msg event.PasscodeRequestedMessage
		require.NoError(t, json.Unmarshal(published.Body, &msg))
		assert.Equal(t, "evt-1", msg.EventID)
		assert.Equal(t, "a@b.co", msg.Contact)
		assert.Equal(t, "email", msg.Channel)
		assert.True(t, now.Equal(msg.IssuedAt))

		code, err := sealer.Open(msg.SealedCode, seal.Scope{Subject: "a@b.co", Purpose: seal.PurposePasscode})
		require.NoError(t, err)
		assert.Equal(t, "AB3F9K", string(code))

		_, err = sealer.Open(msg.SealedCode, seal.Scope{Subject: "x@b.co", Purpose: seal.PurposePasscode})
		assert.ErrorIs(t, err, seal.ErrOpenFailed)
	})

	t.Run("trace context travels in headers", func(t *testing.T) {
		broker := new(brokerMock)
		var published messaging.OutgoingMessage
		broker.On("Publish", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { published = args.Get(2).(messaging.OutgoingMessage) }).
			Return(messaging.PublishResult{}, nil).Once()
		m := NewMessaging(broker, sealer, uid.Static("evt-4"), clock.NewFixed(now), instrument.NewNoop())
		ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    trace.TraceID{0x01},
			SpanID:     trace.SpanID{0x02},
			TraceFlags: trace.FlagsSampled,
		}))

		require.NoError(t, m.Send(ctx, entity.Notice{Contact: "a@b.co", Channel: entity.ChannelEmail, Code: "AB3F9K"}))

		keys := make([]string, 0, len(published.Headers))
		for _, h := range published.Headers {
			keys = append(keys, h.Key)
		}
		assert.Contains(t, keys, "traceparent")
	})

	t.Run("broker failure", func(t *testing.T) {
		broker := new(brokerMock)
		boom := errors.New("nats: connection closed")
		broker.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(messaging.PublishResult{}, boom)
		m := NewMessaging(broker, sealer, uid.Static("evt-2"), clock.NewFixed(now), instrument.NewNoop())

		err := m.Send(context.Background(), entity.Notice{Contact: "+15551234567", Channel: entity.ChannelPhone, Code: "ZZZZZZ"})

		assert.ErrorIs(t, err, boom)
	})

	t.Run("seal failure never publishes", func(t *testing.T) {
		broker := new(brokerMock)
		m := NewMessaging(broker, seal.NewAESGCM(seal.StaticKeyProvider{}), uid.Static("evt-3"), clock.NewFixed(now), instrument.NewNoop())

		err := m.Send(context.Background(), entity.Notice{Contact: "a@b.co", Channel: entity.ChannelEmail, Code: "ZZZZZZ"})

		assert.ErrorIs(t, err, seal.ErrMissingStaticKey)
		broker.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})
}
