package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/notification/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

type ucFake struct {
	mu      sync.Mutex
	err     error
	got     []usecase.DeliverPasscodeInput
	cIDs    []string
	traceID string
}

func (f *ucFake) DeliverPasscode(ctx context.Context, in usecase.DeliverPasscodeInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.got = append(f.got, in)
	f.cIDs = append(f.cIDs, instrument.GetCorrelationID(ctx))
	f.traceID = trace.SpanContextFromContext(ctx).TraceID().String()
	return f.err
}

func (f *ucFake) calls() ([]usecase.DeliverPasscodeInput, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]usecase.DeliverPasscodeInput(nil), f.got...), append([]string(nil), f.cIDs...)
}

type fakeMessage struct {
	body    []byte
	headers []messaging.Header
}

func (m fakeMessage) Body() []byte                { return m.body }
func (m fakeMessage) Headers() []messaging.Header { return m.headers }
func (m fakeMessage) Header(string) string        { return "" }
func (m fakeMessage) Subject() string             { return event.PasscodeRequestedDestination }
func (m fakeMessage) Timestamp() time.Time        { return time.Time{} }
func (m fakeMessage) Ack(context.Context) error   { return nil }
func (m fakeMessage) Nack(context.Context) error  { return nil }

func passcodeBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(event.PasscodeRequestedMessage{
		EventID:    "evt-1",
		Contact:    "a@b.co",
		Channel:    "email",
		SealedCode: []byte{0x00, 0x01, 0xff},
		IssuedAt:   time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return body
}

func TestMQHandler_PasscodeRequestedNotification(t *testing.T) {
	t.Run("payload and correlation id reach the usecase", func(t *testing.T) {
		// Arrange
		fake := &ucFake{}
		h := &MQHandler{uc: fake, uuid: uid.Static("generated"), ins: instrument.NewNoop()}
		msg := fakeMessage{
			body:    passcodeBody(t),
			headers: []messaging.Header{{Key: "cID", Value: []byte("cid-1")}},
		}

		// Act
		err := h.PasscodeRequestedNotification(context.Background(), msg)

		// Assert
		require.NoError(t, err)
		got, cIDs := fake.calls()
		require.Len(t, got, 1)
		assert.Equal(t, "evt-1", got[0].EventID)
		assert.Equal(t, "a@b.co", got[0].Contact)
		assert.Equal(t, "email", got[0].Channel)
		assert.Equal(t, []byte{0x00, 0x01, 0xff}, got[0].SealedCode)
		assert.Equal(t, []string{"cid-1"}, cIDs)
	})

	t.Run("missing correlation id is generated", func(t *testing.T) {
		fake := &ucFake{}
		h := &MQHandler{uc: fake, uuid: uid.Static("generated"), ins: instrument.NewNoop()}

		require.NoError(t, h.PasscodeRequestedNotification(context.Background(), fakeMessage{body: passcodeBody(t)}))

		_, cIDs := fake.calls()
		assert.Equal(t, []string{"generated"}, cIDs)
	})

	t.Run("publisher trace becomes the parent span", func(t *testing.T) {
		fake := &ucFake{}
		h := &MQHandler{uc: fake, uuid: uid.Static("generated"), ins: instrument.NewNoop()}
		msg := fakeMessage{
			body: passcodeBody(t),
			headers: []messaging.Header{
				{Key: "cID", Value: []byte("cid-2")},
				{Key: "traceparent", Value: []byte("00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")},
			},
		}

		require.NoError(t, h.PasscodeRequestedNotification(context.Background(), msg))

		assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", fake.traceID)
	})

	t.Run("broken json is acked without calling the usecase", func(t *testing.T) {
		fake := &ucFake{}
		h := &MQHandler{uc: fake, uuid: uid.Static("generated"), ins: instrument.NewNoop()}

		err := h.PasscodeRequestedNotification(context.Background(), fakeMessage{body: []byte("{")})

		assert.NoError(t, err)
		got, _ := fake.calls()
		assert.Empty(t, got)
	})

	t.Run("usecase error is returned", func(t *testing.T) {
		fake := &ucFake{err: errors.New("smtp down")}
		h := &MQHandler{uc: fake, uuid: uid.Static("generated"), ins: instrument.NewNoop()}

		err := h.PasscodeRequestedNotification(context.Background(), fakeMessage{body: passcodeBody(t)})

		assert.EqualError(t, err, "smtp down")
	})
}

func TestRegisterMQConsumer(t *testing.T) {
	t.Run("enabled consumer receives published events", func(t *testing.T) {
		// Arrange
		cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  notification:\n    consumer_names: passcode_requested_notification\n"))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		broker := messaging.NewMemory()
		routine := goroutine.NewManager(4)
		fake := &ucFake{}

		// Act
		RegisterMQConsumer(ctx, cfg, routine, broker, uid.Static("generated"), fake, instrument.NewNoop())

		// Assert
		require.Eventually(t, func() bool {
			_, _ = broker.Publish(ctx, event.PasscodeRequestedDestination, messaging.OutgoingMessage{Body: passcodeBody(t)})
			got, _ := fake.calls()
			return len(got) > 0
		}, 2*time.Second, 10*time.Millisecond)

		cancel()
		assert.ErrorIs(t, routine.Wait(), context.Canceled)
	})

	t.Run("consumer not listed is not started", func(t *testing.T) {
		cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  notification:\n    consumer_names: something_else\n"))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		broker := messaging.NewMemory()
		routine := goroutine.NewManager(4)
		fake := &ucFake{}

		RegisterMQConsumer(ctx, cfg, routine, broker, uid.Static("generated"), fake, instrument.NewNoop())
		_, err = broker.Publish(ctx, event.PasscodeRequestedDestination, messaging.OutgoingMessage{Body: passcodeBody(t)})

		require.NoError(t, err)
		cancel()
		assert.NoError(t, routine.Wait())
		got, _ := fake.calls()
		assert.Empty(t, got)
	})
}
