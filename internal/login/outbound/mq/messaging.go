package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/otpgate/internal/login/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/seal"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

// Messaging hands passcodes to the notification module through the broker.
// The rendered message is not published; the code travels sealed.
type Messaging struct {
	client messaging.Messaging
	sealer seal.Sealer
	uuid   uid.StringID
	clock  clock.Clocker
	ins    instrument.Instrumentation
}

func NewMessaging(
	client messaging.Messaging,
	sealer seal.Sealer,
	uuid uid.StringID,
	clk clock.Clocker,
	ins instrument.Instrumentation,
) *Messaging {
	return &Messaging{client: client, sealer: sealer, uuid: uuid, clock: clk, ins: ins}
}

func (m *Messaging) Send(ctx context.Context, n entity.Notice) (err error) {
	ctx, span := m.ins.Tracer("login.outbound.mq").Start(ctx, "PublishPasscodeRequested")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	sealed, err := m.sealer.Seal([]byte(n.Code), seal.Scope{Subject: n.Contact, Purpose: seal.PurposePasscode})
	if err != nil {
		return err
	}

	body, err := json.Marshal(event.PasscodeRequestedMessage{
		EventID:    m.uuid.Generate(),
		Contact:    n.Contact,
		Channel:    n.Channel.String(),
		SealedCode: sealed,
		IssuedAt:   m.clock.Now(),
	})
	if err != nil {
		return err
	}

	headers := []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(instrument.GetCorrelationID(ctx))}}
	for k, v := range instrument.InjectTrace(ctx) {
		headers = append(headers, messaging.Header{Key: k, Value: []byte(v)})
	}

	_, err = m.client.Publish(ctx, event.PasscodeRequestedDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: headers,
	})
	return err
}
