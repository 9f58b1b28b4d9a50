package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/notification/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

// withHeaders restores the correlation id and the publisher's trace context.
func (h *MQHandler) withHeaders(ctx context.Context, headers []messaging.Header) context.Context {
	cID := ""
	carrier := make(map[string]string, len(headers))
	for _, hd := range headers {
		if hd.Key == keyOfCorrelationID {
			cID = string(hd.Value)
			continue
		}
		carrier[hd.Key] = string(hd.Value)
	}
	if cID == "" {
		cID = h.uuid.Generate()
	}

	return instrument.ExtractTrace(instrument.SetCorrelationID(ctx, cID), carrier)
}

// PasscodeRequestedNotification never logs the body; it carries the sealed code.
func (h *MQHandler) PasscodeRequestedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.withHeaders(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "PasscodeRequestedNotification")
	defer span.End()

	var payload event.PasscodeRequestedMessage
	if err := json.Unmarshal(msg.Body(), &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of passcode requested notification", "subject", msg.Subject(), "error", err)
		return nil
	}

	slog.InfoContext(ctx, "consume: passcode requested notification", "event_id", payload.EventID, "channel", payload.Channel)

	if err := h.uc.DeliverPasscode(ctx, usecase.DeliverPasscodeInput{
		EventID:    payload.EventID,
		Contact:    payload.Contact,
		Channel:    payload.Channel,
		SealedCode: payload.SealedCode,
		IssuedAt:   payload.IssuedAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume passcode requested", "event_id", payload.EventID, "error", err)
		return err
	}

	return nil
}
