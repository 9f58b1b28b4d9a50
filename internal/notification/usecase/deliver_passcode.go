package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpgate/internal/notification/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/seal"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultEmailSubject = "Your verification code"
	defaultMaxEventAge  = 5 * time.Minute
	defaultRetryBase    = 200 * time.Millisecond
	defaultRetryCap     = 5 * time.Second
	defaultRetries      = 3
)

type DeliverPasscodeInput struct {
	EventID    string `validate:"required"`
	Contact    string `validate:"required"`
	Channel    string `validate:"required,oneof=phone email"`
	SealedCode []byte `validate:"required"`
	IssuedAt   time.Time
}

type contactShape struct {
	Phone string `validate:"omitempty,phone"`
	Email string `validate:"omitempty,email"`
}

// DeliverPasscode sends the sealed passcode of a login event to its contact.
//
// Broken, stale and duplicate events are dropped with a nil error so the
// broker acks them. Only a delivery that still fails after retries returns an
// error, which releases the idempotency key for a redelivery.
func (s *Usecase) DeliverPasscode(ctx context.Context, in DeliverPasscodeInput) error {
	ctx, span := s.startSpan(ctx, "DeliverPasscode")
	defer span.End()

	ch := entity.ChannelFromContact(in.Channel)

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "invalid passcode event", "event_id", in.EventID, "error", err)
		s.record(ctx, ch, entity.DeliveryStatusDropped)
		return nil
	}

	shape := contactShape{Email: in.Contact}
	if ch == entity.ChannelSMS {
		shape = contactShape{Phone: in.Contact}
	}
	if err := s.validator.Validate(shape); err != nil {
		slog.ErrorContext(ctx, "passcode event contact does not match channel", "event_id", in.EventID, "channel", in.Channel, "error", err)
		s.record(ctx, ch, entity.DeliveryStatusDropped)
		return nil
	}

	maxAge := s.cfg.GetSecond("modules.notification.max_event_age_seconds")
	if maxAge <= 0 {
		maxAge = defaultMaxEventAge
	}
	if !in.IssuedAt.IsZero() && s.clock.Now().Sub(in.IssuedAt) > maxAge {
		slog.WarnContext(ctx, "passcode event is stale", "event_id", in.EventID, "issued_at", in.IssuedAt)
		s.record(ctx, ch, entity.DeliveryStatusDropped)
		return nil
	}

	err := s.idemp.Exec(ctx, "notification:passcode:"+in.EventID, func(ctx context.Context) error {
		return s.deliver(ctx, in, ch)
	}, idempotency.WithLockDuration(maxAge), idempotency.WithStateTTL(maxAge))

	switch {
	case errors.Is(err, idempotency.ErrAlreadyCompleted), errors.Is(err, idempotency.ErrAlreadyInProgress):
		slog.InfoContext(ctx, "passcode event already handled", "event_id", in.EventID, "error", err)
		s.record(ctx, ch, entity.DeliveryStatusDuplicate)
		return nil
	case err != nil:
		slog.ErrorContext(ctx, "failed to deliver passcode", "event_id", in.EventID, "contact", in.Contact, "error", err)
		s.record(ctx, ch, entity.DeliveryStatusFailed)
		return err
	}

	s.record(ctx, ch, entity.DeliveryStatusSent)
	return nil
}

// deliver returns nil for permanent failures so the event is marked handled.
func (s *Usecase) deliver(ctx context.Context, in DeliverPasscodeInput, ch entity.Channel) error {
	code, err := s.sealer.Open(in.SealedCode, seal.Scope{Subject: in.Contact, Purpose: seal.PurposePasscode})
	if err != nil {
		slog.ErrorContext(ctx, "failed to open sealed passcode", "event_id", in.EventID, "error", err)
		return nil
	}

	body, err := s.message.Render(string(code), in.Channel)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render passcode message", "event_id", in.EventID, "error", err)
		return nil
	}

	subject := s.cfg.GetString("modules.notification.email_subject")
	if subject == "" {
		subject = defaultEmailSubject
	}

	d := entity.Delivery{
		EventID: in.EventID,
		Contact: in.Contact,
		Channel: ch,
		Subject: subject,
		Body:    body,
	}

	send := s.repoMail.Send
	if ch == entity.ChannelSMS {
		send = s.repoSMS.Send
	}

	attempt := 0
	err = retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		attempt++
		err := send(ctx, d)
		if err == nil {
			return nil
		}
		if permanent(err) {
			slog.ErrorContext(ctx, "passcode delivery rejected", "event_id", in.EventID, "channel", ch.String(), "error", err)
			return nil
		}

		slog.WarnContext(ctx, "passcode delivery attempt failed", "event_id", in.EventID, "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})

	return err
}

func (s *Usecase) backoff() retry.Backoff {
	base := s.cfg.GetMillisecond("modules.notification.retry_base_millis")
	if base <= 0 {
		base = defaultRetryBase
	}

	maxWait := s.cfg.GetSecond("modules.notification.retry_max_seconds")
	if maxWait <= 0 {
		maxWait = defaultRetryCap
	}

	attempts := s.cfg.GetUint("modules.notification.retry_attempts")
	if attempts == 0 {
		attempts = defaultRetries
	}

	b := retry.NewFibonacci(base)
	b = retry.WithCappedDuration(maxWait, b)
	b = retry.WithMaxRetries(uint64(attempts), b)

	return b
}

func permanent(err error) bool {
	return errors.Is(err, mail.ErrHeaderInjection) || errors.Is(err, sms.ErrNoRecipient)
}

func (s *Usecase) record(ctx context.Context, ch entity.Channel, st entity.DeliveryStatus) {
	s.delivered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", ch.String()),
		attribute.String("status", st.String()),
	))
}
