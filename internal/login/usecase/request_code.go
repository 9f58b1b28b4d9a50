package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/login/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type RequestCodeInput struct {
	Contact string
	Channel entity.Channel
}

// RequestCode issues a new passcode for the contact and hands it to the
// notifier. The code itself is never returned.
func (s *Usecase) RequestCode(ctx context.Context, in RequestCodeInput) error {
	ctx, span := s.startSpan(ctx, "RequestCode")
	defer span.End()

	contact, err := entity.NormalizeContact(in.Contact, in.Channel)
	if err != nil {
		slog.WarnContext(ctx, "invalid contact format", "channel", in.Channel.String())
		return goerror.NewInvalidFormat(invalidContactMessage(in.Channel))
	}

	p := s.policy()
	if err := s.admit(ctx, contact, entity.AttemptRequest, p.MaxRequestAttempts, p.RequestWindow, p.LockoutDuration); err != nil {
		return err
	}

	code, err := s.otp.Generate(p.CodeLength)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate passcode", "error", err)
		return goerror.NewServer(err)
	}

	digest, err := s.hmac.Hash(strings.ToUpper(code))
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash passcode", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.challenges.Put(ctx, entity.Challenge{
		Contact:    contact,
		Channel:    in.Channel,
		CodeDigest: string(digest),
		IssuedAt:   s.clock.Now(),
	}, p.ChallengeTTL); err != nil {
		slog.ErrorContext(ctx, "failed to store challenge", "contact", contact, "error", err)
		return unavailable(err)
	}

	s.requested.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", in.Channel.String())))

	msg, err := s.message.Render(code, in.Channel.String())
	if err != nil {
		slog.ErrorContext(ctx, "failed to render passcode message", "error", err)
		return goerror.NewServer(err)
	}

	// the challenge and the counter stay as they are when delivery fails
	if err := s.notifier.Send(ctx, entity.Notice{
		Contact: contact,
		Channel: in.Channel,
		Code:    code,
		Message: msg,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send passcode", "contact", contact, "channel", in.Channel.String(), "error", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return unavailable(err)
		}
		return goerror.NewBusiness("Failed to deliver verification code, please try again", goerror.CodeUnavailable)
	}

	return nil
}

func invalidContactMessage(ch entity.Channel) string {
	switch ch {
	case entity.ChannelPhone:
		return "Invalid phone number format"
	case entity.ChannelEmail:
		return "Invalid email address format"
	default:
		return "Invalid contact format"
	}
}
