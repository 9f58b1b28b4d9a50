package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/otpgate/internal/login/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type VerifyCodeInput struct {
	Contact string `validate:"required"`
	Code    string `validate:"required"`
}

type VerifyCodeOutput struct {
	Identity  string
	Channel   entity.Channel
	Token     string
	ExpiresAt time.Time
}

// VerifyCode checks code against the live challenge of the contact. A match
// consumes the challenge, clears the verify budget and issues a token for the
// normalized contact.
func (s *Usecase) VerifyCode(ctx context.Context, in VerifyCodeInput) (*VerifyCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyCode")
	defer span.End()

	in.Contact = strings.TrimSpace(in.Contact)
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ch := entity.InferChannel(in.Contact)
	contact, err := entity.NormalizeContact(in.Contact, ch)
	if err != nil {
		slog.WarnContext(ctx, "invalid contact on verify", "channel", ch.String())
		return nil, goerror.NewInvalidInput(nil, "contact", "contact must be a valid phone number or email address")
	}

	p := s.policy()
	if err := s.admit(ctx, contact, entity.AttemptVerify, p.MaxVerifyAttempts, p.VerifyWindow, p.LockoutDuration); err != nil {
		return nil, err
	}

	submitted := strings.ToUpper(in.Code)
	challenge, err := s.challenges.Consume(ctx, contact, func(c entity.Challenge) bool {
		return s.hmac.Verify(c.CodeDigest, submitted)
	})
	switch {
	case errors.Is(err, goerror.ErrNotFound):
		slog.WarnContext(ctx, "no live challenge for contact", "contact", contact)
		return nil, goerror.NewBusiness("Verification code not found or expired", goerror.CodeNotFound)
	case errors.Is(err, entity.ErrCodeMismatch):
		slog.WarnContext(ctx, "passcode mismatch", "contact", contact)
		return nil, goerror.NewBusiness("Invalid verification code", goerror.CodeUnauthorized)
	case err != nil:
		slog.ErrorContext(ctx, "failed to consume challenge", "contact", contact, "error", err)
		return nil, unavailable(err)
	}

	if err := s.counter.Reset(ctx, contact, entity.AttemptVerify); err != nil {
		slog.WarnContext(ctx, "failed to reset verify counter", "contact", contact, "error", err)
	}

	if challenge.Channel != entity.ChannelUnknown {
		ch = challenge.Channel
	}

	token, err := s.tokens.Generate(contact, ch.String())
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue token", "contact", contact, "error", err)
		return nil, unavailable(err)
	}

	s.verified.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", ch.String())))

	return &VerifyCodeOutput{
		Identity:  contact,
		Channel:   ch,
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
	}, nil
}
