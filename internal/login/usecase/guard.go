package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/login/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const msgTooManyAttempts = "Too many attempts, please try again later"

// admit applies the lockout and the windowed counter of kind, in that order.
// The increment is never rolled back, also when it is the one that locks.
func (s *Usecase) admit(ctx context.Context, contact string, kind entity.AttemptKind, limit int64, window, lockFor time.Duration) error {
	locked, err := s.lockout.IsLockedOut(ctx, contact)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check lockout", "contact", contact, "error", err)
		return unavailable(err)
	}

	if locked {
		return s.rejectLocked(ctx, contact, kind)
	}

	count, err := s.counter.Increment(ctx, contact, kind, window)
	if err != nil {
		slog.ErrorContext(ctx, "failed to increment attempt counter", "contact", contact, "kind", kind.String(), "error", err)
		return unavailable(err)
	}

	if count <= limit {
		return nil
	}

	// over the limit rejects even if Lock fails; the next attempt retries it.
	if err := s.lockout.Lock(ctx, contact, lockFor); err != nil {
		slog.ErrorContext(ctx, "failed to lock contact", "contact", contact, "error", err)
	}

	s.lockouts.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind.String())))
	slog.WarnContext(ctx, "contact locked out", "contact", contact, "kind", kind.String(), "attempts", count)

	return goerror.NewTooManyRequest(msgTooManyAttempts, lockFor)
}

func (s *Usecase) rejectLocked(ctx context.Context, contact string, kind entity.AttemptKind) error {
	left, err := s.lockout.LockedFor(ctx, contact)
	if err != nil {
		slog.WarnContext(ctx, "failed to read lockout ttl", "contact", contact, "error", err)
	}

	attempts, err := s.counter.Peek(ctx, contact, kind)
	if err != nil {
		slog.WarnContext(ctx, "failed to peek attempt counter", "contact", contact, "error", err)
	}

	slog.WarnContext(ctx, "contact is locked out", "contact", contact, "kind", kind.String(), "attempts", attempts, "retry_after", left.String())

	return goerror.NewTooManyRequest(msgTooManyAttempts, left)
}

// unavailable maps a store or collaborator failure. A spent request deadline
// is a timeout, anything else an unavailable dependency.
func unavailable(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return goerror.NewTimeout(err)
	}

	return goerror.NewUnavailable(err)
}
