package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/login/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"github.com/shandysiswandi/otpgate/internal/shared/passcode"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

type counter interface {
	Increment(ctx context.Context, contact string, kind entity.AttemptKind, window time.Duration) (int64, error)
	Peek(ctx context.Context, contact string, kind entity.AttemptKind) (int64, error)
	Reset(ctx context.Context, contact string, kind entity.AttemptKind) error
}

type lockout interface {
	IsLockedOut(ctx context.Context, contact string) (bool, error)
	Lock(ctx context.Context, contact string, d time.Duration) error
	LockedFor(ctx context.Context, contact string) (time.Duration, error)
}

type challengeStore interface {
	Put(ctx context.Context, ch entity.Challenge, ttl time.Duration) error
	Consume(ctx context.Context, contact string, match func(entity.Challenge) bool) (*entity.Challenge, error)
}

type notifier interface {
	Send(ctx context.Context, n entity.Notice) error
}

type tokenIssuer interface {
	Generate(subject, channel string) (jwt.Token, error)
}

type Usecase struct {
	counter    counter
	lockout    lockout
	challenges challengeStore
	notifier   notifier
	tokens     tokenIssuer
	validator  validator.Validator
	cfg        config.Config
	hmac       hash.Hash
	otp        otp.Generator
	message    *passcode.Message
	clock      clock.Clocker
	ins        instrument.Instrumentation

	requested metric.Int64Counter
	verified  metric.Int64Counter
	lockouts  metric.Int64Counter
}

type Dependency struct {
	Counter     counter
	Lockout     lockout
	Challenges  challengeStore
	Notifier    notifier
	TokenIssuer tokenIssuer
	Validator   validator.Validator
	Config      config.Config
	HMAC        hash.Hash
	OTP         otp.Generator
	Message     *passcode.Message
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	meter := dep.Instrument.Meter("login.usecase")

	return &Usecase{
		counter:    dep.Counter,
		lockout:    dep.Lockout,
		challenges: dep.Challenges,
		notifier:   dep.Notifier,
		tokens:     dep.TokenIssuer,
		validator:  dep.Validator,
		cfg:        dep.Config,
		hmac:       dep.HMAC,
		otp:        dep.OTP,
		message:    dep.Message,
		clock:      dep.Clock,
		ins:        dep.Instrument,
		requested:  newCounter(meter, "login.passcode.requested", "Number of passcodes issued"),
		verified:   newCounter(meter, "login.passcode.verified", "Number of passcodes verified"),
		lockouts:   newCounter(meter, "login.lockout.triggered", "Number of contacts locked out"),
	}
}

func newCounter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Error("failed to create counter", "name", name, "error", err)
		return noop.Int64Counter{}
	}

	return c
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("login.usecase").Start(ctx, name)
}
