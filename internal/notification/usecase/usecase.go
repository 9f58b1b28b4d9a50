package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/notification/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/seal"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"github.com/shandysiswandi/otpgate/internal/shared/passcode"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

type repoMail interface {
	Send(ctx context.Context, d entity.Delivery) error
}

type repoSMS interface {
	Send(ctx context.Context, d entity.Delivery) error
}

type Usecase struct {
	idemp     idempotency.Idempotency
	sealer    seal.Sealer
	validator validator.Validator
	cfg       config.Config
	message   *passcode.Message
	repoMail  repoMail
	repoSMS   repoSMS
	clock     clock.Clocker
	ins       instrument.Instrumentation
	delivered metric.Int64Counter
}

type Dependency struct {
	Idempotency idempotency.Idempotency
	Sealer      seal.Sealer
	Validator   validator.Validator
	Config      config.Config
	Message     *passcode.Message
	RepoMail    repoMail
	RepoSMS     repoSMS
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	delivered, err := dep.Instrument.Meter("notification.usecase").Int64Counter(
		"notification.passcode.delivered",
		metric.WithDescription("Passcode deliveries by channel and outcome"),
	)
	if err != nil {
		slog.Error("failed to create delivery counter", "error", err)
		delivered = noop.Int64Counter{}
	}

	return &Usecase{
		idemp:     dep.Idempotency,
		sealer:    dep.Sealer,
		validator: dep.Validator,
		cfg:       dep.Config,
		message:   dep.Message,
		repoMail:  dep.RepoMail,
		repoSMS:   dep.RepoSMS,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		delivered: delivered,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}
