package notification

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/otpgate/internal/notification/inbound"
	"github.com/shandysiswandi/otpgate/internal/notification/outbound/email"
	"github.com/shandysiswandi/otpgate/internal/notification/outbound/sms"
	"github.com/shandysiswandi/otpgate/internal/notification/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/seal"
	pkgsms "github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"github.com/shandysiswandi/otpgate/internal/shared/passcode"
)

type Dependency struct {
	Ctx         context.Context
	Messaging   messaging.Messaging        `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Sealer      seal.Sealer                `validate:"required"`
	Mail        mail.Mail                  `validate:"required"`
	SMS         pkgsms.SMS                 `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	msg, err := passcode.NewMessage(dep.Config.GetString("modules.notification.message_template"))
	if err != nil {
		return fmt.Errorf("notification: message template: %w", err)
	}

	uc := usecase.NewNotification(usecase.Dependency{
		Idempotency: dep.Idempotency,
		Sealer:      dep.Sealer,
		Validator:   dep.Validator,
		Config:      dep.Config,
		Message:     msg,
		RepoMail:    email.New(dep.Mail, dep.Instrument),
		RepoSMS:     sms.New(dep.SMS, dep.Instrument),
		Clock:       dep.Clock,
		Instrument:  dep.Instrument,
	})

	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
