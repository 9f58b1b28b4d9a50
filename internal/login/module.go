package login

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/otpgate/internal/login/entity"
	"github.com/shandysiswandi/otpgate/internal/login/inbound"
	"github.com/shandysiswandi/otpgate/internal/login/outbound/cache"
	"github.com/shandysiswandi/otpgate/internal/login/outbound/mq"
	"github.com/shandysiswandi/otpgate/internal/login/outbound/sender"
	"github.com/shandysiswandi/otpgate/internal/login/usecase"
	kv "github.com/shandysiswandi/otpgate/internal/pkg/cache"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/pkg/seal"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"github.com/shandysiswandi/otpgate/internal/shared/passcode"
)

const (
	NotifierMessaging = "messaging"
	NotifierDirect    = "direct"
)

type Dependency struct {
	Router     *router.Router             `validate:"required"`
	Store      kv.Store                   `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	SMS        sms.SMS                    `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Sealer     seal.Sealer                `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	codes, err := otp.NewAlphabet(dep.Config.GetString("modules.login.code_alphabet"))
	if err != nil {
		return fmt.Errorf("login: code alphabet: %w", err)
	}

	msg, err := passcode.NewMessage(dep.Config.GetString("modules.login.message_template"))
	if err != nil {
		return fmt.Errorf("login: message template: %w", err)
	}

	var notifier interface {
		Send(ctx context.Context, n entity.Notice) error
	}
	switch driver := dep.Config.GetString("modules.login.notifier_driver"); driver {
	case "", NotifierMessaging:
		notifier = mq.NewMessaging(dep.Messaging, dep.Sealer, dep.UUID, dep.Clock, dep.Instrument)
	case NotifierDirect:
		notifier = sender.NewSender(dep.Mail, dep.SMS, dep.Config.GetString("modules.login.email_subject"), dep.Instrument)
	default:
		return fmt.Errorf("login: unknown notifier driver %q", driver)
	}

	uc := usecase.New(usecase.Dependency{
		Counter:     cache.NewCounter(dep.Store, dep.Instrument),
		Lockout:     cache.NewLockout(dep.Store, dep.Instrument),
		Challenges:  cache.NewChallengeStore(dep.Store, dep.Instrument),
		Notifier:    notifier,
		TokenIssuer: dep.JWT,
		Validator:   dep.Validator,
		Config:      dep.Config,
		HMAC:        dep.HMAC,
		OTP:         codes,
		Message:     msg,
		Clock:       dep.Clock,
		Instrument:  dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
