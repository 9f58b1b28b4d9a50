package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpgate/internal/login"
	"github.com/shandysiswandi/otpgate/internal/notification"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.login.enabled") {
		if err := login.New(login.Dependency{
			Router:     a.router,
			Store:      a.store,
			Messaging:  a.messaging,
			Mail:       a.mail,
			SMS:        a.sms,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			HMAC:       a.hmac,
			Sealer:     a.sealer,
			Clock:      a.clock,
			Validator:  a.validator,
			JWT:        a.jwt,
		}); err != nil {
			slog.Error("failed to init module login", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:         a.ctx,
			Messaging:   a.messaging,
			Config:      a.config,
			Instrument:  a.ins,
			UUID:        a.uuid,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
			Idempotency: a.idemp,
			Sealer:      a.sealer,
			Mail:        a.mail,
			SMS:         a.sms,
			Clock:       a.clock,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
