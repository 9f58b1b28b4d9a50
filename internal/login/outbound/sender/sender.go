package sender

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/otpgate/internal/login/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Sender delivers the rendered message synchronously, inside the request.
type Sender struct {
	mail    mail.Mail
	sms     sms.SMS
	subject string
	ins     instrument.Instrumentation
}

func NewSender(m mail.Mail, s sms.SMS, subject string, ins instrument.Instrumentation) *Sender {
	return &Sender{mail: m, sms: s, subject: subject, ins: ins}
}

func (s *Sender) Send(ctx context.Context, n entity.Notice) (err error) {
	ctx, span := s.ins.Tracer("login.outbound.sender").Start(ctx, "Send")
	span.SetAttributes(attribute.String("channel", n.Channel.String()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	switch n.Channel {
	case entity.ChannelEmail:
		return s.mail.Send(ctx, mail.Message{
			To:       []string{n.Contact},
			Subject:  s.subject,
			TextBody: n.Message,
		})
	case entity.ChannelPhone:
		return s.sms.Send(ctx, n.Contact, n.Message)
	default:
		return fmt.Errorf("sender: unsupported channel %q", n.Channel.String())
	}
}
