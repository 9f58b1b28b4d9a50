package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpgate/internal/login/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
)

type SessionOutput struct {
	Identity  string
	Channel   entity.Channel
	ExpiresAt time.Time
}

// Session describes the identity carried by the bearer token of the request.
func (s *Usecase) Session(ctx context.Context) (*SessionOutput, error) {
	_, span := s.startSpan(ctx, "Session")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil || clm.Subject == "" {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	out := &SessionOutput{
		Identity: clm.Subject,
		Channel:  entity.ParseChannel(clm.Channel),
	}
	if clm.ExpiresAt != nil {
		out.ExpiresAt = clm.ExpiresAt.Time
	}

	return out, nil
}
