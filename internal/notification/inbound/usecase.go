package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/notification/usecase"
)

type uc interface {
	DeliverPasscode(ctx context.Context, in usecase.DeliverPasscodeInput) error
}
