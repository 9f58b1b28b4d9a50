package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/login/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type uc interface {
	RequestCode(ctx context.Context, in usecase.RequestCodeInput) error
	VerifyCode(ctx context.Context, in usecase.VerifyCodeInput) (*usecase.VerifyCodeOutput, error)
	Session(ctx context.Context) (*usecase.SessionOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/login/phone", end.LoginPhone)
	r.POST("/api/v1/login/email", end.LoginEmail)
	r.POST("/api/v1/login/verify", end.Verify)

	r.GET("/api/v1/login/session", end.Session) // need authenticated
}
