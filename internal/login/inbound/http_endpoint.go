package inbound

import (
	"github.com/shandysiswandi/otpgate/internal/login/entity"
	"github.com/shandysiswandi/otpgate/internal/login/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

// HTTPEndpoint exposes the passcode login flow over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// LoginPhone sends a passcode by SMS.
func (h *HTTPEndpoint) LoginPhone(r *router.Request) (any, error) {
	var req LoginPhoneRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RequestCode(r.Context(), usecase.RequestCodeInput{
		Contact: req.PhoneNumber,
		Channel: entity.ChannelPhone,
	}); err != nil {
		return nil, err
	}

	return RequestCodeResponse{Channel: entity.ChannelPhone.String()}, nil
}

// LoginEmail sends a passcode by email.
func (h *HTTPEndpoint) LoginEmail(r *router.Request) (any, error) {
	var req LoginEmailRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RequestCode(r.Context(), usecase.RequestCodeInput{
		Contact: req.Email,
		Channel: entity.ChannelEmail,
	}); err != nil {
		return nil, err
	}

	return RequestCodeResponse{Channel: entity.ChannelEmail.String()}, nil
}

// Verify exchanges a passcode for a bearer token.
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyCode(r.Context(), usecase.VerifyCodeInput{
		Contact: req.Contact,
		Code:    req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{
		User: VerifiedUser{
			ID:      resp.Identity,
			Contact: resp.Identity,
			Channel: resp.Channel.String(),
		},
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// Session returns the identity behind the bearer token.
func (h *HTTPEndpoint) Session(r *router.Request) (any, error) {
	resp, err := h.uc.Session(r.Context())
	if err != nil {
		return nil, err
	}

	return SessionResponse{
		Identity:  resp.Identity,
		Channel:   resp.Channel.String(),
		ExpiresAt: resp.ExpiresAt,
	}, nil
}
