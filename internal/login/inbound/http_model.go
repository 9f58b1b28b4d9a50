package inbound

import "time"

type LoginPhoneRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type LoginEmailRequest struct {
	Email string `json:"email"`
}

type RequestCodeResponse struct {
	Channel string `json:"channel"`
}

func (RequestCodeResponse) Message() string {
	return "Verification code sent"
}

type VerifyRequest struct {
	Contact string `json:"contact"`
	Code    string `json:"code"`
}

type VerifiedUser struct {
	ID      string `json:"id"`
	Contact string `json:"contact"`
	Channel string `json:"channel"`
}

type VerifyResponse struct {
	User      VerifiedUser `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func (VerifyResponse) Message() string {
	return "Verification successful"
}

type SessionResponse struct {
	Identity  string    `json:"identity"`
	Channel   string    `json:"channel"`
	ExpiresAt time.Time `json:"expires_at"`
}
