package usecase

import (
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
)

// Policy holds the limits applied to every contact.
type Policy struct {
	MaxRequestAttempts int64
	RequestWindow      time.Duration
	MaxVerifyAttempts  int64
	VerifyWindow       time.Duration
	LockoutDuration    time.Duration
	ChallengeTTL       time.Duration
	CodeLength         int
}

// DefaultPolicy is 5 requests and 6 verifies per 15 minutes, a 15 minute
// lockout and codes of 6 characters living 5 minutes.
var DefaultPolicy = Policy{
	MaxRequestAttempts: 5,
	RequestWindow:      15 * time.Minute,
	MaxVerifyAttempts:  6,
	VerifyWindow:       15 * time.Minute,
	LockoutDuration:    15 * time.Minute,
	ChallengeTTL:       5 * time.Minute,
	CodeLength:         otp.DefaultLength,
}

// policy is read on every call so a config reload applies to the next request.
func (s *Usecase) policy() Policy {
	p := Policy{
		MaxRequestAttempts: s.cfg.GetInt64("modules.login.max_request_attempts"),
		RequestWindow:      s.cfg.GetMinute("modules.login.request_window_minutes"),
		MaxVerifyAttempts:  s.cfg.GetInt64("modules.login.max_verify_attempts"),
		VerifyWindow:       s.cfg.GetMinute("modules.login.verify_window_minutes"),
		LockoutDuration:    s.cfg.GetMinute("modules.login.lockout_minutes"),
		ChallengeTTL:       s.cfg.GetSecond("modules.login.challenge_ttl_seconds"),
		CodeLength:         s.cfg.GetInt("modules.login.code_length"),
	}

	if p.MaxRequestAttempts <= 0 {
		p.MaxRequestAttempts = DefaultPolicy.MaxRequestAttempts
	}
	if p.RequestWindow <= 0 {
		p.RequestWindow = DefaultPolicy.RequestWindow
	}
	if p.MaxVerifyAttempts <= 0 {
		p.MaxVerifyAttempts = DefaultPolicy.MaxVerifyAttempts
	}
	if p.VerifyWindow <= 0 {
		p.VerifyWindow = DefaultPolicy.VerifyWindow
	}
	if p.LockoutDuration <= 0 {
		p.LockoutDuration = DefaultPolicy.LockoutDuration
	}
	if p.ChallengeTTL <= 0 {
		p.ChallengeTTL = DefaultPolicy.ChallengeTTL
	}
	if p.CodeLength <= 0 {
		p.CodeLength = DefaultPolicy.CodeLength
	}

	return p
}
