package entity

import (
	"errors"
	"time"
)

// ErrCodeMismatch is returned when a submitted code does not match the live challenge.
var ErrCodeMismatch = errors.New("login: code mismatch")

// Challenge is the single outstanding passcode of a contact.
type Challenge struct {
	Contact string
	Channel Channel
	// CodeDigest is the keyed digest of the upper-cased code, never the code.
	CodeDigest string
	IssuedAt   time.Time
}

// Notice is what a notifier needs to deliver a passcode.
type Notice struct {
	Contact string
	Channel Channel
	Code    string
	Message string
}
