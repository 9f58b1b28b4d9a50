// Package sms delivers short text messages to phone numbers.
package sms

import (
	"context"
	"errors"
)

// ErrNoRecipient is returned when the phone number is empty.
var ErrNoRecipient = errors.New("sms: phone number is required")

// SMS sends a text message to an E.164 phone number.
type SMS interface {
	Send(ctx context.Context, phoneNumber, message string) error
}
