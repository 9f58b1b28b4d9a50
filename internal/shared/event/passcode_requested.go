package event

import "time"

const PasscodeRequestedDestination string = "passcode_requested"
const PasscodeRequestedConsumerNotification string = "passcode_requested_notification"

// PasscodeRequestedMessage asks the notification module to deliver a passcode.
// SealedCode only opens for the same Contact.
type PasscodeRequestedMessage struct {
	EventID    string    `json:"event_id"`
	Contact    string    `json:"contact"`
	Channel    string    `json:"channel"`
	SealedCode []byte    `json:"sealed_code"`
	IssuedAt   time.Time `json:"issued_at"`
}
