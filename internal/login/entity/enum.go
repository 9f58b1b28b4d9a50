package entity

import "strings"

type Channel int16

const (
	// ChannelUnknown is mean channel is not known / not set.
	ChannelUnknown Channel = 0

	// ChannelPhone mean the passcode travels by SMS.
	ChannelPhone Channel = 1

	// ChannelEmail mean the passcode travels by email.
	ChannelEmail Channel = 2
)

func (c Channel) String() string {
	switch c {
	case ChannelPhone:
		return "phone"
	case ChannelEmail:
		return "email"
	default:
		return "unknown"
	}
}

func ParseChannel(s string) Channel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phone":
		return ChannelPhone
	case "email":
		return ChannelEmail
	default:
		return ChannelUnknown
	}
}

// InferChannel guesses the channel of a contact the caller already holds.
// Anything with an @ is an email address.
func InferChannel(contact string) Channel {
	if strings.Contains(contact, "@") {
		return ChannelEmail
	}

	return ChannelPhone
}

// AttemptKind separates the request and verify budgets of a contact.
type AttemptKind int16

const (
	AttemptRequest AttemptKind = 1
	AttemptVerify  AttemptKind = 2
)

func (k AttemptKind) String() string {
	switch k {
	case AttemptRequest:
		return "request"
	case AttemptVerify:
		return "verify"
	default:
		return "unknown"
	}
}

// KeyPart is the fragment used in the counter key, e.g. login:req:count:{contact}.
func (k AttemptKind) KeyPart() string {
	switch k {
	case AttemptRequest:
		return "req"
	case AttemptVerify:
		return "verify"
	default:
		return "unknown"
	}
}
