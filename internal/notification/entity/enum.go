package entity

import (
	"strings"
)

type Channel int16

const (
	ChannelUnknown Channel = 0
	ChannelEmail   Channel = 2
	ChannelSMS     Channel = 3
)

// ChannelFromContact maps the contact channel of a login event to the
// transport that reaches it.
func ChannelFromContact(raw string) Channel {
	switch strings.TrimSpace(raw) {
	case "email":
		return ChannelEmail
	case "phone":
		return ChannelSMS
	default:
		return ChannelUnknown
	}
}

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelSMS:
		return "sms"
	default:
		return "unknown"
	}
}

type DeliveryStatus int16

const (
	DeliveryStatusUnknown   DeliveryStatus = 0
	DeliveryStatusSent      DeliveryStatus = 3
	DeliveryStatusFailed    DeliveryStatus = 4
	DeliveryStatusDuplicate DeliveryStatus = 5
	DeliveryStatusDropped   DeliveryStatus = 6
)

func (s DeliveryStatus) String() string {
	switch s {
	case DeliveryStatusSent:
		return "sent"
	case DeliveryStatusFailed:
		return "failed"
	case DeliveryStatusDuplicate:
		return "duplicate"
	case DeliveryStatusDropped:
		return "dropped"
	default:
		return "unknown"
	}
}
