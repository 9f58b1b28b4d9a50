package entity

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidContactFormat = errors.New("login: invalid contact format")

var (
	rePhone = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)
	reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// NormalizeContact trims and lower-cases raw and checks it against the shape
// of ch. The result is the partition key of every login record, so
// NormalizeContact(NormalizeContact(x)) == NormalizeContact(x).
func NormalizeContact(raw string, ch Channel) (string, error) {
	contact := strings.ToLower(strings.TrimSpace(raw))

	switch ch {
	case ChannelPhone:
		if !rePhone.MatchString(contact) {
			return "", ErrInvalidContactFormat
		}
	case ChannelEmail:
		if !reEmail.MatchString(contact) {
			return "", ErrInvalidContactFormat
		}
	default:
		return "", ErrInvalidContactFormat
	}

	return contact, nil
}
