package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrSecretTooShort is returned when the HMAC key is shorter than 32 bytes.
var ErrSecretTooShort = errors.New("hash: hmac secret must be at least 32 bytes")

// HMACSHA256 implements Hash with HMAC-SHA256.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a new hasher keyed with secret.
func NewHMACSHA256(secret string) (*HMACSHA256, error) {
	if len(secret) < sha256.Size {
		return nil, ErrSecretTooShort
	}

	return &HMACSHA256{secret: []byte(secret)}, nil
}

// Hash returns the hex encoded HMAC of str.
func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	return s.gen(str), nil
}

// Verify checks whether str matches the hex encoded digest.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	return hmac.Equal([]byte(hashed), s.gen(str))
}

func (s *HMACSHA256) gen(str string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(str))
	sum := h.Sum(nil)
	result := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(result, sum)
	return result
}
