package uid

import "github.com/google/uuid"

// UUID generates RFC 9562 UUID strings, time ordered when possible.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new UUID string.
func (u *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString() // fallback: uuidV4
	}
	return id.String()
}

// Static always returns the same id. Handy in tests.
type Static string

// Generate returns the static id.
func (s Static) Generate() string {
	return string(s)
}
