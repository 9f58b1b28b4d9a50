// Package seal encrypts small secrets that must cross a trust boundary.
//
// Passcodes travel from the login module to the notification module through
// the message broker. They are sealed with AES-256-GCM and bound to the
// contact they were issued for, so a payload replayed against another contact
// fails to open.
package seal

// Purpose identifies what a sealed payload is for.
type Purpose string

// PurposePasscode scopes sealing to one-time passcodes in broker events.
const PurposePasscode Purpose = "passcode"

// Scope is authenticated alongside the ciphertext (GCM additional data).
type Scope struct {
	// Subject is the normalized contact the secret belongs to.
	Subject string
	// Purpose separates unrelated uses of the same key.
	Purpose Purpose
}

// Sealer encrypts and decrypts payloads for a scope.
type Sealer interface {
	Seal(plaintext []byte, scope Scope) ([]byte, error)
	Open(ciphertext []byte, scope Scope) ([]byte, error)
}

// KeyProvider returns raw AES keys. For AES-256-GCM keys are 32 bytes.
type KeyProvider interface {
	Key(scope Scope) ([]byte, error)
}
