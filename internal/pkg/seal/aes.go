package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Wire format:
// [0..1]   uint16 version
// [2..13]  12-byte nonce
// [14..]   gcm.Seal output (ciphertext + tag)
const aesGCMVersion uint16 = 1

const (
	gcmNonceSize = 12
	aesKeyLen    = 32
	headerLen    = 2 + gcmNonceSize
)

var (
	// ErrNotConfigured indicates a missing key provider.
	ErrNotConfigured = errors.New("seal: key provider not configured")
	// ErrPlaintextEmpty indicates an empty plaintext input.
	ErrPlaintextEmpty = errors.New("seal: plaintext is empty")
	// ErrInvalidKeyLength indicates the key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("seal: invalid key length")
	// ErrCiphertextTooShort indicates a truncated ciphertext.
	ErrCiphertextTooShort = errors.New("seal: ciphertext too short")
	// ErrUnsupportedVersion indicates an unknown wire format version.
	ErrUnsupportedVersion = errors.New("seal: unsupported ciphertext version")
	// ErrOpenFailed hides whether the key, the scope or the payload was wrong.
	ErrOpenFailed = errors.New("seal: open failed")
	// ErrMissingStaticKey indicates an empty static key.
	ErrMissingStaticKey = errors.New("seal: missing static key")
)

// AESGCM implements Sealer using AES-256-GCM.
type AESGCM struct {
	keys   KeyProvider
	random io.Reader
}

// NewAESGCM constructs an AES-GCM sealer.
func NewAESGCM(keys KeyProvider) *AESGCM {
	return &AESGCM{keys: keys, random: rand.Reader}
}

// Seal encrypts plaintext and binds the result to scope.
func (a *AESGCM) Seal(plaintext []byte, scope Scope) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrPlaintextEmpty
	}

	gcm, err := a.aead(scope)
	if err != nil {
		return nil, err
	}

	out := make([]byte, headerLen, headerLen+len(plaintext)+gcm.Overhead())
	binary.BigEndian.PutUint16(out[0:2], aesGCMVersion)
	if _, err := io.ReadFull(a.random, out[2:headerLen]); err != nil {
		return nil, fmt.Errorf("seal: nonce generation failed: %w", err)
	}

	return gcm.Seal(out, out[2:headerLen], plaintext, scopeAAD(scope)), nil
}

// Open decrypts ciphertext produced by Seal for the same scope.
func (a *AESGCM) Open(ciphertext []byte, scope Scope) ([]byte, error) {
	if len(ciphertext) < headerLen+1 {
		return nil, ErrCiphertextTooShort
	}

	if v := binary.BigEndian.Uint16(ciphertext[0:2]); v != aesGCMVersion {
		return nil, fmt.Errorf("seal: version %d: %w", v, ErrUnsupportedVersion)
	}

	gcm, err := a.aead(scope)
	if err != nil {
		return nil, err
	}

	plain, err := gcm.Open(nil, ciphertext[2:headerLen], ciphertext[headerLen:], scopeAAD(scope))
	if err != nil {
		return nil, ErrOpenFailed
	}

	return plain, nil
}

func (a *AESGCM) aead(scope Scope) (cipher.AEAD, error) {
	if a == nil || a.keys == nil {
		return nil, ErrNotConfigured
	}

	key, err := a.keys.Key(scope)
	if err != nil {
		return nil, fmt.Errorf("seal: key provider: %w", err)
	}
	if len(key) != aesKeyLen {
		return nil, fmt.Errorf("seal: key length %d: %w", len(key), ErrInvalidKeyLength)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("seal: aes init: %w", err)
	}

	return cipher.NewGCMWithNonceSize(block, gcmNonceSize)
}

// scopeAAD hashes a labelled canonical form so AAD has a fixed length and
// fields cannot bleed into each other.
func scopeAAD(s Scope) []byte {
	sum := sha256.Sum256([]byte("subject=" + s.Subject + "\npurpose=" + string(s.Purpose) + "\n"))
	return sum[:]
}

// StaticKeyProvider returns the same key for every scope.
type StaticKeyProvider struct {
	KeyBytes []byte
}

// Key returns a copy of the static key.
func (p StaticKeyProvider) Key(_ Scope) ([]byte, error) {
	if len(p.KeyBytes) == 0 {
		return nil, ErrMissingStaticKey
	}

	k := make([]byte, len(p.KeyBytes))
	copy(k, p.KeyBytes)
	return k, nil
}
