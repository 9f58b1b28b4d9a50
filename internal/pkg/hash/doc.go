// Package hash provides keyed digests for short-lived secrets.
//
// Passcodes are kept in the cache only as an HMAC digest. Verification
// recomputes the digest of the submitted value and compares in constant time.
package hash

// Hash computes and verifies digests.
type Hash interface {
	// Hash returns the hex encoded digest of str.
	Hash(str string) ([]byte, error)
	// Verify reports whether str produces hashed.
	Verify(hashed, str string) bool
}
