// Package otp generates human-typeable one-time passcodes.
//
// Codes are drawn from an alphabet without visually confusable characters
// (no 0/O, no 1/I) using a cryptographically secure source, so the chance of
// guessing a code is 1/len(alphabet)^length per attempt.
package otp
